package meta

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hatlonely/metax/validator"
)

type StoreOptions struct {
	Driver   string `cfg:"driver" def:"mysql" validate:"omitempty,oneof=mysql sqlite"`
	DSN      string `cfg:"dsn"`
	Host     string `cfg:"host" def:"localhost"`
	Port     string `cfg:"port" def:"3306"`
	Database string `cfg:"database"`
	Username string `cfg:"username"`
	Password string `cfg:"password"`
	Charset  string `cfg:"charset" def:"utf8mb4"`
}

// Store 元数据库访问层，持久化 EntityMeta/FieldMeta
// 引擎只会新增元数据，改名等编辑通过直接修改元数据库完成
type Store struct {
	db *gorm.DB
}

func NewStoreWithOptions(options *StoreOptions) (*Store, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if err := validator.ValidateStruct(options); err != nil {
		return nil, errors.WithMessage(err, "invalid store options")
	}

	if options.Driver == "" {
		options.Driver = "mysql"
	}

	dsn := options.DSN
	if dsn == "" {
		switch options.Driver {
		case "mysql":
			host := options.Host
			if host == "" {
				host = "localhost"
			}
			port := options.Port
			if port == "" {
				port = "3306"
			}
			charset := options.Charset
			if charset == "" {
				charset = "utf8mb4"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
				options.Username, options.Password, host, port, options.Database, charset)
		case "sqlite":
			dsn = options.Database
		default:
			return nil, errors.Errorf("unsupported driver: %s", options.Driver)
		}
	}

	var dialector gorm.Dialector
	switch options.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported driver: %s", options.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to open metadata store")
	}

	return &Store{db: db}, nil
}

// entityTypeRow entity_types 表的一行
type entityTypeRow struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"`
	Code                string `gorm:"size:191;not null;uniqueIndex"`
	Name                string `gorm:"size:191;not null"`
	Table               string `gorm:"column:table_name;size:191;not null;uniqueIndex"`
	TitleFormatTitle    string `gorm:"size:191"`
	TitleFormatSubtitle string `gorm:"size:191"`
}

func (entityTypeRow) TableName() string { return "entity_types" }

// fieldRow entity_type_fields 表的一行
type fieldRow struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	EntityTypeID int64   `gorm:"not null;uniqueIndex:uk_entity_type_field_code,priority:1"`
	Code         string  `gorm:"size:191;not null;uniqueIndex:uk_entity_type_field_code,priority:2"`
	Name         string  `gorm:"size:191;not null"`
	Column       string  `gorm:"column:column_name;size:191;not null"`
	Placeholder  *string `gorm:"size:191"`
	Type         string  `gorm:"size:32;not null"`
	Identifier   bool    `gorm:"not null"`
	Hidden       bool    `gorm:"not null"`
	Mandatory    bool    `gorm:"not null"`
	Generated    bool    `gorm:"not null"`
}

func (fieldRow) TableName() string { return "entity_type_fields" }

// AutoMigrate 创建元数据表结构
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&entityTypeRow{}, &fieldRow{}); err != nil {
		return errors.WithMessage(err, "failed to migrate metadata tables")
	}
	return nil
}

// ListEntityTypes 读取所有实体元数据，实体和字段都按持久化顺序（id 升序）返回
func (s *Store) ListEntityTypes(ctx context.Context) ([]*EntityMeta, error) {
	var entityRows []entityTypeRow
	if err := s.db.WithContext(ctx).Order("id").Find(&entityRows).Error; err != nil {
		return nil, errors.WithMessage(err, "failed to list entity types")
	}

	var fieldRows []fieldRow
	if err := s.db.WithContext(ctx).Order("id").Find(&fieldRows).Error; err != nil {
		return nil, errors.WithMessage(err, "failed to list entity type fields")
	}

	fieldsByEntity := make(map[int64][]*FieldMeta)
	for _, row := range fieldRows {
		fieldsByEntity[row.EntityTypeID] = append(fieldsByEntity[row.EntityTypeID], &FieldMeta{
			ID:          row.ID,
			Code:        row.Code,
			Column:      row.Column,
			Name:        row.Name,
			Placeholder: row.Placeholder,
			Type:        FieldType(row.Type),
			Identifier:  row.Identifier,
			Hidden:      row.Hidden,
			Mandatory:   row.Mandatory,
			Generated:   row.Generated,
		})
	}

	entities := make([]*EntityMeta, 0, len(entityRows))
	for _, row := range entityRows {
		entities = append(entities, &EntityMeta{
			ID:    row.ID,
			Code:  row.Code,
			Name:  row.Name,
			Table: row.Table,
			TitleFormat: TitleFormat{
				Title:    row.TitleFormatTitle,
				Subtitle: row.TitleFormatSubtitle,
			},
			Fields: fieldsByEntity[row.ID],
		})
	}
	return entities, nil
}

// SaveEntityType 持久化一个新实体及其字段，回填元数据库分配的 id
func (s *Store) SaveEntityType(ctx context.Context, entity *EntityMeta) error {
	if len(entity.Fields) == 0 {
		return errors.Errorf("entity type %s has no fields", entity.Code)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entityRow := entityTypeRow{
			Code:                entity.Code,
			Name:                entity.Name,
			Table:               entity.Table,
			TitleFormatTitle:    entity.TitleFormat.Title,
			TitleFormatSubtitle: entity.TitleFormat.Subtitle,
		}
		if err := tx.Create(&entityRow).Error; err != nil {
			return err
		}
		entity.ID = entityRow.ID

		for _, field := range entity.Fields {
			row := fieldRow{
				EntityTypeID: entity.ID,
				Code:         field.Code,
				Name:         field.Name,
				Column:       field.Column,
				Placeholder:  field.Placeholder,
				Type:         string(field.Type),
				Identifier:   field.Identifier,
				Hidden:       field.Hidden,
				Mandatory:    field.Mandatory,
				Generated:    field.Generated,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			field.ID = row.ID
		}
		return nil
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to save entity type %s", entity.Code)
	}
	return nil
}

func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
