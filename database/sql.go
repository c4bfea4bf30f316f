package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/hatlonely/metax/validator"
)

type SQLOptions struct {
	Driver   string `cfg:"driver" def:"mysql" validate:"omitempty,oneof=mysql sqlite3"`
	DSN      string `cfg:"dsn"`
	Host     string `cfg:"host" def:"localhost"`
	Port     string `cfg:"port" def:"3306"`
	Database string `cfg:"database"`
	Username string `cfg:"username"`
	Password string `cfg:"password"`
	Charset  string `cfg:"charset" def:"utf8mb4"`
	MaxConns int    `cfg:"maxConns" def:"10"`
	MaxIdle  int    `cfg:"maxIdle" def:"5"`
}

// SQL 基于 database/sql 的 Database 实现，支持 mysql 和 sqlite3
type SQL struct {
	db       *sql.DB
	driver   string
	database string
}

func NewSQLWithOptions(options *SQLOptions) (*SQL, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if err := validator.ValidateStruct(options); err != nil {
		return nil, errors.WithMessage(err, "invalid sql options")
	}

	driver := options.Driver
	if driver == "" {
		driver = "mysql"
	}

	dsn := options.DSN
	if dsn == "" {
		switch driver {
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
			// clientFoundRows 让 UPDATE 返回匹配行数而不是变更行数，
			// 内容相同的幂等更新也能满足"恰好影响一行"的校验
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local&clientFoundRows=true",
				options.Username, options.Password, host, port, options.Database, charset)
		case "sqlite3":
			dsn = options.Database
		default:
			return nil, errors.Errorf("unsupported driver: %s", driver)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to open database")
	}

	maxConns := options.MaxConns
	if maxConns == 0 {
		maxConns = 10
	}
	maxIdle := options.MaxIdle
	if maxIdle == 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdle)

	if err := db.Ping(); err != nil {
		return nil, errors.WithMessage(err, "failed to ping database")
	}

	return &SQL{db: db, driver: driver, database: options.Database}, nil
}

func (s *SQL) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WithMessagef(err, "query failed: %s", query)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return result, errors.WithMessage(rows.Err(), "failed to iterate rows")
}

func (s *SQL) Execute(ctx context.Context, query string, args ...any) (*ExecResult, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WithMessagef(err, "execute failed: %s", query)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read affected rows")
	}
	// mysql 和 sqlite3 都支持 LastInsertId，非自增表返回 0
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read last insert id")
	}

	return &ExecResult{AffectedRows: affected, LastInsertID: lastID}, nil
}

func (s *SQL) ListTables(ctx context.Context) ([]string, error) {
	var query string
	var args []any
	switch s.driver {
	case "mysql":
		query = "SELECT TABLE_NAME FROM information_schema.TABLES " +
			"WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
		args = append(args, s.database)
	case "sqlite3":
		query = "SELECT name FROM sqlite_master " +
			"WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return nil, errors.Errorf("unsupported driver: %s", s.driver)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.WithMessage(err, "failed to scan table name")
		}
		tables = append(tables, name)
	}
	return tables, errors.WithMessage(rows.Err(), "failed to iterate tables")
}

func (s *SQL) DescribeTable(ctx context.Context, table string) ([]ColumnSchema, error) {
	switch s.driver {
	case "mysql":
		return s.describeMySQLTable(ctx, table)
	case "sqlite3":
		return s.describeSQLiteTable(ctx, table)
	default:
		return nil, errors.Errorf("unsupported driver: %s", s.driver)
	}
}

func (s *SQL) describeMySQLTable(ctx context.Context, table string) ([]ColumnSchema, error) {
	query := "SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY FROM information_schema.COLUMNS " +
		"WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION"
	rows, err := s.db.QueryContext(ctx, query, s.database, table)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to describe table %s", table)
	}
	defer rows.Close()

	var columns []ColumnSchema
	for rows.Next() {
		var name, dataType, nullable, columnKey string
		if err := rows.Scan(&name, &dataType, &nullable, &columnKey); err != nil {
			return nil, errors.WithMessage(err, "failed to scan column")
		}
		columns = append(columns, ColumnSchema{
			Name:       name,
			NativeType: dataType,
			PrimaryKey: columnKey == "PRI",
			NotNull:    nullable == "NO",
		})
	}
	return columns, errors.WithMessage(rows.Err(), "failed to iterate columns")
}

func (s *SQL) describeSQLiteTable(ctx context.Context, table string) ([]ColumnSchema, error) {
	query := fmt.Sprintf("PRAGMA table_info(`%s`)", table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to describe table %s", table)
	}
	defer rows.Close()

	var columns []ColumnSchema
	for rows.Next() {
		var cid int
		var name, nativeType string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &nativeType, &notNull, &dfltValue, &pk); err != nil {
			return nil, errors.WithMessage(err, "failed to scan column")
		}
		columns = append(columns, ColumnSchema{
			Name:       name,
			NativeType: nativeType,
			PrimaryKey: pk > 0,
			NotNull:    notNull != 0,
		})
	}
	return columns, errors.WithMessage(rows.Err(), "failed to iterate columns")
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// scanRows 把所有行扫描成按列名取值的 Row，[]byte 统一转成 string
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read columns")
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.WithMessage(err, "failed to scan row")
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, nil
}
