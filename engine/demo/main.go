package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hatlonely/metax/database"
	"github.com/hatlonely/metax/engine"
	"github.com/hatlonely/metax/log"
	"github.com/hatlonely/metax/meta"
)

const defaultConfig = `
meta:
  driver: sqlite
  database: ./demo_meta.db
database:
  driver: sqlite3
  database: ./demo_domain.db
logger:
  level: info
  format: text
`

// Config 与配置文件对应的引擎配置
type Config struct {
	Meta     *meta.StoreOptions   `yaml:"meta"`
	Database *database.SQLOptions `yaml:"database"`
	Logger   *log.SLogOptions     `yaml:"logger"`
}

func main() {
	config, err := loadConfig()
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove("./demo_meta.db")
	defer os.Remove("./demo_domain.db")

	ctx := context.Background()

	// 领域库里先准备一张业务表，引擎启动后会自动推断它的模型
	db, err := database.NewSQLWithOptions(config.Database)
	if err != nil {
		fmt.Printf("连接领域库失败: %v\n", err)
		os.Exit(1)
	}
	if _, err := db.Execute(ctx, "CREATE TABLE IF NOT EXISTS users ("+
		"id INTEGER PRIMARY KEY AUTOINCREMENT, "+
		"first_name TEXT NOT NULL, "+
		"last_name TEXT NOT NULL, "+
		"email TEXT)"); err != nil {
		fmt.Printf("建表失败: %v\n", err)
		os.Exit(1)
	}

	// 领域库包一层观测装饰器，引擎的每次存储操作都会产生指标和日志
	obs, err := database.NewObservable(db, &database.ObservableOptions{
		Logger:        config.Logger,
		EnableMetrics: true,
		EnableLogging: true,
		Name:          "demo",
	})
	if err != nil {
		fmt.Printf("创建观测装饰器失败: %v\n", err)
		os.Exit(1)
	}

	metaStore, err := meta.NewStoreWithOptions(config.Meta)
	if err != nil {
		fmt.Printf("连接元数据库失败: %v\n", err)
		os.Exit(1)
	}
	if err := metaStore.AutoMigrate(ctx); err != nil {
		fmt.Printf("初始化元数据表失败: %v\n", err)
		os.Exit(1)
	}

	eng := engine.NewEngine(metaStore, obs)
	defer eng.Close()

	fmt.Println("=== 示例1: 推断实体模型 ===")
	entities, err := eng.EntityTypes(ctx)
	if err != nil {
		fmt.Printf("推断失败: %v\n", err)
		os.Exit(1)
	}
	for _, entity := range entities {
		fmt.Printf("实体 %s (%s), 标题模板 %q\n", entity.Code, entity.Name, entity.TitleFormat.Title)
		for _, field := range entity.Fields {
			fmt.Printf("  字段 %s type=%s identifier=%v mandatory=%v\n",
				field.Code, field.Type, field.Identifier, field.Mandatory)
		}
	}

	fmt.Println("\n=== 示例2: 创建和读取 ===")
	created, err := eng.Create(ctx, "users", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
	})
	if err != nil {
		fmt.Printf("创建失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("创建成功, id=%v\n", created["id"])

	rows, err := eng.Read(ctx, "users", nil)
	if err != nil {
		fmt.Printf("读取失败: %v\n", err)
		os.Exit(1)
	}
	for _, row := range rows {
		fmt.Printf("读取到 %v\n", row)
	}

	fmt.Println("\n=== 示例3: 更新和删除 ===")
	updated, err := eng.Update(ctx, "users", map[string]any{
		"id":    created["id"],
		"email": "countess@example.com",
	})
	if err != nil {
		fmt.Printf("更新失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("更新后 email=%v\n", updated["email"])

	if err := eng.Delete(ctx, "users", created); err != nil {
		fmt.Printf("删除失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("删除成功")
}

// loadConfig 从第一个命令行参数读取 yaml 配置，没有参数时用内置配置
func loadConfig() (*Config, error) {
	content := []byte(defaultConfig)
	if len(os.Args) > 1 {
		var err error
		content, err = os.ReadFile(os.Args[1])
		if err != nil {
			return nil, err
		}
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
