package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`     // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`   // 数据库配置
	Auth      AuthConfig      `mapstructure:"auth"`       // 认证配置
	Log       LogConfig       `mapstructure:"log"`        // 日志配置
	Catalog   CatalogConfig   `mapstructure:"catalog"`    // 目录查询配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"` // 登录/注册限流
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`            // 服务端口
	Mode           string        `mapstructure:"mode"`            // Gin运行模式：debug/release/test
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`    // 读超时
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`   // 写超时
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 单请求 context 超时
	Pprof          bool          `mapstructure:"pprof"`           // 是否注册 /debug/pprof
	AllowOrigins   []string      `mapstructure:"allow_origins"`   // CORS 允许的来源
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // mysql / postgres / sqlite(本地开发)
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	AutoCreate      bool          `mapstructure:"auto_create"`       // 库不存在时自动创建
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 启动时迁移表结构
	LogSQL          bool          `mapstructure:"log_sql"`           // 打印SQL
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// AuthConfig JWT 与密码哈希配置
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`  // 签名密钥，必填
	TokenTTL   time.Duration `mapstructure:"token_ttl"`   // token 有效期
	BcryptCost int           `mapstructure:"bcrypt_cost"` // bcrypt 代价
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug/info/warn/error
	Format     string `mapstructure:"format"`      // text/json
	File       string `mapstructure:"file"`        // 为空时输出到 stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // 单文件大小
	MaxBackups int    `mapstructure:"max_backups"` // 保留文件数
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CatalogConfig 目录查询相关参数
type CatalogConfig struct {
	GenreFilter       string `mapstructure:"genre_filter"`        // query / procedure
	SearchLimit       int    `mapstructure:"search_limit"`        // 搜索最多返回条数
	TrendingLimit     int    `mapstructure:"trending_limit"`      // 热门榜条数
	TrendingBatchSize int    `mapstructure:"trending_batch_size"` // 热门计算每批读取行数
}

// RateLimitConfig 限流配置（按客户端 IP）
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

const (
	GenreFilterQuery     = "query"
	GenreFilterProcedure = "procedure"
)

// setDefaults 所有配置项的默认值，config.yaml 不存在时也能启动
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 15*time.Second)
	v.SetDefault("server.pprof", false)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.auto_create", true)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_sql", false)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("catalog.genre_filter", GenreFilterQuery)
	v.SetDefault("catalog.search_limit", 10)
	v.SetDefault("catalog.trending_limit", 10)
	v.SetDefault("catalog.trending_batch_size", 1000)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)
}

// LoadConfigFrom 从指定目录读取 config.yaml，敏感项从 .env 覆盖（不提交 git）；文件不存在时只用默认值与环境变量
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
}

// Validate 启动前检查必填项，缺失直接失败
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret 未配置（可通过环境变量 JWT_SECRET 设置）")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn 未配置（可通过环境变量 MYSQL_DSN 设置）")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	switch c.Catalog.GenreFilter {
	case GenreFilterQuery, GenreFilterProcedure:
	default:
		return fmt.Errorf("不支持的 catalog.genre_filter: %q", c.Catalog.GenreFilter)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("非法端口: %d", c.Server.Port)
	}
	return nil
}
