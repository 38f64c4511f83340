// Package config 加载 repokit 的运行配置
//
// 来源优先级（高到低）：环境变量 REPOKIT_*（含当前目录 .env 中的定义）、配置文件、默认值。
// 嵌套键在环境变量中以下划线连接，例如 redis.addr 对应 REPOKIT_REDIS_ADDR。
package config

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"repokit/domain/repository"
	"repokit/errors"
)

// 支持的存储后端
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
)

const (
	envPrefix      = "REPOKIT"
	configFileName = "repokit"
)

// Config 运行配置
type Config struct {
	Backend string `mapstructure:"backend"`

	// Driver database/sql 驱动名，为空时按 Backend 推断
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	Redis   RedisConfig `mapstructure:"redis"`
	NATS    NATSConfig  `mapstructure:"nats"`
	Cache   CacheConfig `mapstructure:"cache"`
	PerPage int         `mapstructure:"per_page"`
	Log     LogConfig   `mapstructure:"log"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// NATSConfig URL 为空时不发布变更事件
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// CacheConfig Size 为 0 时不启用读缓存
type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendMemory)
	v.SetDefault("driver", "")
	v.SetDefault("dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "repokit:users")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "repokit.users")
	v.SetDefault("cache.size", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("per_page", repository.DefaultPerPage)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load 读取配置；path 为空时在当前目录与 $HOME/.repokit 中查找 repokit.{yaml,json,toml}，
// 找不到配置文件不视为错误
func Load(path string) (*Config, error) {
	// .env 不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !stdErrors.Is(err, fs.ErrNotExist) {
		return nil, errors.WrapError(err, errors.ErrCodeInvalidInput, "读取 .env 失败")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.repokit")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stdErrors.As(err, &notFound) {
			return nil, errors.WrapError(err, errors.ErrCodeInvalidInput, "读取配置文件失败")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeInvalidInput, "解析配置失败")
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite, BackendPostgres, BackendMySQL:
		if c.DSN == "" {
			return errors.Errorf(errors.ErrCodeInvalidInput, "backend %s requires dsn", c.Backend)
		}
	default:
		return errors.Errorf(errors.ErrCodeInvalidInput, "unknown backend %q", c.Backend)
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.NewError(errors.ErrCodeInvalidInput, "backend redis requires redis.addr")
	}
	if c.PerPage <= 0 {
		return errors.Errorf(errors.ErrCodeInvalidInput, "per_page must be positive, got %d", c.PerPage)
	}
	if c.Cache.Size < 0 {
		return errors.Errorf(errors.ErrCodeInvalidInput, "cache.size must not be negative, got %d", c.Cache.Size)
	}
	return nil
}

// IsSQL 是否为关系型后端
func (c *Config) IsSQL() bool {
	switch c.Backend {
	case BackendSQLite, BackendPostgres, BackendMySQL:
		return true
	}
	return false
}

// SQLDriver database/sql 驱动名
func (c *Config) SQLDriver() string {
	if c.Driver != "" {
		return c.Driver
	}
	switch c.Backend {
	case BackendPostgres:
		return "pgx"
	case BackendMySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("backend=%s driver=%s per_page=%d cache=%d nats=%t",
		c.Backend, c.SQLDriver(), c.PerPage, c.Cache.Size, c.NATS.URL != "")
}
