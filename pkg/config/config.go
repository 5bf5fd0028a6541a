package config

import (
	"fmt"
	"time"

	"github.com/go-ini/ini"
	"github.com/sirupsen/logrus"
)

// DefaultDBPath 未配置时使用的数据库路径
const DefaultDBPath = "./data/duoproject.db"

// Config 应用配置
type Config struct {
	Database  DatabaseConfig  `ini:"database"`
	Output    OutputConfig    `ini:"output"`
	Server    ServerConfig    `ini:"server"`
	Cache     CacheConfig     `ini:"cache"`
	RateLimit RateLimitConfig `ini:"ratelimit"`
	Breaker   BreakerConfig   `ini:"breaker"`
	Etcd      EtcdConfig      `ini:"etcd"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver        string   `ini:"driver"`            // sqlite / duckdb
	Path          string   `ini:"path"`              // 数据库文件路径
	IncludeViews  bool     `ini:"include_views"`     // 是否列出视图
	IncludeSystem bool     `ini:"include_system"`    // 是否保留 sqlite_ 内部表
	Tables        []string `ini:"tables" delim:","` // 只导出这些表
	MaxIdle       int      `ini:"max_idle"`          // 最大空闲连接数
	MaxOpen       int      `ini:"max_open"`          // 最大打开连接数
}

// OutputConfig 输出配置
type OutputConfig struct {
	Format string `ini:"format"` // text / json
	Limit  int    `ini:"limit"`  // 每张表最多行数，0表示全部
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        string `ini:"port"`         // 服务端口
	ServiceName string `ini:"service_name"` // 服务名称
	ServiceAddr string `ini:"service_addr"` // 服务地址
	MaxLimit    int    `ini:"max_limit"`    // 单次请求最多返回行数
}

// CacheConfig 缓存配置
type CacheConfig struct {
	MaxBytes      int64 `ini:"max_bytes"`      // 最大缓存字节数
	ExpireSeconds int   `ini:"expire_seconds"` // 过期时间（秒）
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	TablesQPS    int `ini:"tables_qps"`
	TablesBurst  int `ini:"tables_burst"`
	DefaultQPS   int `ini:"default_qps"`
	DefaultBurst int `ini:"default_burst"`
}

// BreakerConfig 熔断配置
type BreakerConfig struct {
	FailureThreshold int `ini:"failure_threshold"` // 连续失败次数，0表示不熔断
	OpenSeconds      int `ini:"open_seconds"`      // 熔断持续时间（秒）
}

// EtcdConfig etcd配置
type EtcdConfig struct {
	Endpoints string `ini:"endpoints"` // etcd地址列表，逗号分隔
	Prefix    string `ini:"prefix"`    // 键前缀
	TTL       int64  `ini:"ttl"`       // 租约TTL（秒）
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    DefaultDBPath,
			MaxIdle: 1,
			MaxOpen: 1,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Port:        "8080",
			ServiceName: "tabledump",
			MaxLimit:    1000,
		},
		Cache: CacheConfig{
			MaxBytes:      64 * 1024 * 1024,
			ExpireSeconds: 60,
		},
		RateLimit: RateLimitConfig{
			TablesQPS:    50,
			TablesBurst:  100,
			DefaultQPS:   200,
			DefaultBurst: 400,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenSeconds:      30,
		},
		Etcd: EtcdConfig{
			Prefix: "/services",
			TTL:    10,
		},
	}
}

// LoadConfig 加载配置文件，未出现的键保留默认值
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	err := ini.MapTo(cfg, filePath)
	if err != nil {
		logrus.Errorf("Failed to load config file: %v", err)
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Infof("Config loaded successfully from: %s", filePath)
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "duckdb":
	default:
		return fmt.Errorf("invalid database driver: %q", c.Database.Driver)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format: %q", c.Output.Format)
	}
	if c.Output.Limit < 0 {
		return fmt.Errorf("output limit must not be negative: %d", c.Output.Limit)
	}
	if c.Breaker.FailureThreshold < 0 || c.Breaker.OpenSeconds < 0 {
		return fmt.Errorf("breaker settings must not be negative")
	}
	return nil
}

// OpenTimeout 熔断持续时间
func (b *BreakerConfig) OpenTimeout() time.Duration {
	return time.Duration(b.OpenSeconds) * time.Second
}

// CacheTTL 缓存过期时间
func (c *CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.ExpireSeconds) * time.Second
}
