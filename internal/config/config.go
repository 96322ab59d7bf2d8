package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port          int    `mapstructure:"port"`
	Mode          string `mapstructure:"mode"` // debug, release, test
	ReadTimeout   int    `mapstructure:"read_timeout"`
	WriteTimeout  int    `mapstructure:"write_timeout"`
	ServiceName   string `mapstructure:"service_name"`   // /health 返回的服务名
	EnableSwagger bool   `mapstructure:"enable_swagger"` // 挂载 /swagger/*any
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// StorageConfig 审批数据存储配置
type StorageConfig struct {
	// 后端类型: file(默认), memory, sqlite, postgres, redis
	Backend string            `mapstructure:"backend"`
	File    FileStorageConfig `mapstructure:"file"`
	Redis   RedisStoreConfig  `mapstructure:"redis"`
}

// FileStorageConfig JSON 文件存储配置
type FileStorageConfig struct {
	Path string `mapstructure:"path"` // 默认 approval_data/approvals.json
}

// RedisStoreConfig Redis 存储配置
type RedisStoreConfig struct {
	Key string `mapstructure:"key"` // 快照所在的键
}

// DatabaseConfig 数据库配置（sqlite / postgres 后端使用）
type DatabaseConfig struct {
	Path            string `mapstructure:"path"` // sqlite 文件路径
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	// 连接模式: standalone(单节点), sentinel(哨兵), cluster(集群)
	Mode string `mapstructure:"mode"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	MasterName       string   `mapstructure:"master_name"`
	SentinelAddrs    []string `mapstructure:"sentinel_addrs"`
	SentinelPassword string   `mapstructure:"sentinel_password"`

	ClusterAddrs []string `mapstructure:"cluster_addrs"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
}

// ApprovalConfig 审批策略配置
type ApprovalConfig struct {
	// StrictTransitions 为 true 时只有 pending 记录可被审批/拒绝
	StrictTransitions bool `mapstructure:"strict_transitions"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

var globalConfig *Config

// setDefaults 默认值保证无配置文件时也能启动
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.service_name", "Approval Service")
	v.SetDefault("server.enable_swagger", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.file.path", "approval_data/approvals.json")
	v.SetDefault("storage.redis.key", "opstella:approvals")

	v.SetDefault("database.path", "approval_data/approvals.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.mode", "standalone")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("approval.strict_transitions", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load 加载配置
// env: 环境名称（dev, prod, test）
// configPath: 配置文件路径（可选）
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		v.SetConfigName(env) // dev.yaml, prod.yaml
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	// 读取环境变量（优先级高于配置文件）
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // APP_STORAGE_BACKEND

	// 按环境名查找时允许缺少配置文件，显式指定路径时必须存在
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "file", "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("不支持的存储后端: %q (可选: file, memory, sqlite, postgres, redis)", c.Storage.Backend)
	}
	if c.Storage.Backend == "file" && strings.TrimSpace(c.Storage.File.Path) == "" {
		return fmt.Errorf("file 存储后端需要配置 storage.file.path")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", c.Server.Port)
	}
	return nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}

// GetDSN 获取 PostgreSQL 连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr 单节点 Redis 地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
