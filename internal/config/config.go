package config

import (
	"strings"

	"github.com/blues/nftsender/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Minting    MintingConfig    `mapstructure:"minting"`
	Validation ValidationConfig `mapstructure:"validation"`
	Task       TaskConfig       `mapstructure:"task"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 数据库配置（postgres 使用 host/port 等字段，sqlite 使用 path）
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// ProviderConfig 外部铸造服务配置
type ProviderConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"` // 0 表示沿用 http.Client 默认值
	RateLimit      float64 `mapstructure:"rate_limit"`      // 每秒请求数，0 表示不限流
	RateBurst      int     `mapstructure:"rate_burst"`
}

// MintingConfig 批量铸造配置
type MintingConfig struct {
	BatchSize int    `mapstructure:"batch_size"`
	EdgeURL   string `mapstructure:"edge_url"` // 为空时进程内调用铸造处理器
}

type ValidationConfig struct {
	DebounceMs int `mapstructure:"debounce_ms"`
}

type TaskConfig struct {
	ValidationInterval int `mapstructure:"validation_interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, stderr, file
	File   string `mapstructure:"file"`
}

// GetLevel 实现 logger.OutputConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.OutputConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.OutputConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// SetDefaults 设置默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "nftsender")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "nftsender.db")
	v.SetDefault("provider.base_url", "https://staging.crossmint.com/api/2022-06-09")
	v.SetDefault("provider.timeout_seconds", 0)
	v.SetDefault("provider.rate_limit", 0)
	v.SetDefault("provider.rate_burst", 1)
	v.SetDefault("minting.batch_size", 5)
	v.SetDefault("minting.edge_url", "")
	v.SetDefault("validation.debounce_ms", 500)
	v.SetDefault("task.validation_interval", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// Load 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nftsender")

	SetDefaults(v)

	// 自动读取环境变量：PROVIDER_BASE_URL -> provider.base_url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Could not read config file: %v", err)
	}

	cfg, err := decode(v)
	if err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Minting.BatchSize <= 0 {
		cfg.Minting.BatchSize = 5
	}
	return &cfg, nil
}
