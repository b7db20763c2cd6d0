package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig 数据库配置 (audit trail store)
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`              // 数据库文件路径
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大生命周期
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 是否自动迁移
}

// ServerConfig 管理接口服务器配置
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// PoolConfig 供应商池运行参数
type PoolConfig struct {
	PoolFilePath        string        `mapstructure:"pool_file_path"`
	MaxErrorCount       int           `mapstructure:"max_error_count"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	SaveDebounceTime    time.Duration `mapstructure:"save_debounce_time"`
	LogLevel            string        `mapstructure:"log_level"`

	UseSystemProxyGemini bool `mapstructure:"use_system_proxy_gemini"`
	UseSystemProxyOpenAI bool `mapstructure:"use_system_proxy_openai"`
	UseSystemProxyClaude bool `mapstructure:"use_system_proxy_claude"`
	UseSystemProxyQwen   bool `mapstructure:"use_system_proxy_qwen"`
	UseSystemProxyKiro   bool `mapstructure:"use_system_proxy_kiro"`
}

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Pool     PoolConfig     `mapstructure:"pool"`
}

// LoadConfig 加载配置（简化版，暂不依赖 Viper）。先尝试加载 .env（不存在时静默忽略），
// 再套用默认值，最后允许环境变量覆盖。
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Path:            "./data/poolmanager.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
		Pool: PoolConfig{
			PoolFilePath:        "provider_pools.json",
			MaxErrorCount:       3,
			HealthCheckInterval: 600 * time.Second,
			SaveDebounceTime:    time.Second,
			LogLevel:            "info",
		},
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}

	if v := os.Getenv("POOL_FILE_PATH"); v != "" {
		config.Pool.PoolFilePath = v
	}
	if v := os.Getenv("POOL_MAX_ERROR_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pool.MaxErrorCount = n
		}
	}
	if v := os.Getenv("POOL_HEALTH_CHECK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pool.HealthCheckInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("POOL_SAVE_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pool.SaveDebounceTime = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("POOL_LOG_LEVEL"); v != "" {
		config.Pool.LogLevel = v
	}

	config.Pool.UseSystemProxyGemini = envBool("USE_SYSTEM_PROXY_GEMINI", config.Pool.UseSystemProxyGemini)
	config.Pool.UseSystemProxyOpenAI = envBool("USE_SYSTEM_PROXY_OPENAI", config.Pool.UseSystemProxyOpenAI)
	config.Pool.UseSystemProxyClaude = envBool("USE_SYSTEM_PROXY_CLAUDE", config.Pool.UseSystemProxyClaude)
	config.Pool.UseSystemProxyQwen = envBool("USE_SYSTEM_PROXY_QWEN", config.Pool.UseSystemProxyQwen)
	config.Pool.UseSystemProxyKiro = envBool("USE_SYSTEM_PROXY_KIRO", config.Pool.UseSystemProxyKiro)

	return config, nil
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
