package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// BackendConfig points the client at the document assistant service
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ChatTimeout    time.Duration `mapstructure:"chat_timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Debug          bool          `mapstructure:"debug"`
}

type UploadConfig struct {
	DefaultQuality string   `mapstructure:"default_quality"`
	AcceptedTypes  []string `mapstructure:"accepted_types"`
}

type ChatConfig struct {
	MinMessageLength int `mapstructure:"min_message_length"`
}

type CacheConfig struct {
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// ServerConfig configures the local stand-in backend
type ServerConfig struct {
	Host              string          `mapstructure:"host"`
	Port              int             `mapstructure:"port"`
	ReadTimeout       time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration   `mapstructure:"middleware_timeout"`
	MaxUploadBytes    int64           `mapstructure:"max_upload_bytes"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig caps session calls per client IP. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// RedisConfig locates the rate limit store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DSN returns the sqlite driver connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", c.Path)
}

// MigrateURL returns the golang-migrate database URL
func (c DatabaseConfig) MigrateURL() string {
	return "sqlite://" + c.Path
}

type StorageConfig struct {
	DocumentsDir string `mapstructure:"documents_dir"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type OllamaConfig struct {
	Host    string        `mapstructure:"host"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults and env vars only
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Backend
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.request_timeout", "30s")
	v.SetDefault("backend.chat_timeout", "5m")
	v.SetDefault("backend.upload_timeout", "15m")
	v.SetDefault("backend.user_agent", "docchat/1.0")
	v.SetDefault("backend.debug", false)

	// Upload
	v.SetDefault("upload.default_quality", "fast")
	v.SetDefault("upload.accepted_types", []string{"application/pdf"})

	// Chat
	v.SetDefault("chat.min_message_length", 2)

	// Cache
	v.SetDefault("cache.session_ttl", "1m")
	v.SetDefault("cache.cleanup_interval", "5m")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_age", "168h") // 7 days
	v.SetDefault("logging.rotation_time", "24h")

	// Metrics
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "127.0.0.1:9464")
	v.SetDefault("metrics.path", "/metrics")

	// Stand-in backend
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.middleware_timeout", "10m")
	v.SetDefault("server.max_upload_bytes", 256<<20)
	v.SetDefault("server.rate_limit.requests_per_minute", 0)
	v.SetDefault("server.rate_limit.burst", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.path", "./data/sessions.db")
	v.SetDefault("storage.documents_dir", "./data/documents")

	v.SetDefault("llm.provider", "echo")
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "llama3.2")
	v.SetDefault("llm.ollama.timeout", "5m")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("backend.base_url", "BACKEND_ENDPOINT")
	v.BindEnv("logging.level", "DOCCHAT_LOG_LEVEL")
	v.BindEnv("logging.file", "DOCCHAT_LOG_FILE")

	v.BindEnv("server.port", "DEVSERVER_PORT")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("storage.documents_dir", "DOCUMENTS_DIR")

	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")
	v.BindEnv("llm.ollama.model", "OLLAMA_MODEL")
}
