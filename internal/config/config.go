package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Cache    CacheConfig
	Alerts   AlertConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	LoadTimeout     time.Duration
}

type DataConfig struct {
	Source        string
	SalesFile     string
	InventoryFile string
	DatabaseURL   string
}

type CacheConfig struct {
	Backend       string
	Dir           string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type AlertConfig struct {
	ExpiryWindowDays int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"

	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8501),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			LoadTimeout:     getEnvDuration("DATA_LOAD_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			Source:        getEnvString("DATA_SOURCE", SourceFile),
			SalesFile:     getEnvString("SALES_FILE", "sales_data.csv"),
			InventoryFile: getEnvString("INVENTORY_FILE", "inventory_data.csv"),
			DatabaseURL:   getEnvString("DATABASE_URL", ""),
		},
		Cache: CacheConfig{
			Backend:       getEnvString("CACHE_BACKEND", CacheFile),
			Dir:           getEnvString("CACHE_DIR", ".cache"),
			RedisURL:      getEnvString("REDIS_URL", ""),
			RedisAddr:     getEnvString("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: getEnvString("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTL:           getEnvDuration("CACHE_TTL", 24*time.Hour),
		},
		Alerts: AlertConfig{
			ExpiryWindowDays: getEnvInt("ALERT_EXPIRY_DAYS", 30),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 50),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 20),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8501"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}

	switch c.Data.Source {
	case SourceFile:
		if c.Data.SalesFile == "" || c.Data.InventoryFile == "" {
			return fmt.Errorf("sales and inventory file paths cannot be empty")
		}
	case SourcePostgres:
		if c.Data.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("invalid data source %q, must be one of: %s, %s", c.Data.Source, SourceFile, SourcePostgres)
	}

	validBackends := []string{CacheNone, CacheFile, CacheRedis}
	if !slices.Contains(validBackends, c.Cache.Backend) {
		return fmt.Errorf("invalid cache backend %q, must be one of: %s", c.Cache.Backend, strings.Join(validBackends, ", "))
	}

	if c.Alerts.ExpiryWindowDays < 0 {
		return fmt.Errorf("alert expiry window cannot be negative")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
