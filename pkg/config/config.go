package config

import (
	"errors"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
	Events    EventsConfig
	Finance   FinanceConfig
}

// StoreConfig selects the key-value backend holding the entity collections.
type StoreConfig struct {
	Driver    string
	Namespace string
	Table     string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs the financial dashboard cache.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig configures asynchronous report export generation.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// EventsConfig toggles payment event publishing.
type EventsConfig struct {
	Enabled       bool
	NATSURL       string
	SubjectPrefix string
}

// FinanceConfig tunes aggregation defaults.
type FinanceConfig struct {
	TopN               int
	RecentTransactions int
	Currency           string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		Namespace: v.GetString("STORE_NAMESPACE"),
		Table:     v.GetString("STORE_TABLE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	cfg.Events = EventsConfig{
		Enabled:       v.GetBool("ENABLE_EVENTS"),
		NATSURL:       v.GetString("EVENTS_NATS_URL"),
		SubjectPrefix: v.GetString("EVENTS_SUBJECT_PREFIX"),
	}

	cfg.Finance = FinanceConfig{
		TopN:               v.GetInt("FINANCE_TOP_N"),
		RecentTransactions: v.GetInt("FINANCE_RECENT_TRANSACTIONS"),
		Currency:           v.GetString("FINANCE_CURRENCY"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverMemory)
	v.SetDefault("STORE_NAMESPACE", "")
	v.SetDefault("STORE_TABLE", "kv_store")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "eduflow")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_EVENTS", false)
	v.SetDefault("EVENTS_NATS_URL", "nats://localhost:4222")
	v.SetDefault("EVENTS_SUBJECT_PREFIX", "eduflow")

	v.SetDefault("FINANCE_TOP_N", 10)
	v.SetDefault("FINANCE_RECENT_TRANSACTIONS", 10)
	v.SetDefault("FINANCE_CURRENCY", "USD")
}

// Addr returns host:port for the configured Redis instance.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
