package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all runtime settings read from the environment.
type Config struct {
	AppEnv   string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Leave    LeaveConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
	MaxRetries  int
}

// DSN returns the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr              string
	DashboardCacheTTL time.Duration
}

type KafkaConfig struct {
	Broker        string
	OutboxEnabled bool
	ConsumerGroup string
}

type AuthConfig struct {
	JWTSecret          string
	AllowedEmailDomain string
	DefaultUserRole    string
}

type LeaveConfig struct {
	DefaultBalance decimal.Decimal
}

type StorageConfig struct {
	Dir string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func Load() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "leave_tracker"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SQLitePath:  getEnv("SQLITE_PATH", "leave_tracker.db"),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", true),
			MaxRetries:  getInt("DB_MAX_RETRIES", 5),
		},
		Redis: RedisConfig{
			Addr:              getEnv("REDIS_ADDR", "localhost:6379"),
			DashboardCacheTTL: getDuration("DASHBOARD_CACHE_TTL", time.Minute),
		},
		Kafka: KafkaConfig{
			Broker:        getEnv("KAFKA_BROKER", "localhost:9092"),
			OutboxEnabled: getBool("OUTBOX_ENABLED", true),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "leave-tracker-dashboard"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "change-me"),
			AllowedEmailDomain: strings.ToLower(getEnv("ALLOWED_EMAIL_DOMAIN", "asiaprobutuan.com")),
			DefaultUserRole:    strings.ToUpper(getEnv("DEFAULT_USER_ROLE", "HEAD")),
		},
		Leave: LeaveConfig{
			DefaultBalance: getDecimal("DEFAULT_LEAVE_BALANCE", decimal.NewFromInt(15)),
		},
		Storage: StorageConfig{
			Dir: getEnv("STORAGE_DIR", "storage"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(os.Getenv(key))
	if err != nil || v.IsNegative() {
		return defaultValue
	}
	return v
}
