package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Trip     TripConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// TripConfig holds trip lifecycle tuning knobs.
type TripConfig struct {
	// ArrivalRadiusM is the geofence radius in meters around origin and
	// destination.
	ArrivalRadiusM float64
	// GracePeriod is how long after driver arrival a cancellation stays
	// penalty-free.
	GracePeriod time.Duration
	// WatchdogInterval is how often the stale-trip sweep runs.
	WatchdogInterval time.Duration
	// DisconnectTimeout demotes active trips without a location update.
	DisconnectTimeout time.Duration
	// ReviewTimeout parks long-disconnected trips for manual review.
	ReviewTimeout time.Duration
	// LinkTTL is the lifetime of a shared trip link.
	LinkTTL time.Duration
	// OpsRecipientID receives safety alert notifications.
	OpsRecipientID string
}

// Load loads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "taxipro"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "taxipro"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Trip: TripConfig{
			ArrivalRadiusM:    getFloatEnv("TRIP_ARRIVAL_RADIUS_M", 150),
			GracePeriod:       getDurationEnv("TRIP_GRACE_PERIOD", 5*time.Minute),
			WatchdogInterval:  getDurationEnv("TRIP_WATCHDOG_INTERVAL", time.Minute),
			DisconnectTimeout: getDurationEnv("TRIP_DISCONNECT_TIMEOUT", 5*time.Minute),
			ReviewTimeout:     getDurationEnv("TRIP_REVIEW_TIMEOUT", 60*time.Minute),
			LinkTTL:           getDurationEnv("TRIP_LINK_TTL", 24*time.Hour),
			OpsRecipientID:    getEnv("TRIP_OPS_RECIPIENT_ID", "ops"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
