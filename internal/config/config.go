// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"socialtrack/internal/domain/analytics"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Alerts      AlertsConfig
	Analytics   AnalyticsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedisConfig holds report cache configuration. An empty URL disables the cache.
type RedisConfig struct {
	URL       string
	ReportTTL time.Duration
}

// AlertsConfig holds background alert monitor configuration
type AlertsConfig struct {
	Enabled      bool
	ScanInterval time.Duration
	EventsTopic  string
}

// AnalyticsConfig holds analytics engine policy
type AnalyticsConfig struct {
	DashboardRecommendations int
	DashboardAlerts          int
	Priorities               analytics.PriorityTable
}

// Load loads configuration from environment variables, reading a .env file first when one exists
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "socialtrack"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			ReportTTL: getEnvAsDuration("REDIS_REPORT_TTL", 5*time.Minute),
		},
		Alerts: AlertsConfig{
			Enabled:      getEnvAsBool("ALERTS_ENABLED", true),
			ScanInterval: getEnvAsDuration("ALERTS_SCAN_INTERVAL", 15*time.Minute),
			EventsTopic:  getEnv("ALERTS_EVENTS_TOPIC", "alerts"),
		},
		Analytics: AnalyticsConfig{
			DashboardRecommendations: getEnvAsInt("ANALYTICS_DASHBOARD_RECOMMENDATIONS", 2),
			DashboardAlerts:          getEnvAsInt("ANALYTICS_DASHBOARD_ALERTS", 3),
			Priorities:               getPriorities(),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", config.Server.Port)
	}

	if config.Alerts.Enabled && config.Alerts.ScanInterval <= 0 {
		return fmt.Errorf("alert scan interval must be positive")
	}

	if config.Analytics.DashboardRecommendations < 0 || config.Analytics.DashboardAlerts < 0 {
		return fmt.Errorf("dashboard limits must not be negative")
	}

	for heuristic, priority := range config.Analytics.Priorities {
		if priority.Rank() > analytics.PriorityLow.Rank() {
			return fmt.Errorf("invalid priority %q for %s", priority, heuristic)
		}
	}

	if config.Database.Password == "postgres" && config.Environment == "production" {
		return fmt.Errorf("database password must be set in production")
	}

	return nil
}

// getPriorities overrides the default heuristic priorities from ANALYTICS_PRIORITY_<HEURISTIC>
func getPriorities() analytics.PriorityTable {
	priorities := analytics.DefaultPriorities()
	for heuristic := range priorities {
		key := "ANALYTICS_PRIORITY_" + strings.ToUpper(string(heuristic))
		if value := getEnv(key, ""); value != "" {
			priorities[heuristic] = analytics.Priority(strings.ToLower(value))
		}
	}
	return priorities
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
