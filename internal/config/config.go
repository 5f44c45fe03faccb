package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Import   ImportConfig
	SMTP     SMTPConfig
	Export   ExportConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type ImportConfig struct {
	MaxFileSize int64 // bytes
	// BatchSize caps how many rows are upserted concurrently; it exists to
	// bound connection-pool usage from a single import call.
	BatchSize int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type ExportConfig struct {
	Recipient       string
	AutoExport      bool
	ExportFrequency string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "tanktel"),
			Password: getEnv("DB_PASSWORD", "tanktel_dev_password"),
			DBName:   getEnv("DB_NAME", "tanktel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int(getIntEnv("DB_MAX_CONNS", 20)),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Issuer:      getEnv("JWT_ISSUER", "tank-telemetry"),
			ExpiryHours: getIntEnv("JWT_EXPIRY_HOURS", 24),
		},
		Import: ImportConfig{
			MaxFileSize: int64(getIntEnv("IMPORT_MAX_SIZE_MB", 20)) * 1024 * 1024,
			BatchSize:   getIntEnv("IMPORT_BATCH_SIZE", 5),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getIntEnv("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "telemetry@lpgreadings.au"),
		},
		Export: ExportConfig{
			Recipient:       getEnv("EMAIL_TO", "vic@elgas.com.au"),
			AutoExport:      getBoolEnv("EXPORT_AUTO", false),
			ExportFrequency: getEnv("EXPORT_FREQUENCY", "daily"),
		},
	}
}

// DSN returns the Postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
