package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"calcdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Upload   UploadConfig
	LogLevel string
}

// DatabaseConfig holds the section store connection settings
type DatabaseConfig struct {
	Driver       string // "postgres" or "sqlite"
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port       string
	GinMode    string
	AdminToken string
}

// UploadConfig holds ingestion limits and temp storage settings
type UploadConfig struct {
	MaxFileSizeMB     int
	TempDir           string
	TempTTL           time.Duration
	CleanupInterval   time.Duration
	InstitutionsSheet string
	CoursesSheet      string
}

// MaxFileSizeBytes returns the upload ceiling in bytes.
func (u UploadConfig) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) * 1024 * 1024
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: *loadDatabaseConfig(),
		Server:   *loadServerConfig(),
		Upload:   *loadUploadConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite))
	defaultURL := "file:calcdash.db?_pragma=busy_timeout(5000)"
	if driver == DriverPostgres {
		defaultURL = ""
	}
	return &DatabaseConfig{
		Driver:       driver,
		URL:          getEnvOrDefault("DATABASE_URL", defaultURL),
		MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       getEnvOrDefault("PORT", "8080"),
		GinMode:    getEnvOrDefault("GIN_MODE", "release"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxFileSizeMB:     getEnvIntOrDefault("UPLOAD_MAX_MB", 50),
		TempDir:           getEnvOrDefault("UPLOAD_TEMP_DIR", filepath.Join(os.TempDir(), "calcdash-uploads")),
		TempTTL:           getEnvDurationOrDefault("UPLOAD_TEMP_TTL", time.Hour),
		CleanupInterval:   getEnvDurationOrDefault("UPLOAD_CLEANUP_INTERVAL", 10*time.Minute),
		InstitutionsSheet: getEnvOrDefault("INSTITUTIONS_SHEET", "All_Institutions"),
		CoursesSheet:      getEnvOrDefault("COURSES_SHEET", "All_Courses"),
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return errors.ConfigInvalid("DB_DRIVER must be postgres or sqlite, got " + config.Database.Driver)
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Upload.MaxFileSizeMB <= 0 {
		return errors.ConfigInvalid("UPLOAD_MAX_MB must be positive")
	}
	if config.Upload.TempTTL <= 0 {
		return errors.ConfigInvalid("UPLOAD_TEMP_TTL must be positive")
	}
	if config.Upload.TempDir == "" {
		return errors.ConfigInvalid("upload temp directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
