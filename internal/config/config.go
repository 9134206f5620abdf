package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"einvoice/internal/logger"
)

// Store drivers
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// DefaultMaxBodyBytes caps request bodies when MAX_BODY_BYTES is unset.
const DefaultMaxBodyBytes = 5 << 20

type Config struct {
	// HTTP server
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxBodyBytes   int64

	// Persistence
	StoreDriver string
	DatabaseDSN string

	// Bearer token signing key
	JWTSecret string

	// Batch validation
	BatchWorkers int

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseDSN:          getEnv("DB_DSN", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.BatchWorkers, err = getEnvInt("BATCH_WORKERS", runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", DefaultMaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.MaxBodyBytes = int64(maxBody)
	if config.ReadTimeout, err = getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.WriteTimeout, err = getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1, got %d", c.BatchWorkers)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1, got %d", c.MaxBodyBytes)
	}
	switch c.StoreDriver {
	case StoreMySQL, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMySQL, StoreMemory, c.StoreDriver)
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs
func (c *Config) ValidateServer() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.StoreDriver == StoreMySQL && c.DatabaseDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
