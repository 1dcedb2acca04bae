// Package config loads contraverify settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables that override the verification service base URLs
const (
	EnvWalnutURL  = "WALNUT_API_URL"
	EnvVoyagerURL = "VOYAGER_API_URL"
)

// Config holds all configuration for the CLI and the stub verifier server
type Config struct {
	Verifiers VerifiersConfig
	HTTP      HTTPConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Server    ServerConfig
}

// VerifiersConfig holds base URL overrides for each verification service.
// An empty value means the service's hosted default is used.
type VerifiersConfig struct {
	WalnutURL  string
	VoyagerURL string
}

// HTTPConfig holds settings for outgoing verification requests
type HTTPConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	UserAgent     string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled bool
	// Textfile is where the CLI writes its metrics on exit (node_exporter
	// textfile collector format). Empty disables the write.
	Textfile string
}

// ServerConfig holds settings for the stub verifier server
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	MaxBodyMB    int

	// RejectMessage, when set, makes the stub answer every valid submission
	// with 400 and this body.
	RejectMessage string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Verifiers: VerifiersConfig{
			WalnutURL:  getEnv(EnvWalnutURL, ""),
			VoyagerURL: getEnv(EnvVoyagerURL, ""),
		},
		HTTP: HTTPConfig{
			Timeout:       getEnvDuration("CONTRAVERIFY_HTTP_TIMEOUT", 60*time.Second),
			RetryAttempts: getEnvInt("CONTRAVERIFY_RETRY_ATTEMPTS", 3),
			RetryBackoff:  getEnvDuration("CONTRAVERIFY_RETRY_BACKOFF", 2*time.Second),
			UserAgent:     getEnv("CONTRAVERIFY_USER_AGENT", "contraverify"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Enabled:  getEnvBool("METRICS_ENABLED", false),
			Textfile: getEnv("METRICS_TEXTFILE", ""),
		},
		Server: ServerConfig{
			Port:         getEnvInt("PORT", 8545),
			Host:         getEnv("HOST", "127.0.0.1"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			MaxBodyMB:    getEnvInt("SERVER_MAX_BODY_MB", 20),

			RejectMessage: getEnv("STUB_REJECT_MESSAGE", ""),
		},
	}

	// A textfile target implies metrics are wanted
	if cfg.Metrics.Textfile != "" {
		cfg.Metrics.Enabled = true
	}

	if cfg.HTTP.RetryAttempts < 1 {
		cfg.HTTP.RetryAttempts = 1
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("30s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
