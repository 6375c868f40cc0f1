package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data source names accepted by DATA_SOURCE
const (
	SourceProxy  = "proxy"
	SourceDirect = "direct"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken  string `masq:"secret"`
	GitHubAPIURL string

	// Dashboard data source
	DataSource     string // "proxy" or "direct"
	AnalyzerURL    string
	PrimaryTimeout time.Duration
	StepInterval   time.Duration

	// Analysis service
	APIPort        string
	APIHost        string
	AllowedOrigins []string

	// Dashboard web UI
	DashboardPort string
	DashboardHost string

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string

	// Error reporting
	SentryDSN string
	SentryEnv string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv builds the configuration from the given lookup function
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	get := func(key, defaultValue string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return defaultValue
	}

	timeout, err := parseDuration("PRIMARY_TIMEOUT", get("PRIMARY_TIMEOUT", "30s"))
	if err != nil {
		return nil, err
	}
	interval, err := parseDuration("STEP_INTERVAL", get("STEP_INTERVAL", "800ms"))
	if err != nil {
		return nil, err
	}

	return &Config{
		GitHubToken:    get("GITHUB_TOKEN", ""),
		GitHubAPIURL:   get("GITHUB_API_URL", "https://api.github.com/"),
		DataSource:     get("DATA_SOURCE", SourceProxy),
		AnalyzerURL:    get("ANALYZER_URL", "http://127.0.0.1:5001"),
		PrimaryTimeout: timeout,
		StepInterval:   interval,
		APIPort:        get("API_PORT", "5001"),
		APIHost:        get("API_HOST", "127.0.0.1"),
		AllowedOrigins: splitList(get("ALLOWED_ORIGINS", "*")),
		DashboardPort:  get("DASHBOARD_PORT", "8080"),
		DashboardHost:  get("DASHBOARD_HOST", "127.0.0.1"),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "text"),
		LogOutput:      get("LOG_OUTPUT", "stdout"),
		SentryDSN:      get("SENTRY_DSN", ""),
		SentryEnv:      get("SENTRY_ENV", ""),
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DataSource != SourceProxy && c.DataSource != SourceDirect {
		return &ConfigError{Field: "DATA_SOURCE", Message: "must be 'proxy' or 'direct'"}
	}
	if c.DataSource == SourceProxy && c.AnalyzerURL == "" {
		return &ConfigError{Field: "ANALYZER_URL", Message: "analysis service URL is required when DATA_SOURCE is 'proxy'"}
	}
	if c.PrimaryTimeout <= 0 {
		return &ConfigError{Field: "PRIMARY_TIMEOUT", Message: "must be a positive duration"}
	}
	if c.StepInterval < 0 {
		return &ConfigError{Field: "STEP_INTERVAL", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func parseDuration(field, value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	// Bare numbers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, &ConfigError{Field: field, Message: "invalid duration " + strconv.Quote(value)}
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
