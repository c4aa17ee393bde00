// Package config loads the application configuration from environment
// variables, the only configuration source in the Lambda images.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Upstream Nile API
	NileBaseURL     string
	UpstreamTimeout time.Duration

	// AWS configuration
	AWSRegion         string
	FacilityTableName string
	APIKeysTableName  string
	SyncEventBus      string

	// Scheduled sync credentials (cmd/sync without an inbound request)
	SyncTenantID string
	SyncAPIKey   string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// CORS
	CORSAllowedOrigins []string

	// Logging and features
	LogLevel      string
	EnableTracing bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	lambdaName := getEnv("AWS_LAMBDA_FUNCTION_NAME", "")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		NileBaseURL:     getEnv("NILE_BASE_URL", "https://u1.nile-global.cloud"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),

		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		FacilityTableName: getEnv("FACILITY_TABLE_NAME", "tenant"),
		APIKeysTableName:  getEnv("API_KEYS_TABLE_NAME", "UserApiKeys"),
		SyncEventBus:      getEnv("SYNC_EVENT_BUS", ""),

		SyncTenantID: getEnv("SYNC_TENANT_ID", ""),
		SyncAPIKey:   getEnv("SYNC_API_KEY", ""),

		IsLambda:           lambdaName != "",
		LambdaFunctionName: lambdaName,

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.NileBaseURL == "" {
		return fmt.Errorf("NILE_BASE_URL must not be empty")
	}
	if c.Environment == "production" {
		if c.FacilityTableName == "" {
			return fmt.Errorf("FACILITY_TABLE_NAME is required")
		}
		if c.APIKeysTableName == "" {
			return fmt.Errorf("API_KEYS_TABLE_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration gets a duration environment variable with a default
// value; accepts Go duration syntax ("30s", "2m").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable as a slice
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
