package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	API     APIConfig     `json:"api"`
	Mongo   MongoConfig   `json:"mongo"`
	Logging LoggingConfig `json:"logging"`
	Debug   bool          `json:"debug"`
}

// ServerConfig represents MCP server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Host         string `json:"host"`
	Mode         string `json:"mode"` // "stdio" or "http"
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`
}

// APIConfig represents upstream Steve API configuration
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	Token          string `json:"-"` // Never serialize the debug token
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// MongoConfig represents the MongoDB mirror configuration.
// URL may be empty, in which case all reads go straight to the API.
type MongoConfig struct {
	URL            string `json:"-"` // Connection strings can embed credentials
	Database       string `json:"database"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			Mode:         "http",
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		API: APIConfig{
			TimeoutSeconds: 30,
		},
		Mongo: MongoConfig{
			TimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
		Debug: false,
	}
}

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't fail if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := DefaultConfig()

	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	loadServerConfig(config)
	loadAPIConfig(config)
	loadMongoConfig(config)
	loadLoggingConfig(config)

	if debug := os.Getenv("DEBUG"); debug != "" {
		config.Debug = strings.EqualFold(debug, "true") || debug == "1"
	}
}

// loadServerConfig loads server configuration from environment
func loadServerConfig(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Server.Host = host
	}
	if mode := os.Getenv("MCP_SERVER_MODE"); mode != "" {
		config.Server.Mode = mode
	}
	if readTimeout := os.Getenv("READ_TIMEOUT_SECONDS"); readTimeout != "" {
		if rt, err := strconv.Atoi(readTimeout); err == nil {
			config.Server.ReadTimeout = rt
		}
	}
	if writeTimeout := os.Getenv("WRITE_TIMEOUT_SECONDS"); writeTimeout != "" {
		if wt, err := strconv.Atoi(writeTimeout); err == nil {
			config.Server.WriteTimeout = wt
		}
	}
}

// loadAPIConfig loads upstream API configuration from environment
func loadAPIConfig(config *Config) {
	if baseURL := os.Getenv("STEVE_API_BASE_URL"); baseURL != "" {
		config.API.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if token := os.Getenv("STEVE_API_TOKEN"); token != "" {
		config.API.Token = token
	}
	if timeout := os.Getenv("STEVE_API_TIMEOUT_SECONDS"); timeout != "" {
		if ts, err := strconv.Atoi(timeout); err == nil {
			config.API.TimeoutSeconds = ts
		}
	}
}

// loadMongoConfig loads MongoDB configuration from environment
func loadMongoConfig(config *Config) {
	if url := os.Getenv("MONGODB_URL"); url != "" {
		config.Mongo.URL = url
	}
	if database := os.Getenv("DATABASE_NAME"); database != "" {
		config.Mongo.Database = database
	}
	if timeout := os.Getenv("MONGODB_TIMEOUT_SECONDS"); timeout != "" {
		if ts, err := strconv.Atoi(timeout); err == nil {
			config.Mongo.TimeoutSeconds = ts
		}
	}
}

// loadLoggingConfig loads logging configuration from environment
func loadLoggingConfig(config *Config) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if jsonOut := os.Getenv("LOG_JSON"); jsonOut != "" {
		config.Logging.JSON = jsonOut == "true" || jsonOut == "1"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Mode != "stdio" && c.Server.Mode != "http" {
		return fmt.Errorf("invalid server mode: %q (must be \"stdio\" or \"http\")", c.Server.Mode)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("STEVE_API_BASE_URL is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	// A Mongo URL without a database name is unusable
	if c.Mongo.URL != "" && c.Mongo.Database == "" {
		return fmt.Errorf("DATABASE_NAME is required when MONGODB_URL is set")
	}
	return nil
}

// MirrorConfigured reports whether the MongoDB mirror is configured for reads
func (c *Config) MirrorConfigured() bool {
	return c.Mongo.URL != ""
}
