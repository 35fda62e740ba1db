package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverJSON     = "json"
	StorageDriverPostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		// AssetRoot is the directory logo and photo paths are resolved against
		AssetRoot string `yaml:"asset_root" env:"SERVER_ASSET_ROOT"`
	} `yaml:"server"`

	Storage struct {
		Driver    string `yaml:"driver" env:"STORAGE_DRIVER"`
		DataFile  string `yaml:"data_file" env:"STORAGE_DATA_FILE"`
		UsersFile string `yaml:"users_file" env:"STORAGE_USERS_FILE"`
	} `yaml:"storage"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Seed struct {
		Enabled         bool   `yaml:"enabled" env:"SEED_ENABLED"`
		DefaultPassword string `yaml:"default_password" env:"SEED_DEFAULT_PASSWORD"`
	} `yaml:"seed"`

	RateLimit struct {
		LoginPerMinute int `yaml:"login_per_minute" env:"RATE_LIMIT_LOGIN_PER_MINUTE"`
		LoginBurst     int `yaml:"login_burst" env:"RATE_LIMIT_LOGIN_BURST"`
	} `yaml:"rate_limit"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing file is fine, defaults and env vars still apply
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.AssetRoot = "."

	config.Storage.Driver = StorageDriverJSON
	config.Storage.DataFile = "data/organizations_data.json"
	config.Storage.UsersFile = "data/users.yaml"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "orghub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "8h"
	config.JWT.Issuer = "orghub.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Seed.Enabled = true
	config.Seed.DefaultPassword = "changeme123"

	config.RateLimit.LoginPerMinute = 30
	config.RateLimit.LoginBurst = 5
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch strings.ToLower(config.Storage.Driver) {
	case StorageDriverJSON:
		if config.Storage.DataFile == "" {
			return fmt.Errorf("storage data file is required for the json driver")
		}
	case StorageDriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres driver")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	if config.Storage.UsersFile == "" {
		return fmt.Errorf("users file is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if config.RateLimit.LoginPerMinute < 0 || config.RateLimit.LoginBurst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}

	return nil
}

// UsesPostgres reports whether organizations are stored in PostgreSQL
func (c *Config) UsesPostgres() bool {
	return strings.ToLower(c.Storage.Driver) == StorageDriverPostgres
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
