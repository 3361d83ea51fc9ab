package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config is a helper package. Reads an optional .env file, environment variables win */

type Config struct {
	Port              string `mapstructure:"PORT"`
	RoutesFile        string `mapstructure:"ROUTES_FILE"`
	PersistPath       string `mapstructure:"PERSIST_PATH"`
	PersistBackend    string `mapstructure:"PERSIST_BACKEND"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	SQLitePath        string `mapstructure:"SQLITE_PATH"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogJSON           bool   `mapstructure:"LOG_JSON"`
	TimestampLocation string `mapstructure:"TIMESTAMP_LOCATION"`
}

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var defaults = map[string]any{
	"PORT":               "8080",
	"ROUTES_FILE":        "routes.yaml",
	"PERSIST_PATH":       "./data/webhook-messages",
	"PERSIST_BACKEND":    BackendFile,
	"REDIS_ADDR":         "localhost:6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"SQLITE_PATH":        "./data/webhook-messages.db",
	"LOG_LEVEL":          "info",
	"LOG_JSON":           true,
	"TIMESTAMP_LOCATION": "Local",
}

func GetConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

// Validate checks the values that have a closed set of options
func (c *Config) Validate() error {
	switch c.PersistBackend {
	case BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("PERSIST_BACKEND must be file, redis or sqlite (got %q)", c.PersistBackend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the zone used to print message timestamps
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimestampLocation)
	if err != nil {
		return nil, fmt.Errorf("loading TIMESTAMP_LOCATION: %w", err)
	}
	return loc, nil
}
