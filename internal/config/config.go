// Package config loads runtime settings from the process environment.
//
// Values come from environment variables (a `.env` file is loaded into the
// environment by main before Load runs), fall back to the defaults below and
// are checked with validator before the application starts.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration object for the application.
type Config struct {
	AppPort         string         `mapstructure:"APP_PORT" validate:"required"`
	ShutdownTimeout time.Duration  `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	LogLevel        string         `mapstructure:"LOG_LEVEL"`
	LogPretty       bool           `mapstructure:"LOG_PRETTY"`
	MetricsEnabled  bool           `mapstructure:"METRICS_ENABLED"`
	Database        DatabaseConfig `mapstructure:",squash"`
	RabbitMQ        RabbitMQConfig `mapstructure:",squash"`
}

// DatabaseConfig holds connection and pool settings for the product store.
// DSN, when set, is used verbatim instead of the individual fields.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"DB_DRIVER" validate:"required,oneof=mysql postgres sqlite"`
	DSN             string        `mapstructure:"DB_DSN"`
	Host            string        `mapstructure:"DB_HOST"`
	Port            int           `mapstructure:"DB_PORT"`
	User            string        `mapstructure:"DB_USER"`
	Password        string        `mapstructure:"DB_PASSWORD"`
	Name            string        `mapstructure:"DB_NAME" validate:"required_without=DSN"`
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME" validate:"gte=0"`
	SlowThreshold   time.Duration `mapstructure:"DB_SLOW_THRESHOLD" validate:"gte=0"`
}

// RabbitMQConfig configures product change events. An empty URL disables them.
type RabbitMQConfig struct {
	URL      string `mapstructure:"RABBITMQ_URL"`
	Exchange string `mapstructure:"RABBITMQ_EXCHANGE" validate:"required_with=URL"`
}

var defaults = map[string]any{
	"APP_PORT":             ":4000",
	"SHUTDOWN_TIMEOUT":     "10s",
	"LOG_LEVEL":            "info",
	"LOG_PRETTY":           false,
	"METRICS_ENABLED":      true,
	"DB_DRIVER":            DriverMySQL,
	"DB_DSN":               "",
	"DB_HOST":              "",
	"DB_PORT":              0,
	"DB_USER":              "",
	"DB_PASSWORD":          "",
	"DB_NAME":              "",
	"DB_MAX_OPEN_CONNS":    10,
	"DB_MAX_IDLE_CONNS":    10,
	"DB_CONN_MAX_LIFETIME": "30m",
	"DB_SLOW_THRESHOLD":    "200ms",
	"RABBITMQ_URL":         "",
	"RABBITMQ_EXCHANGE":    "products",
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads the configuration through v, which may carry overrides.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv() // Load environment variables

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultPort(cfg.Database.Driver)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Database.Driver != DriverSQLite && cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("invalid config: DB_HOST is required for driver %s", cfg.Database.Driver)
	}
	return &cfg, nil
}

func defaultPort(driver string) int {
	switch driver {
	case DriverPostgres:
		return 5432
	case DriverMySQL:
		return 3306
	}
	return 0
}
