package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const defaultConfigFile = "config.json"

// Config represents the application's configuration structure.
type Config struct {
	Source            string `json:"source" mapstructure:"source"`
	Table             string `json:"table" mapstructure:"table"`
	Address           string `json:"address" mapstructure:"address"`
	LogLevel          string `json:"log-level" mapstructure:"log-level"`
	Clusters          int    `json:"clusters" mapstructure:"clusters"`
	Seed              int64  `json:"seed" mapstructure:"seed"`
	CLVLifetimeMonths int    `json:"clv-lifetime-months" mapstructure:"clv-lifetime-months"`
}

var requiredFields = []string{
	"source",
}

// field: default value
var optionalFields = map[string]interface{}{
	"table":               "customer_orders",
	"address":             ":8080",
	"log-level":           "INFO",
	"clusters":            3,
	"seed":                42,
	"clv-lifetime-months": 12,
}

// InitConfig reads configuration from a JSON file and environment variables.
// Environment variables take precedence over the config file. An empty path
// falls back to config.json in the working directory.
func InitConfig(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for _, field := range requiredFields {
		v.BindEnv(field)
	}

	if err := v.ReadInConfig(); err != nil {
		// ignore error if config file is not found
		// as we can get all config from env vars
		if !strings.Contains(err.Error(), path) {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	for _, field := range requiredFields {
		if !v.IsSet(field) {
			return nil, fmt.Errorf("missing required config field: %s", field)
		}
	}

	// Set defaults for optional fields if not set
	for optField, defaultValue := range optionalFields {
		if !v.IsSet(optField) {
			v.Set(optField, defaultValue)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if config.Clusters < 1 {
		return nil, fmt.Errorf("clusters must be >= 1, got %d", config.Clusters)
	}
	if config.CLVLifetimeMonths < 1 {
		return nil, fmt.Errorf("clv-lifetime-months must be >= 1, got %d", config.CLVLifetimeMonths)
	}

	return &config, nil
}
