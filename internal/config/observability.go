package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
	// Format is "console" or "json". Empty picks console outside production.
	Format string `koanf:"format"`
	// DBLevel is the pgx trace level: trace, debug, info, warn, error or none.
	DBLevel string `koanf:"db_level"`
}

type NewRelicConfig struct {
	Enabled    bool   `koanf:"enabled"`
	LicenseKey string `koanf:"license_key"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		Logging: LoggingConfig{
			Level:   "info",
			DBLevel: "warn",
		},
	}
}

// Validate checks the observability settings after LoadConfig fills in the service fields.
func (o *ObservabilityConfig) Validate() error {
	if o.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if _, err := zerolog.ParseLevel(o.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch o.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", o.Logging.Format)
	}
	if o.NewRelic.Enabled && o.NewRelic.LicenseKey == "" {
		return fmt.Errorf("new_relic.license_key is required when new_relic is enabled")
	}
	return nil
}
