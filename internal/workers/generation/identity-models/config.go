package identitymodels

import (
	"fmt"

	"coach-generation/internal/common/config"
	"coach-generation/internal/workers/generation"
)

const (
	ConfigKey = "identity-models"

	MinCount = 1
	MaxCount = 5
)

type Config struct {
	generation.Config `mapstructure:",squash"`
	// DefaultCount applies when a job does not ask for a number of cards.
	DefaultCount int `mapstructure:"default_count"`
}

func DefaultConfig() *Config {
	return &Config{
		Config:       generation.DefaultConfig(),
		DefaultCount: 3,
	}
}

func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.DefaultCount < MinCount || c.DefaultCount > MaxCount {
		return fmt.Errorf("default_count must be between %d and %d", MinCount, MaxCount)
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}
	cfg := DefaultConfig()
	cfg.Config = generation.ConfigFromAppWithRuns(appConfig, ConfigKey, MaxCount)
	return cfg
}
