package consistencycheck

import (
	"fmt"

	"coach-generation/internal/common/config"
	"coach-generation/internal/workers/generation"
)

const ConfigKey = "consistency-check"

type Config struct {
	generation.Config `mapstructure:",squash"`
	// MinDraftRunes is the length below which the keyword check flags a draft as too short.
	MinDraftRunes int `mapstructure:"min_draft_runes"`
}

func DefaultConfig() *Config {
	return &Config{
		Config:        generation.DefaultConfig(),
		MinDraftRunes: 50,
	}
}

func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.MinDraftRunes < 0 {
		return fmt.Errorf("min_draft_runes must not be negative")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}
	cfg := DefaultConfig()
	cfg.Config = generation.ConfigFromApp(appConfig, ConfigKey)
	return cfg
}
