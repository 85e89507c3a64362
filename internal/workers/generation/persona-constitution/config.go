package personaconstitution

import (
	"fmt"

	"coach-generation/internal/common/config"
	"coach-generation/internal/common/validation"
	"coach-generation/internal/workers/generation"
)

const ConfigKey = "persona-constitution"

type Config struct {
	generation.Config `mapstructure:",squash"`
	// Seed words used when a job brings none of its own.
	DefaultCommonWords    []string `mapstructure:"default_common_words"`
	DefaultForbiddenWords []string `mapstructure:"default_forbidden_words"`
}

func DefaultConfig() *Config {
	return &Config{
		Config:                generation.DefaultConfig(),
		DefaultCommonWords:    []string{"我", "你", "我们", "其实", "真的"},
		DefaultForbiddenWords: []string{"绝对", "一定", "必须", "保证", "没问题"},
	}
}

func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if !validation.AllNonBlank(c.DefaultCommonWords) || !validation.AllNonBlank(c.DefaultForbiddenWords) {
		return fmt.Errorf("default seed words must be non-empty")
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
