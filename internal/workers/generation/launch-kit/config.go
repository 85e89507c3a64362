package launchkit

import (
	"coach-generation/internal/common/config"
	"coach-generation/internal/workers/generation"
)

const ConfigKey = "launch-kit"

type Config struct {
	generation.Config `mapstructure:",squash"`
}

func DefaultConfig() *Config {
	return &Config{Config: generation.DefaultConfig()}
}

func (c *Config) Validate() error {
	return c.Config.Validate()
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}
	return &Config{Config: generation.ConfigFromApp(appConfig, ConfigKey)}
}
