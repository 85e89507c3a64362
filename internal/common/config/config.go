// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	LLM      LLMConfig               `mapstructure:"llm"`
	Storage  StorageConfig           `mapstructure:"storage"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig configures the optional call-log search mirror.
// An empty address list disables it.
type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	CallLogIndex string   `mapstructure:"call_log_index"`
}

func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0 && e.Addresses[0] != ""
}

// RedisConfig configures the optional replay latest-pointer cache.
// An empty address disables it.
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // seconds, 0 keeps pointers forever
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// LLMConfig holds provider and generation-pipeline settings.
type LLMConfig struct {
	APIKey              string       `mapstructure:"api_key"`
	BaseURL             string       `mapstructure:"base_url"`
	Model               string       `mapstructure:"model"`
	TimeoutSeconds      float64      `mapstructure:"timeout_seconds"`
	MaxRetries          int          `mapstructure:"max_retries"`
	SchemaRepairRetries int          `mapstructure:"schema_repair_retries"`
	RetryBackoffMs      int          `mapstructure:"retry_backoff_ms"`
	Reasoning           *bool        `mapstructure:"reasoning"`
	Replay              ReplayConfig `mapstructure:"replay"`
}

// Timeout returns the per-request provider timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds * float64(time.Second))
}

type ReplayConfig struct {
	FallbackEnabled bool `mapstructure:"fallback_enabled"`
	Force           bool `mapstructure:"force"`
}

// StorageConfig selects the backing store for replay records and call logs.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres | memory
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
