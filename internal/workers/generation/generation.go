// Package generation holds what the generation job workers share: worker
// configuration, handler options and the job output envelope.
package generation

import (
	"context"
	"fmt"
	"time"

	"coach-generation/internal/common/camunda"
	"coach-generation/internal/common/config"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"

	"github.com/google/uuid"
)

// Config holds the settings every generation worker has.
type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       5 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}

// ConfigFromApp overlays the workers.<name> section onto DefaultConfig for
// a worker that runs one generation per job.
func ConfigFromApp(appConfig *config.Config, name string) Config {
	return ConfigFromAppWithRuns(appConfig, name, 1)
}

// ConfigFromAppWithRuns is ConfigFromApp for a worker that runs up to
// pipelineRuns generations one after another within a job.
func ConfigFromAppWithRuns(appConfig *config.Config, name string, pipelineRuns int) Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	workerCfg := config.GetWorkerConfig(appConfig, name)
	cfg.Enabled = workerCfg.Enabled
	if workerCfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = workerCfg.MaxJobsActive
	}
	cfg.Timeout = config.WorkerTimeout(appConfig, name, pipelineRuns)
	return cfg
}

// HandlerOptions are the dependencies every generation handler takes.
type HandlerOptions struct {
	AppConfig *config.Config
	Camunda   *camunda.Client
	Engine    *pipeline.Engine
	Logger    logger.Logger
}

func (o HandlerOptions) Validate() error {
	if o.Engine == nil {
		return fmt.Errorf("generation engine is required")
	}
	return nil
}

// LoggerOrDefault returns the configured logger or a JSON info logger.
func (o HandlerOptions) LoggerOrDefault() logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.NewStructured("info", "json")
}

// Output is the job result envelope shared by all generation workers.
type Output[T any] struct {
	GenerationID         string            `json:"generationId"`
	Result               T                 `json:"result"`
	Degraded             bool              `json:"degraded"`
	DegradeReason        llm.DegradeReason `json:"degradeReason"`
	SchemaRepairAttempts int               `json:"schemaRepairAttempts"`
}

func NewOutput[T any](outcome llm.Outcome[T]) *Output[T] {
	return &Output[T]{
		GenerationID:         uuid.NewString(),
		Result:               outcome.Result,
		Degraded:             outcome.Degraded,
		DegradeReason:        outcome.DegradeReason,
		SchemaRepairAttempts: outcome.SchemaRepairAttempts,
	}
}

// Variables converts the output into job completion variables.
func (o *Output[T]) Variables() (map[string]interface{}, error) {
	return camunda.ToVariables(o)
}

// HealthCheck checks the broker connection when there is one.
func HealthCheck(ctx context.Context, client *camunda.Client) error {
	if client == nil {
		return nil
	}
	if err := client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("camunda health check failed: %w", err)
	}
	return nil
}

// Handler is what the worker binary manages for each generation worker.
type Handler interface {
	Register() error
	Close()
	HealthCheck(ctx context.Context) error
	GetTaskType() string
	IsEnabled() bool
}
