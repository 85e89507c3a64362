package identitymodels

import (
	"context"
	"fmt"

	"coach-generation/internal/common/camunda"
	"coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/workers/generation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generation.identity-models.generate"

type Handler struct {
	config  *Config
	logger  logger.Logger
	camunda *camunda.Client
	engine  *pipeline.Engine
	worker  *camunda.Worker
}

type HandlerOptions struct {
	generation.HandlerOptions
	CustomConfig *Config
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", ConfigKey, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options for %s: %w", ConfigKey, err)
	}

	log := opts.LoggerOrDefault()
	h := &Handler{
		config:  workerConfig,
		logger:  log,
		camunda: opts.Camunda,
		engine:  opts.Engine,
	}
	h.worker = camunda.NewWorker(camunda.WorkerConfig{
		TaskType:      TaskType,
		Operation:     string(llm.OpGenerateIdentityModels),
		Enabled:       workerConfig.Enabled,
		MaxJobsActive: workerConfig.MaxJobsActive,
		Timeout:       workerConfig.Timeout,
	}, h.run, log)
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.worker.Handle(client, job)
}

func (h *Handler) run(ctx context.Context, job entities.Job) (map[string]interface{}, error) {
	var input Input
	if err := camunda.DecodeVariables(job, GetInputSchema(), string(llm.OpGenerateIdentityModels), &input); err != nil {
		return nil, err
	}
	output, err := h.Execute(ctx, &input)
	if err != nil {
		return nil, err
	}
	return output.Variables()
}

// Execute generates the requested number of cards, DefaultCount when unset.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	count := input.Count
	if count == 0 {
		count = h.config.DefaultCount
	}
	if count < MinCount || count > MaxCount {
		return nil, errors.NewClientError(string(llm.OpGenerateIdentityModels),
			fmt.Sprintf("count must be between %d and %d.", MinCount, MaxCount), nil)
	}

	outcome, err := Generate(ctx, h.engine, input, count)
	if err != nil {
		return nil, err
	}
	h.logger.Info("Identity models generated", map[string]interface{}{
		"userId":   input.UserID,
		"count":    len(outcome.Result.Models),
		"degraded": outcome.Degraded,
	})
	return generation.NewOutput(outcome), nil
}

func (h *Handler) Register() error {
	return h.worker.Open(h.camunda)
}

func (h *Handler) Close() {
	h.worker.Close()
}

func (h *Handler) HealthCheck(ctx context.Context) error {
	return generation.HealthCheck(ctx, h.camunda)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
