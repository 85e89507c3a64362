// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// reportTimeout bounds the complete/fail/throw RPC that follows a job.
const reportTimeout = 10 * time.Second

// JobFunc executes one job and returns the variables to complete it with.
type JobFunc func(ctx context.Context, job entities.Job) (map[string]interface{}, error)

type WorkerConfig struct {
	TaskType      string
	Operation     string
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker runs a JobFunc for every activated job of one task type and
// reports the result back to the broker.
type Worker struct {
	config    WorkerConfig
	run       JobFunc
	errors    *errors.ErrorHandler
	logger    logger.Logger
	jobWorker worker.JobWorker
}

func NewWorker(cfg WorkerConfig, run JobFunc, log logger.Logger) *Worker {
	log = log.With(map[string]interface{}{"worker": cfg.TaskType})
	return &Worker{
		config: cfg,
		run:    run,
		errors: errors.NewErrorHandler(log),
		logger: log,
	}
}

func (w *Worker) TaskType() string {
	return w.config.TaskType
}

func (w *Worker) Enabled() bool {
	return w.config.Enabled
}

// Handle matches the Zeebe job handler signature.
func (w *Worker) Handle(client worker.JobClient, job entities.Job) {
	taskType := w.config.TaskType
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
	defer cancel()

	w.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"retries":            job.GetRetries(),
	})

	variables, err := w.run(ctx, job)

	// The job deadline may already have passed; the broker still has to
	// hear the outcome or it re-activates the job with untouched retries.
	reportCtx, cancelReport := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancelReport()

	if err != nil {
		svcErr := errors.Normalize(w.config.Operation, err)
		metrics.WorkerJobsFailed.WithLabelValues(taskType, string(svcErr.Code)).Inc()
		w.errors.HandleJobError(reportCtx, client, job, w.config.Operation, svcErr)
		return
	}

	w.completeJob(reportCtx, client, job, variables)
	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(startTime).Seconds())
}

func (w *Worker) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, variables map[string]interface{}) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		w.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		w.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	w.logger.Info("Job completed", map[string]interface{}{
		"jobKey":   job.GetKey(),
		"degraded": variables["degraded"],
	})
}

// Open registers the worker with the broker. Disabled workers are skipped.
func (w *Worker) Open(client *Client) error {
	if !w.config.Enabled {
		w.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	if client == nil {
		return fmt.Errorf("camunda client is required to open %s", w.config.TaskType)
	}

	w.jobWorker = client.GetClient().NewJobWorker().
		JobType(w.config.TaskType).
		Handler(w.Handle).
		MaxJobsActive(w.config.MaxJobsActive).
		Timeout(w.config.Timeout).
		Name(fmt.Sprintf("%s-worker", w.config.TaskType)).
		Open()

	w.logger.Info("Worker registered with Camunda", map[string]interface{}{
		"maxJobsActive": w.config.MaxJobsActive,
		"timeout":       w.config.Timeout.String(),
	})
	return nil
}

// Close stops polling and waits for in-flight jobs.
func (w *Worker) Close() {
	if w.jobWorker != nil {
		w.logger.Info("Shutting down worker gracefully", nil)
		w.jobWorker.Close()
		w.jobWorker.AwaitClose()
		w.jobWorker = nil
	}
}
