// Package pipeline composes the generation stages used by every facade:
// replay around schema repair around the observed provider.
package pipeline

import (
	"context"

	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
	"coach-generation/internal/llm"
	"coach-generation/internal/llm/calllog"
	"coach-generation/internal/llm/repair"
	"coach-generation/internal/llm/replay"
)

// Engine is built once at startup and shared by all workers.
type Engine struct {
	provider   llm.Generator
	observer   *calllog.Observer
	replay     *replay.Cache
	maxRepairs int
	logger     logger.Logger
}

func NewEngine(provider llm.Generator, observer *calllog.Observer, cache *replay.Cache, maxRepairs int, log logger.Logger) *Engine {
	return &Engine{
		provider:   provider,
		observer:   observer,
		replay:     cache,
		maxRepairs: maxRepairs,
		logger:     log,
	}
}

func (e *Engine) MaxRepairs() int {
	return e.maxRepairs
}

// Run generates one artifact for userID from payload.
func Run[T any](ctx context.Context, e *Engine, userID string, spec repair.Spec[T], payload interface{}) (llm.Outcome[T], error) {
	var zero llm.Outcome[T]
	op := spec.Operation.String()

	req, err := spec.NewRequest(payload)
	if err != nil {
		return zero, err
	}

	loop := repair.New(e.observer.Generator(e.provider, userID), e.maxRepairs, e.logger)
	outcome, err := replay.Wrap(ctx, e.replay, userID, req, spec.Validator.Validate,
		func(ctx context.Context) (llm.Outcome[T], error) {
			return repair.Run(ctx, loop, spec, req)
		})
	if err != nil {
		svcErr := svcerrors.Normalize(op, err)
		logger.ForGeneration(e.logger, op, userID).Error("generation failed", map[string]interface{}{
			"code":     string(svcErr.Code),
			"attempts": svcErr.Attempts,
			"status":   svcErr.Status(),
		})
		return zero, err
	}

	metrics.GenerationOutcomes.WithLabelValues(op, metrics.DegradeLabel(string(outcome.DegradeReason))).Inc()
	return outcome, nil
}
