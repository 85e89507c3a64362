// Package replay keeps the latest validated response per user and operation
// and serves it back when the provider cannot be used.
//
// In fallback mode a stored record stands in for a transient provider
// failure. In forced mode the provider is never called. Every substituted
// outcome is marked degraded.
package replay

import (
	"context"
	"errors"

	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
	"coach-generation/internal/llm"
	"coach-generation/internal/store"
)

// Options mirrors the demo replay switches in configuration.
type Options struct {
	FallbackEnabled bool
	Force           bool
}

// Cache is safe for concurrent use; all state lives in the store.
type Cache struct {
	store   store.ReplayStore
	options Options
	logger  logger.Logger
}

func New(s store.ReplayStore, opts Options, log logger.Logger) *Cache {
	return &Cache{
		store:   s,
		options: opts,
		logger:  log.With(map[string]interface{}{"component": "replay-cache"}),
	}
}

func (c *Cache) Options() Options {
	return c.options
}

// Store appends a record for req and its validated response.
func (c *Cache) Store(ctx context.Context, userID string, req llm.Request, response map[string]interface{}) (*store.ReplayRecord, error) {
	rec, err := store.NewReplayRecord(userID, req, response)
	if err != nil {
		return nil, err
	}
	if err := c.store.InsertReplayRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// LoadLatest returns the newest stored response, or found=false.
func (c *Cache) LoadLatest(ctx context.Context, userID string, op llm.Operation) (map[string]interface{}, bool, error) {
	rec, err := c.store.FindLatestReplayRecord(ctx, userID, op)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	response, err := rec.Response()
	if err != nil {
		return nil, false, err
	}
	return response, true, nil
}

// Wrap runs primary under the configured replay mode. decode turns a stored
// response back into T and must apply the same validation as a live one.
func Wrap[T any](
	ctx context.Context,
	c *Cache,
	userID string,
	req llm.Request,
	decode func(map[string]interface{}) (T, error),
	primary func(context.Context) (llm.Outcome[T], error),
) (llm.Outcome[T], error) {
	var zero llm.Outcome[T]
	op := req.Operation()
	log := logger.ForGeneration(c.logger, op.String(), userID)

	if c.options.Force {
		return serveForced(ctx, c, log, userID, op, decode)
	}

	outcome, err := primary(ctx)
	if err == nil {
		if outcome.Storable() {
			if _, storeErr := c.Store(ctx, userID, req, outcome.Raw); storeErr != nil {
				metrics.StoreWriteFailures.WithLabelValues("replay").Inc()
				log.Warn("failed to store replay record", map[string]interface{}{"error": storeErr})
			}
		}
		return outcome, nil
	}

	if !c.options.FallbackEnabled || !fallbackEligible(err) {
		return zero, err
	}

	response, found, lookupErr := c.LoadLatest(ctx, userID, op)
	if lookupErr != nil {
		log.Warn("replay lookup failed during fallback", map[string]interface{}{"error": lookupErr})
		return zero, err
	}
	if !found {
		return zero, err
	}
	result, decodeErr := decode(response)
	if decodeErr != nil {
		log.Warn("stored replay record no longer validates", map[string]interface{}{"error": decodeErr})
		return zero, err
	}

	code := ""
	if svcErr, ok := svcerrors.As(err); ok {
		code = string(svcErr.Code)
	}
	log.Warn("serving replay record after provider failure", map[string]interface{}{"code": code})
	metrics.ReplayServed.WithLabelValues(op.String(), "fallback").Inc()
	return llm.Degrade(result, response, llm.DegradeReplayFallback, 0), nil
}

func serveForced[T any](
	ctx context.Context,
	c *Cache,
	log logger.Logger,
	userID string,
	op llm.Operation,
	decode func(map[string]interface{}) (T, error),
) (llm.Outcome[T], error) {
	var zero llm.Outcome[T]

	response, found, err := c.LoadLatest(ctx, userID, op)
	if err != nil {
		return zero, svcerrors.NewClientError(op.String(), "Failed to read replay payload.", err)
	}
	if !found {
		return zero, svcerrors.NewReplayNotFoundError(op.String())
	}
	result, err := decode(response)
	if err != nil {
		return zero, err
	}

	log.Info("serving forced replay record", nil)
	metrics.ReplayServed.WithLabelValues(op.String(), "forced").Inc()
	return llm.Degrade(result, response, llm.DegradeReplayForced, 0), nil
}

// fallbackEligible accepts transient provider failures only. Schema
// failures and caller errors are never masked.
func fallbackEligible(err error) bool {
	svcErr, ok := svcerrors.As(err)
	return ok && svcerrors.IsProviderCode(svcErr.Code) && svcErr.Retryable
}
