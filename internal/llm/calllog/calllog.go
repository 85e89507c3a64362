// Package calllog records one audit row per provider invocation.
package calllog

import (
	"context"
	"time"

	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
	"coach-generation/internal/common/observability"
	"coach-generation/internal/llm"
	"coach-generation/internal/store"

	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

// providerMeta is implemented by results that know their provider request.
type providerMeta interface {
	ProviderMeta() (requestID string, status int)
}

// Observer writes call log entries and records call metrics.
type Observer struct {
	store  store.CallLogStore
	obs    *observability.Observability
	logger logger.Logger
}

func NewObserver(s store.CallLogStore, obs *observability.Observability, log logger.Logger) *Observer {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Observer{
		store:  s,
		obs:    obs,
		logger: log.With(map[string]interface{}{"component": "call-log"}),
	}
}

// Observe runs fn once and writes exactly one entry for it. fn's result and
// error are returned unchanged, whatever happens to the write.
func Observe[T any](ctx context.Context, o *Observer, userID string, op llm.Operation, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := fn(ctx)
	latency := time.Since(start)

	entry := &store.CallLogEntry{
		ID:        uuid.NewString(),
		UserID:    optional(userID),
		Operation: op,
		Code:      store.CodeOK,
		LatencyMs: latency.Milliseconds(),
	}
	if err != nil {
		svcErr := svcerrors.Normalize(op.String(), err)
		entry.Code = string(svcErr.Code)
		entry.RetryCount = max(svcErr.Attempts-1, 0)
		entry.ProviderRequestID = svcErr.ProviderRequestID
		entry.ProviderStatus = svcErr.ProviderStatus
		entry.ErrorMessage = optional(svcErr.Message)
	} else if meta, ok := any(result).(providerMeta); ok {
		requestID, status := meta.ProviderMeta()
		entry.ProviderRequestID = optional(requestID)
		if status != 0 {
			entry.ProviderStatus = &status
		}
	}

	o.obs.RecordCall(ctx, op.String(), entry.Code, latency)
	o.write(ctx, entry)
	return result, err
}

// write commits the entry even when ctx has been cancelled.
func (o *Observer) write(ctx context.Context, entry *store.CallLogEntry) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := o.store.InsertCallLogEntry(writeCtx, entry); err != nil {
		metrics.StoreWriteFailures.WithLabelValues("call_log").Inc()
		o.logger.Error("failed to write call log entry", map[string]interface{}{
			"operation": entry.Operation.String(),
			"code":      entry.Code,
			"entryId":   entry.ID,
			"error":     err,
		})
	}
}

// Generator wraps next so that every Generate call is observed for userID.
func (o *Observer) Generator(next llm.Generator, userID string) llm.Generator {
	return llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (*llm.RawResponse, error) {
		return Observe(ctx, o, userID, req.Operation(), func(ctx context.Context) (*llm.RawResponse, error) {
			return next.Generate(ctx, req)
		})
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
