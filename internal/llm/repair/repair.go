// Package repair turns free-form provider output into a validated result,
// re-asking the provider to fix schema violations a bounded number of times.
package repair

import (
	"context"
	"fmt"

	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
	"coach-generation/internal/llm"
)

// DefaultMaxRepairs is the repair ceiling when none is configured.
const DefaultMaxRepairs = 2

// Validator converts an untyped response into T or fails with
// SCHEMA_VALIDATION_FAILED. *validation.Schema[T] implements it.
type Validator[T any] interface {
	Validate(raw map[string]interface{}) (T, error)
}

// Spec describes one operation's contract for the loop.
type Spec[T any] struct {
	Operation    llm.Operation
	SystemPrompt string
	// RepairPrompt is the system prompt for repair calls. Empty uses DefaultRepairPrompt.
	RepairPrompt string
	Validator    Validator[T]
	// Placeholder, when set, is returned degraded once the repair budget is spent.
	// Operations without one fail with SCHEMA_VALIDATION_FAILED instead.
	Placeholder func() T
}

// Loop runs generations against one Generator. It is stateless between runs.
type Loop struct {
	generator  llm.Generator
	maxRepairs int
	logger     logger.Logger
}

func New(generator llm.Generator, maxRepairs int, log logger.Logger) *Loop {
	if maxRepairs < 0 {
		maxRepairs = 0
	}
	return &Loop{
		generator:  generator,
		maxRepairs: maxRepairs,
		logger:     log.With(map[string]interface{}{"component": "schema-repair"}),
	}
}

// MaxRepairs returns the repair ceiling.
func (l *Loop) MaxRepairs() int {
	return l.maxRepairs
}

// repairPayload is what a repair call sends as the user message.
type repairPayload struct {
	OriginalUserPayload     map[string]interface{} `json:"original_user_payload"`
	PreviousInvalidResponse map[string]interface{} `json:"previous_invalid_response"`
	ValidationError         string                 `json:"validation_error"`
}

// NewRequest builds the primary request for this operation.
func (s Spec[T]) NewRequest(payload interface{}) (llm.Request, error) {
	req, err := llm.NewRequest(s.Operation, s.SystemPrompt, payload)
	if err != nil {
		return llm.Request{}, svcerrors.NewClientError(s.Operation.String(), "Failed to build generation request.", err)
	}
	return req, nil
}

// Run performs at most MaxRepairs+1 provider calls, strictly in sequence.
// Provider errors propagate unchanged; only schema failures are repaired.
func Run[T any](ctx context.Context, l *Loop, spec Spec[T], req llm.Request) (llm.Outcome[T], error) {
	var zero llm.Outcome[T]
	operation := spec.Operation.String()

	if req.Operation() != spec.Operation {
		return zero, svcerrors.NewClientError(operation, "Generation request does not match its operation.", nil)
	}

	resp, err := l.generator.Generate(ctx, req)
	if err != nil {
		return zero, err
	}
	result, err := spec.Validator.Validate(resp.Object)
	if err == nil {
		return llm.Fresh(result, resp.Object, 0), nil
	}

	lastErr, ok := schemaError(err)
	if !ok {
		return zero, err
	}
	lastRaw := resp.Object

	for attempt := 1; attempt <= l.maxRepairs; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, svcerrors.NewClientError(operation, "Generation was cancelled before schema repair.", ctxErr)
		}

		l.logger.Warn("schema validation failed, requesting repair", map[string]interface{}{
			"operation":  operation,
			"attempt":    attempt,
			"maxRepairs": l.maxRepairs,
			"diagnostic": lastErr.Message,
		})
		metrics.SchemaRepairAttempts.WithLabelValues(operation).Inc()

		repairReq, err := llm.NewRequest(spec.Operation, repairPrompt(spec), repairPayload{
			OriginalUserPayload:     req.PayloadObject(),
			PreviousInvalidResponse: lastRaw,
			ValidationError:         lastErr.Message,
		})
		if err != nil {
			return zero, svcerrors.NewClientError(operation, "Failed to build repair request.", err)
		}

		resp, err = l.generator.Generate(ctx, repairReq)
		if err != nil {
			return zero, err
		}
		result, err = spec.Validator.Validate(resp.Object)
		if err == nil {
			l.logger.Info("schema repair succeeded", map[string]interface{}{
				"operation": operation,
				"attempt":   attempt,
			})
			return llm.Fresh(result, resp.Object, attempt), nil
		}
		if lastErr, ok = schemaError(err); !ok {
			return zero, err
		}
		lastRaw = resp.Object
	}

	if spec.Placeholder != nil {
		l.logger.Warn("schema repair exhausted, returning placeholder", map[string]interface{}{
			"operation":  operation,
			"attempts":   l.maxRepairs,
			"diagnostic": lastErr.Message,
		})
		return llm.Degrade(spec.Placeholder(), nil, llm.DegradeSchemaRetryExhausted, l.maxRepairs), nil
	}

	l.logger.Error("schema repair exhausted", map[string]interface{}{
		"operation":  operation,
		"attempts":   l.maxRepairs,
		"diagnostic": lastErr.Message,
	})
	final := svcerrors.NewSchemaValidationError(operation,
		fmt.Sprintf("Schema validation failed after %d schema repair retries: %s", l.maxRepairs, lastErr.Message))
	final.Attempts = l.maxRepairs + 1
	return zero, final
}

func schemaError(err error) (*svcerrors.ServiceError, bool) {
	svcErr, ok := svcerrors.As(err)
	if !ok || svcErr.Code != svcerrors.ErrCodeSchemaValidationFailed {
		return nil, false
	}
	return svcErr, true
}

func repairPrompt[T any](spec Spec[T]) string {
	if spec.RepairPrompt != "" {
		return spec.RepairPrompt
	}
	return DefaultRepairPrompt(spec.Operation)
}

// DefaultRepairPrompt is the generic repair instruction for an operation.
func DefaultRepairPrompt(operation llm.Operation) string {
	return fmt.Sprintf(`You previously answered the %s task with JSON that failed validation.
The user message contains original_user_payload (the original task input),
previous_invalid_response (your last answer) and validation_error (what is wrong).
Return only the corrected JSON object. Keep every valid part of your previous answer,
fix what validation_error describes, and keep all required fields and counts.
Do not add commentary or code fences.`, operation)
}
