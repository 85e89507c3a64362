package llm

import (
	"encoding/json"
	"fmt"
)

// DegradeReason explains why an outcome did not come from a freshly
// validated provider response. The zero value means not degraded.
type DegradeReason string

const (
	DegradeNone                 DegradeReason = ""
	DegradeSchemaRetryExhausted DegradeReason = "schema_retry_exhausted"
	DegradeReplayFallback       DegradeReason = "replay_fallback"
	DegradeReplayForced         DegradeReason = "replay_forced"
)

func (r DegradeReason) Valid() bool {
	switch r {
	case DegradeNone, DegradeSchemaRetryExhausted, DegradeReplayFallback, DegradeReplayForced:
		return true
	}
	return false
}

// MarshalJSON encodes DegradeNone as null.
func (r DegradeReason) MarshalJSON() ([]byte, error) {
	if r == DegradeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *DegradeReason) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = DegradeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	reason := DegradeReason(s)
	if !reason.Valid() {
		return fmt.Errorf("unknown degrade reason %q", s)
	}
	*r = reason
	return nil
}

// Outcome is the result of a generation. Degraded is true exactly when
// DegradeReason is set; build values with Fresh or Degrade to keep that so.
type Outcome[T any] struct {
	Result               T             `json:"result"`
	Degraded             bool          `json:"degraded"`
	DegradeReason        DegradeReason `json:"degrade_reason"`
	SchemaRepairAttempts int           `json:"schema_repair_attempts"`

	// Raw is the validated response object, kept for replay storage.
	Raw map[string]interface{} `json:"-"`
}

// Fresh builds a non-degraded outcome from a validated response.
func Fresh[T any](result T, raw map[string]interface{}, repairAttempts int) Outcome[T] {
	return Outcome[T]{Result: result, Raw: raw, SchemaRepairAttempts: repairAttempts}
}

// Degrade builds a substituted outcome. It panics on DegradeNone, which
// would break the flag invariant.
func Degrade[T any](result T, raw map[string]interface{}, reason DegradeReason, repairAttempts int) Outcome[T] {
	if reason == DegradeNone || !reason.Valid() {
		panic(fmt.Sprintf("llm: invalid degrade reason %q", reason))
	}
	return Outcome[T]{
		Result:               result,
		Raw:                  raw,
		Degraded:             true,
		DegradeReason:        reason,
		SchemaRepairAttempts: repairAttempts,
	}
}

// Storable reports whether the outcome may be recorded for replay.
func (o Outcome[T]) Storable() bool {
	return !o.Degraded && o.Raw != nil
}
