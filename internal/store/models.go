package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coach-generation/internal/llm"
)

// ErrNotFound is returned when no replay record exists for a lookup.
var ErrNotFound = errors.New("store: record not found")

// ReplayRecord is one validated generation kept for demo replay.
// ID and CreatedAt are assigned by the store on insert.
type ReplayRecord struct {
	ID                 int64           `json:"id"`
	UserID             string          `json:"user_id"`
	Operation          llm.Operation   `json:"operation"`
	RequestFingerprint string          `json:"request_fingerprint"`
	StoredRequest      json.RawMessage `json:"stored_request"`
	StoredResponse     json.RawMessage `json:"stored_response"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewReplayRecord captures req and its validated response object.
func NewReplayRecord(userID string, req llm.Request, response map[string]interface{}) (*ReplayRecord, error) {
	stored, err := llm.CanonicalJSON(response)
	if err != nil {
		return nil, fmt.Errorf("encode replay response: %w", err)
	}
	return &ReplayRecord{
		UserID:             userID,
		Operation:          req.Operation(),
		RequestFingerprint: req.Fingerprint(),
		StoredRequest:      req.Payload(),
		StoredResponse:     stored,
	}, nil
}

// Response decodes the stored response object.
func (r *ReplayRecord) Response() (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(r.StoredResponse, &obj); err != nil {
		return nil, fmt.Errorf("decode replay response %d: %w", r.ID, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("replay response %d is not an object", r.ID)
	}
	return obj, nil
}

// newerThan orders records by creation time, then id.
func (r *ReplayRecord) newerThan(other *ReplayRecord) bool {
	if other == nil {
		return true
	}
	if !r.CreatedAt.Equal(other.CreatedAt) {
		return r.CreatedAt.After(other.CreatedAt)
	}
	return r.ID > other.ID
}

// CallLogEntry is one row of the provider call audit trail.
type CallLogEntry struct {
	ID                string        `json:"id"`
	UserID            *string       `json:"user_id"`
	Operation         llm.Operation `json:"operation"`
	Code              string        `json:"code"`
	RetryCount        int           `json:"retry_count"`
	LatencyMs         int64         `json:"latency_ms"`
	ProviderRequestID *string       `json:"provider_request_id"`
	ProviderStatus    *int          `json:"provider_status"`
	ErrorMessage      *string       `json:"error_message"`
	CreatedAt         time.Time     `json:"created_at"`
}

// CodeOK marks a successful call in the call log.
const CodeOK = "OK"

func (e *CallLogEntry) Succeeded() bool {
	return e.Code == CodeOK
}
