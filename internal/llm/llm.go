// Package llm defines the request, response and outcome types shared by the
// generation pipeline: provider client, repair loop, replay cache and call log.
package llm

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Operation identifies which business schema applies to a generation.
type Operation string

const (
	OpGenerateIdentityModels  Operation = "generate_identity_models"
	OpGenerateConstitution    Operation = "generate_constitution"
	OpGenerateLaunchKit       Operation = "generate_launch_kit"
	OpCheckConsistency        Operation = "check_consistency"
	OpGenerateContentMatrix   Operation = "generate_content_matrix"
	OpGenerateMonetizationMap Operation = "generate_monetization_map"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{
	OpGenerateIdentityModels,
	OpGenerateConstitution,
	OpGenerateLaunchKit,
	OpCheckConsistency,
	OpGenerateContentMatrix,
	OpGenerateMonetizationMap,
}

func (o Operation) Valid() bool {
	for _, op := range Operations {
		if op == o {
			return true
		}
	}
	return false
}

func (o Operation) String() string { return string(o) }

// ParseOperation validates a stored or user-supplied operation name.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// Request is an immutable generation request. The payload is serialized
// once, with sorted keys, so retries and fingerprints see identical bytes.
type Request struct {
	operation    Operation
	systemPrompt string
	payload      []byte
}

// NewRequest serializes payload, which must encode to a JSON object.
func NewRequest(operation Operation, systemPrompt string, payload interface{}) (Request, error) {
	if !operation.Valid() {
		return Request{}, fmt.Errorf("unknown operation %q", operation)
	}
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s payload: %w", operation, err)
	}
	if len(canonical) == 0 || canonical[0] != '{' {
		return Request{}, fmt.Errorf("%s payload must be a JSON object", operation)
	}
	return Request{operation: operation, systemPrompt: systemPrompt, payload: canonical}, nil
}

func (r Request) Operation() Operation { return r.operation }

func (r Request) SystemPrompt() string { return r.systemPrompt }

// Payload returns a copy of the canonical payload bytes.
func (r Request) Payload() []byte {
	return append([]byte(nil), r.payload...)
}

// PayloadObject decodes a fresh copy of the payload.
func (r Request) PayloadObject() map[string]interface{} {
	var obj map[string]interface{}
	_ = json.Unmarshal(r.payload, &obj)
	return obj
}

// Fingerprint is the hex sha256 of the canonical payload.
func (r Request) Fingerprint() string {
	sum := sha256.Sum256(r.payload)
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON encodes v with sorted object keys at every depth and without
// HTML escaping.
func CanonicalJSON(v interface{}) ([]byte, error) {
	first, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(first, &generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RawResponse is the provider's JSON object plus call metadata.
type RawResponse struct {
	Object    map[string]interface{}
	RequestID string
	Status    int
	Latency   time.Duration
	Attempts  int
}

// Generator issues one logical generation call. Implementations retry
// transient failures internally and return *errors.ServiceError on failure.
type Generator interface {
	Generate(ctx context.Context, req Request) (*RawResponse, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (*RawResponse, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*RawResponse, error) {
	return f(ctx, req)
}

// ProviderMeta returns the provider request id and HTTP status of a
// successful call. It is safe on a nil response.
func (r *RawResponse) ProviderMeta() (requestID string, status int) {
	if r == nil {
		return "", 0
	}
	return r.RequestID, r.Status
}
