package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	svcerrors "coach-generation/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// maxReportedSchemaErrors bounds how many schema violations feed a diagnostic.
const maxReportedSchemaErrors = 3

// Rule is a cross-field business check run after the shape check and decode.
// The returned error message becomes the diagnostic, so it must not quote values.
type Rule[T any] func(T) error

// Schema validates a provider response for one operation: JSON Schema shape
// check, typed decode into T, then business rules in order.
type Schema[T any] struct {
	operation string
	compiled  *gojsonschema.Schema
	rules     []Rule[T]
}

func Compile[T any](operation, schemaJSON string, rules ...Rule[T]) (*Schema[T], error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile %s output schema: %w", operation, err)
	}
	return &Schema[T]{operation: operation, compiled: compiled, rules: rules}, nil
}

// MustCompile is Compile for package-level schemas defined in source.
func MustCompile[T any](operation, schemaJSON string, rules ...Rule[T]) *Schema[T] {
	s, err := Compile[T](operation, schemaJSON, rules...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithRules returns a copy of the schema with extra per-request rules appended.
func (s *Schema[T]) WithRules(rules ...Rule[T]) *Schema[T] {
	merged := make([]Rule[T], 0, len(s.rules)+len(rules))
	merged = append(merged, s.rules...)
	merged = append(merged, rules...)
	return &Schema[T]{operation: s.operation, compiled: s.compiled, rules: merged}
}

// Validate converts an untyped response into T or fails with
// SCHEMA_VALIDATION_FAILED carrying a summarized diagnostic.
func (s *Schema[T]) Validate(raw map[string]interface{}) (T, error) {
	var zero T

	if raw == nil {
		return zero, s.fail("response is not a JSON object")
	}

	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return zero, s.fail("response could not be checked: " + err.Error())
	}
	if !result.Valid() {
		return zero, s.fail(describeSchemaErrors(result.Errors()))
	}

	typed, err := Decode[T](raw)
	if err != nil {
		return zero, s.fail(err.Error())
	}

	for _, rule := range s.rules {
		if err := rule(typed); err != nil {
			return zero, s.fail(err.Error())
		}
	}
	return typed, nil
}

func (s *Schema[T]) fail(diagnostic string) error {
	return svcerrors.NewSchemaValidationError(s.operation, Summarize(diagnostic))
}

// Decode converts a decoded JSON object into T through a JSON round trip.
func Decode[T any](raw map[string]interface{}) (T, error) {
	var typed T
	data, err := json.Marshal(raw)
	if err != nil {
		return typed, fmt.Errorf("response could not be re-encoded: %w", err)
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return typed, fmt.Errorf("response does not decode: %w", err)
	}
	return typed, nil
}

// describeSchemaErrors lists field paths and library descriptions only.
func describeSchemaErrors(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, maxReportedSchemaErrors)
	for i, e := range errs {
		if i == maxReportedSchemaErrors {
			parts = append(parts, fmt.Sprintf("and %d more", len(errs)-i))
			break
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return strings.Join(parts, "; ")
}
