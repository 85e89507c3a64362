// Package errors provides the service error taxonomy shared by the generation
// pipeline and the job workers that expose it.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode is the closed set of failure kinds a generation can surface.
type ErrorCode string

const (
	ErrCodeInvalidResponse        ErrorCode = "INVALID_RESPONSE"
	ErrCodeUpstreamTimeout        ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamUnavailable    ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamHTTPError      ErrorCode = "UPSTREAM_HTTP_ERROR"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeReplayNotFound         ErrorCode = "REPLAY_NOT_FOUND"
	ErrCodeClientError            ErrorCode = "CLIENT_ERROR"
)

// AllCodes lists every ErrorCode in declaration order.
var AllCodes = []ErrorCode{
	ErrCodeInvalidResponse,
	ErrCodeUpstreamTimeout,
	ErrCodeUpstreamUnavailable,
	ErrCodeUpstreamHTTPError,
	ErrCodeSchemaValidationFailed,
	ErrCodeReplayNotFound,
	ErrCodeClientError,
}

// ServiceError is the structured error returned by every generation component.
// Details and the wrapped cause stay internal; callers only ever see ToDetail.
type ServiceError struct {
	Code              ErrorCode `json:"code"`
	Message           string    `json:"message"`
	Operation         string    `json:"operation"`
	ProviderStatus    *int      `json:"provider_status"`
	ProviderRequestID *string   `json:"provider_request_id"`
	Retryable         bool      `json:"retryable"`
	Attempts          int       `json:"attempts"`
	Details           string    `json:"-"`
	Timestamp         time.Time `json:"-"`

	cause error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ServiceError[%s] %s: %s", e.Code, e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// ToDetail returns the sanitized, caller-facing representation of the error.
func (e *ServiceError) ToDetail() map[string]interface{} {
	detail := map[string]interface{}{
		"code":                string(e.Code),
		"message":             e.Message,
		"operation":           e.Operation,
		"provider_status":     nil,
		"provider_request_id": nil,
		"retryable":           e.Retryable,
		"attempts":            e.Attempts,
	}
	if e.ProviderStatus != nil {
		detail["provider_status"] = *e.ProviderStatus
	}
	if e.ProviderRequestID != nil {
		detail["provider_request_id"] = *e.ProviderRequestID
	}
	return detail
}

// HTTPStatus is the gateway status a route layer answers with.
func (e *ServiceError) HTTPStatus() int {
	return http.StatusBadGateway
}

// RequestID returns the provider request id or an empty string.
func (e *ServiceError) RequestID() string {
	if e.ProviderRequestID == nil {
		return ""
	}
	return *e.ProviderRequestID
}

// Status returns the provider HTTP status or zero.
func (e *ServiceError) Status() int {
	if e.ProviderStatus == nil {
		return 0
	}
	return *e.ProviderStatus
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidResponseError reports an empty, non-JSON or non-object provider body.
func NewInvalidResponseError(operation, message, requestID string) *ServiceError {
	return &ServiceError{
		Code:              ErrCodeInvalidResponse,
		Message:           message,
		Operation:         operation,
		ProviderRequestID: optionalString(requestID),
		Retryable:         true,
		Attempts:          1,
		Timestamp:         time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError reports a provider call that exceeded its deadline.
func NewUpstreamTimeoutError(operation, requestID string, cause error) *ServiceError {
	return &ServiceError{
		Code:              ErrCodeUpstreamTimeout,
		Message:           "LLM upstream request timed out.",
		Operation:         operation,
		ProviderRequestID: optionalString(requestID),
		Retryable:         true,
		Attempts:          1,
		Details:           causeText(cause),
		Timestamp:         time.Now().UTC(),
		cause:             cause,
	}
}

// NewUpstreamUnavailableError reports a connection-level failure.
func NewUpstreamUnavailableError(operation, requestID string, cause error) *ServiceError {
	return &ServiceError{
		Code:              ErrCodeUpstreamUnavailable,
		Message:           "LLM upstream connection failed.",
		Operation:         operation,
		ProviderRequestID: optionalString(requestID),
		Retryable:         true,
		Attempts:          1,
		Details:           causeText(cause),
		Timestamp:         time.Now().UTC(),
		cause:             cause,
	}
}

// NewUpstreamHTTPError reports a non-2xx provider answer. Retryability follows IsRetryableStatus.
func NewUpstreamHTTPError(operation string, status int, requestID, body string) *ServiceError {
	return &ServiceError{
		Code:              ErrCodeUpstreamHTTPError,
		Message:           "LLM upstream returned an HTTP error.",
		Operation:         operation,
		ProviderStatus:    &status,
		ProviderRequestID: optionalString(requestID),
		Retryable:         IsRetryableStatus(status),
		Attempts:          1,
		Details:           body,
		Timestamp:         time.Now().UTC(),
	}
}

// NewSchemaValidationError reports a response that failed shape or business-rule checks.
// The diagnostic must already be a safe summary.
func NewSchemaValidationError(operation, diagnostic string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   diagnostic,
		Operation: operation,
		Retryable: false,
		Attempts:  1,
		Timestamp: time.Now().UTC(),
	}
}

// NewReplayNotFoundError reports a forced replay with nothing stored.
func NewReplayNotFoundError(operation string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeReplayNotFound,
		Message:   "Replay is forced but no replay payload was found.",
		Operation: operation,
		Retryable: false,
		Attempts:  1,
		Timestamp: time.Now().UTC(),
	}
}

// NewClientError reports anything that is neither a provider nor a content failure.
func NewClientError(operation, message string, cause error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeClientError,
		Message:   message,
		Operation: operation,
		Retryable: false,
		Attempts:  1,
		Details:   causeText(cause),
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 3. Classification
// ==========================

// IsRetryableStatus reports whether a provider HTTP status is worth another attempt.
func IsRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

// IsProviderCode reports whether the code originates from the provider transport or body.
func IsProviderCode(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidResponse, ErrCodeUpstreamTimeout, ErrCodeUpstreamUnavailable, ErrCodeUpstreamHTTPError:
		return true
	}
	return false
}

// As extracts a ServiceError from an error chain.
func As(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a ServiceError with the given code.
func HasCode(err error, code ErrorCode) bool {
	svcErr, ok := As(err)
	return ok && svcErr.Code == code
}

// Normalize guarantees a ServiceError, wrapping unknown failures as CLIENT_ERROR.
func Normalize(operation string, err error) *ServiceError {
	if err == nil {
		return nil
	}
	if svcErr, ok := As(err); ok {
		return svcErr
	}
	return NewClientError(operation, "Unexpected LLM client error.", err)
}

// GetErrorCategory groups codes for logs and dashboards.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUpstreamTimeout, ErrCodeUpstreamUnavailable, ErrCodeUpstreamHTTPError:
		return "TRANSPORT"
	case ErrCodeInvalidResponse, ErrCodeSchemaValidationFailed:
		return "CONTENT"
	case ErrCodeReplayNotFound:
		return "CACHE"
	default:
		return "CLIENT"
	}
}

// ==========================
// 4. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail/throw variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns how many job-level retries a code deserves once the
// provider client has already exhausted its own attempts.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamTimeout, ErrCodeUpstreamUnavailable, ErrCodeUpstreamHTTPError:
		return 2
	case ErrCodeInvalidResponse:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a ServiceError to a BPMNError for Camunda.
func ConvertToBPMNError(svcErr *ServiceError) *BPMNError {
	retries := GetRetryCount(svcErr.Code)
	if !svcErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(svcErr.Code),
		Message:   svcErr.Message,
		Retryable: svcErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"generationError": svcErr.ToDetail(),
			"errorCategory":   GetErrorCategory(svcErr.Code),
			"timestamp":       svcErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func causeText(cause error) string {
	if cause == nil {
		return ""
	}
	return cause.Error()
}
