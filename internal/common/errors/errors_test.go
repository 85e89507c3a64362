package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableStatus_Determinism(t *testing.T) {
	for status := 100; status <= 599; status++ {
		want := status == 408 || status == 409 || status == 429 || status >= 500
		assert.Equal(t, want, IsRetryableStatus(status), "status %d", status)

		svcErr := NewUpstreamHTTPError("op", status, "", "")
		assert.Equal(t, want, svcErr.Retryable, "status %d", status)
	}
}

func TestConstructors_Retryability(t *testing.T) {
	tests := []struct {
		err       *ServiceError
		code      ErrorCode
		retryable bool
	}{
		{NewInvalidResponseError("op", "bad", "r"), ErrCodeInvalidResponse, true},
		{NewUpstreamTimeoutError("op", "", nil), ErrCodeUpstreamTimeout, true},
		{NewUpstreamUnavailableError("op", "", nil), ErrCodeUpstreamUnavailable, true},
		{NewSchemaValidationError("op", "days: required"), ErrCodeSchemaValidationFailed, false},
		{NewReplayNotFoundError("op"), ErrCodeReplayNotFound, false},
		{NewClientError("op", "boom", nil), ErrCodeClientError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, 1, tt.err.Attempts)
			assert.Equal(t, "op", tt.err.Operation)
			assert.Equal(t, http.StatusBadGateway, tt.err.HTTPStatus())
		})
	}
}

func TestToDetail_IsSanitized(t *testing.T) {
	cause := fmt.Errorf("dial tcp 10.0.0.1:443: secret-token-in-url")
	svcErr := NewUpstreamUnavailableError("generate_launch_kit", "req-9", cause)
	svcErr.Attempts = 3

	detail := svcErr.ToDetail()

	assert.Equal(t, map[string]interface{}{
		"code":                "UPSTREAM_UNAVAILABLE",
		"message":             "LLM upstream connection failed.",
		"operation":           "generate_launch_kit",
		"provider_status":     nil,
		"provider_request_id": "req-9",
		"retryable":           true,
		"attempts":            3,
	}, detail)

	encoded, err := json.Marshal(svcErr)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "secret-token")
	assert.True(t, stderrors.Is(svcErr, cause))
}

func TestAsAndNormalize(t *testing.T) {
	wrapped := fmt.Errorf("facade: %w", NewReplayNotFoundError("check_consistency"))

	svcErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeReplayNotFound, svcErr.Code)
	assert.True(t, HasCode(wrapped, ErrCodeReplayNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeReplayNotFound))

	normalized := Normalize("check_consistency", stderrors.New("database is on fire"))
	assert.Equal(t, ErrCodeClientError, normalized.Code)
	assert.Equal(t, "Unexpected LLM client error.", normalized.Message)
	assert.Same(t, svcErr, Normalize("x", wrapped))
	assert.Nil(t, Normalize("x", nil))
}

func TestIsProviderCode(t *testing.T) {
	provider := map[ErrorCode]bool{
		ErrCodeInvalidResponse:     true,
		ErrCodeUpstreamTimeout:     true,
		ErrCodeUpstreamUnavailable: true,
		ErrCodeUpstreamHTTPError:   true,
	}
	for _, code := range AllCodes {
		assert.Equal(t, provider[code], IsProviderCode(code), code)
	}
}

func TestConvertToBPMNError(t *testing.T) {
	transient := ConvertToBPMNError(NewUpstreamTimeoutError("op", "", nil))
	assert.Equal(t, "UPSTREAM_TIMEOUT", transient.Code)
	assert.Equal(t, 2, transient.Retries)
	assert.Equal(t, "TRANSPORT", transient.ErrorVariables["errorCategory"])

	permanentHTTP := ConvertToBPMNError(NewUpstreamHTTPError("op", 401, "", ""))
	assert.Equal(t, 0, permanentHTTP.Retries)

	schema := ConvertToBPMNError(NewSchemaValidationError("op", "bad"))
	assert.False(t, schema.Retryable)
	assert.Equal(t, 0, schema.Retries)

	vars := schema.ToErrorVariables()
	assert.Equal(t, "SCHEMA_VALIDATION_FAILED", vars["errorCode"])
	assert.Contains(t, vars, "generationError")
}

func TestRemainingRetries(t *testing.T) {
	retryable := &BPMNError{Retryable: true, Retries: 2}

	assert.Equal(t, 2, RemainingRetries(5, retryable))
	assert.Equal(t, 1, RemainingRetries(2, retryable))
	assert.Equal(t, 0, RemainingRetries(1, retryable))
	assert.Equal(t, 0, RemainingRetries(0, retryable))
	assert.Equal(t, 0, RemainingRetries(5, &BPMNError{Retryable: false, Retries: 2}))
}
