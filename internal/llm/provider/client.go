// Package provider is the HTTP client for OpenAI-compatible chat completion
// endpoints. It maps every failure to a *errors.ServiceError and retries
// only the ones marked retryable.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	svcerrors "coach-generation/internal/common/errors"
	commonhttp "coach-generation/internal/common/http"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
	"coach-generation/internal/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxResponseBytes = 8 << 20
	maxDetailBytes   = 512
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// Reasoning is sent as an optional capability flag when non-nil.
	Reasoning *bool

	HTTPClient *commonhttp.Client
	Tracer     trace.Tracer
}

// Client is safe for concurrent use and holds no per-request state.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	reasoning    *bool
	httpClient   *commonhttp.Client
	tracer       trace.Tracer
	logger       logger.Logger
}

// New validates the configuration and normalizes the endpoint. Any error
// here is a startup failure.
func New(cfg Config, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	baseURL, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = commonhttp.NewClient(cfg.Timeout)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("coach-generation/llm/provider")
	}

	var reasoning *bool
	if cfg.Reasoning != nil {
		v := *cfg.Reasoning
		reasoning = &v
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		reasoning:    reasoning,
		httpClient:   cfg.HTTPClient,
		tracer:       cfg.Tracer,
		logger:       log.With(map[string]interface{}{"component": "llm-provider"}),
	}, nil
}

// BaseURL returns the normalized endpoint root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate sends req up to MaxRetries+1 times, retrying only retryable
// failures. The surfaced error carries the number of attempts made.
func (c *Client) Generate(ctx context.Context, req llm.Request) (*llm.RawResponse, error) {
	maxAttempts := c.maxRetries + 1
	includeReasoning := c.reasoning != nil

	var lastErr *svcerrors.ServiceError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 && !c.wait(ctx, attempt) {
			return nil, lastErr
		}

		resp, svcErr := c.attempt(ctx, req, &includeReasoning)
		if svcErr == nil {
			resp.Attempts = attempt
			return resp, nil
		}

		svcErr.Attempts = attempt
		lastErr = svcErr
		if !svcErr.Retryable || ctx.Err() != nil {
			return nil, svcErr
		}
		if attempt < maxAttempts {
			c.logger.Warn("retrying provider call", map[string]interface{}{
				"operation": req.Operation().String(),
				"attempt":   attempt,
				"code":      string(svcErr.Code),
				"status":    svcErr.Status(),
				"requestId": svcErr.RequestID(),
			})
		}
	}
	return nil, lastErr
}

// wait sleeps before the given attempt and reports false if ctx ended first.
func (c *Client) wait(ctx context.Context, attempt int) bool {
	delay := c.retryBackoff << (attempt - 2)
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// attempt sends once and, when the provider rejects the optional reasoning
// flag with 400/422, once more without it. The flag stays off for the rest
// of this Generate call.
func (c *Client) attempt(ctx context.Context, req llm.Request, includeReasoning *bool) (*llm.RawResponse, *svcerrors.ServiceError) {
	resp, svcErr := c.send(ctx, req, *includeReasoning)
	if svcErr == nil || !*includeReasoning || svcErr.Code != svcerrors.ErrCodeUpstreamHTTPError {
		return resp, svcErr
	}
	if status := svcErr.Status(); status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		return resp, svcErr
	}

	*includeReasoning = false
	metrics.CapabilityFallbacks.WithLabelValues(req.Operation().String()).Inc()
	c.logger.Info("provider rejected reasoning flag, retrying without it", map[string]interface{}{
		"operation": req.Operation().String(),
		"status":    svcErr.Status(),
	})
	return c.send(ctx, req, false)
}

func (c *Client) send(ctx context.Context, req llm.Request, withReasoning bool) (resp *llm.RawResponse, svcErr *svcerrors.ServiceError) {
	operation := req.Operation().String()

	ctx, span := c.tracer.Start(ctx, "llm.provider.chat_completions", trace.WithAttributes(
		attribute.String("llm.operation", operation),
		attribute.String("llm.model", c.model),
		attribute.Bool("llm.reasoning_flag", withReasoning),
	))
	start := time.Now()
	defer func() {
		code := "OK"
		if svcErr != nil {
			code = string(svcErr.Code)
			span.SetStatus(codes.Error, svcErr.Message)
		}
		if status := statusOf(resp, svcErr); status != 0 {
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
		metrics.ProviderAttempts.WithLabelValues(operation, code).Inc()
		metrics.ProviderLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		span.End()
	}()

	body, err := json.Marshal(c.buildRequest(req, withReasoning))
	if err != nil {
		return nil, svcerrors.NewClientError(operation, "Failed to encode LLM request.", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, svcerrors.NewClientError(operation, "Failed to build LLM request.", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(attemptCtx, httpReq)
	if err != nil {
		return nil, mapTransportError(ctx, operation, "", err)
	}
	defer httpResp.Body.Close()

	requestID := requestIDFromHeader(httpResp.Header)
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, mapTransportError(ctx, operation, requestID, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, svcerrors.NewUpstreamHTTPError(operation, httpResp.StatusCode, requestID, truncate(data, maxDetailBytes))
	}

	object, requestID, svcErr := parseCompletion(operation, requestID, data)
	if svcErr != nil {
		return nil, svcErr
	}

	return &llm.RawResponse{
		Object:    object,
		RequestID: requestID,
		Status:    httpResp.StatusCode,
		Latency:   time.Since(start),
	}, nil
}

func (c *Client) buildRequest(req llm.Request, withReasoning bool) chatRequest {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt()},
			{Role: "user", Content: string(req.Payload())},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    temperature,
	}
	if withReasoning && c.reasoning != nil {
		reasoning := *c.reasoning
		body.Reasoning = &reasoning
		if !reasoning {
			// Some compatible gateways only stop thinking with this switch.
			disabled := false
			body.EnableThinking = &disabled
		}
	}
	return body
}

// parseCompletion extracts the first choice's content as a JSON object.
func parseCompletion(operation, requestID string, data []byte) (map[string]interface{}, string, *svcerrors.ServiceError) {
	var completion chatResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, requestID, svcerrors.NewInvalidResponseError(operation, "LLM response envelope is not valid JSON.", requestID)
	}
	if requestID == "" {
		requestID = completion.ID
	}

	content := stripCodeFence(strings.TrimSpace(completion.firstContent()))
	if content == "" {
		return nil, requestID, svcerrors.NewInvalidResponseError(operation, "LLM response content is empty.", requestID)
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, requestID, svcerrors.NewInvalidResponseError(operation, "LLM response is not valid JSON.", requestID)
	}
	object, ok := payload.(map[string]interface{})
	if !ok {
		return nil, requestID, svcerrors.NewInvalidResponseError(operation, "LLM response JSON must be an object.", requestID)
	}
	return object, requestID, nil
}

// mapTransportError classifies failures that produced no usable response.
// parent is the caller's context, not the per-attempt one.
func mapTransportError(parent context.Context, operation, requestID string, err error) *svcerrors.ServiceError {
	switch {
	case parent.Err() == context.Canceled:
		return svcerrors.NewClientError(operation, "LLM request was cancelled.", err)
	case commonhttp.IsTimeout(err):
		return svcerrors.NewUpstreamTimeoutError(operation, requestID, err)
	case commonhttp.IsConnectionError(err):
		return svcerrors.NewUpstreamUnavailableError(operation, requestID, err)
	default:
		return svcerrors.NewClientError(operation, "Unexpected LLM client error.", err)
	}
}

func requestIDFromHeader(h http.Header) string {
	for _, key := range []string{"X-Request-Id", "Request-Id"} {
		if v := strings.TrimSpace(h.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func statusOf(resp *llm.RawResponse, svcErr *svcerrors.ServiceError) int {
	if resp != nil {
		return resp.Status
	}
	if svcErr != nil {
		return svcErr.Status()
	}
	return 0
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit])
}
