package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/metrics"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests
	DefaultHTTPTimeout = 120 * time.Second
	// DefaultMaxRetries is the default maximum number of retry attempts
	DefaultMaxRetries = 3
	// DefaultBaseRetryDelay is the base delay for exponential backoff
	DefaultBaseRetryDelay = 2 * time.Second
	// RateLimitBackoffMultiplier is the multiplier for rate limit backoff (3^n)
	RateLimitBackoffMultiplier = 3
)

// Client handles HTTP requests to OpenAI-compatible API endpoints
type Client struct {
	httpClient      *http.Client
	rateLimiterPool *RateLimiterPool
	logger          *slog.Logger
	metrics         *metrics.Collector
	maxRetries      int
	baseRetryDelay  time.Duration
}

// NewClient creates a new API client. A zero timeout selects DefaultHTTPTimeout.
func NewClient(logger *slog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		rateLimiterPool: NewRateLimiterPool(logger),
		logger:          logger,
		maxRetries:      DefaultMaxRetries,
		baseRetryDelay:  DefaultBaseRetryDelay,
	}
}

// WithTimeout returns a client with its own HTTP timeout that shares the
// rate limiters and metrics of c. Models behind one endpoint stay under one
// limiter even when their timeouts differ.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	// Shallow copy keeps the limiter pool pointer
	clone := *c
	clone.httpClient = &http.Client{Timeout: timeout}
	return &clone
}

// Timeout returns the HTTP timeout applied to every request
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// SetMetrics attaches a metrics collector; nil disables recording
func (c *Client) SetMetrics(m *metrics.Collector) {
	c.metrics = m
}

// ChatCompletion sends a chat completion request to the specified model
func (c *Client) ChatCompletion(
	ctx context.Context,
	modelCfg config.ModelConfig,
	apiKey string,
	messages []Message,
) (*ChatCompletionResponse, error) {
	// Construct request
	req := ChatCompletionRequest{
		Model:       modelCfg.ModelName,
		Messages:    messages,
		Temperature: modelCfg.Temperature,
		TopP:        modelCfg.TopP,
		MaxTokens:   modelCfg.MaxOutputTokens,
		N:           1,
	}

	var resp ChatCompletionResponse
	err := c.withRetry(ctx, modelCfg, "chat", func() error {
		body, err := c.postJSON(ctx, modelCfg.BaseURL, "chat/completions", apiKey, req)
		if err != nil {
			return err
		}

		// Parse response
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices returned in response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// withRetry runs call under the model's rate limiter, retrying retryable
// API errors with exponential backoff and jitter.
func (c *Client) withRetry(ctx context.Context, modelCfg config.ModelConfig, kind string, call func() error) error {
	// Generate a unique model ID for rate limiting
	modelID := fmt.Sprintf("%s:%s", modelCfg.BaseURL, modelCfg.ModelName)
	maxRetries := c.retriesFor(modelCfg)

	// Retry with exponential backoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Calculate backoff with jitter
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseRetryDelay

			// Rate limits get longer delays (3^n: 6s, 18s, 54s)
			if isRateLimitError(lastErr) {
				backoff = time.Duration(math.Pow(RateLimitBackoffMultiplier, float64(attempt))) * c.baseRetryDelay
			}
			jitter := time.Duration(float64(backoff) * 0.1 * (2*rand.Float64() - 1))
			sleepDuration := backoff + jitter

			c.logger.Warn("Retrying API request",
				"kind", kind,
				"attempt", attempt,
				"max_retries", maxRetries,
				"backoff", sleepDuration,
				"model", modelCfg.ModelName,
				"is_rate_limit", isRateLimitError(lastErr))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleepDuration):
			}
		}

		// Wait for rate limiter
		waitStart := time.Now()
		if err := c.rateLimiterPool.Wait(ctx, modelID, modelCfg.RateLimitPerMinute); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		c.metrics.RecordRateLimiterWait(modelCfg.ModelName, time.Since(waitStart))

		start := time.Now()
		err := call()
		c.metrics.RecordAPIRequest(modelCfg.ModelName, kind, time.Since(start), err == nil)
		if err == nil {
			return nil
		}

		// Check if error is retryable
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) retriesFor(modelCfg config.ModelConfig) int {
	switch {
	case modelCfg.MaxRetries < 0:
		return 0
	case modelCfg.MaxRetries > 0:
		return modelCfg.MaxRetries
	default:
		return c.maxRetries
	}
}

// postJSON posts payload to baseURL/path and returns the raw 200 body
func (c *Client) postJSON(ctx context.Context, baseURL, path, apiKey string, payload interface{}) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	// Marshal request body
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create HTTP request
	endpoint := joinURL(baseURL, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	} else {
		c.logger.Debug("API request without key", "endpoint", endpoint)
	}

	return c.do(httpReq)
}

// do sends the request and maps non-200 responses to *APIError
func (c *Client) do(httpReq *http.Request) ([]byte, error) {
	// Send request
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Cancellation is the caller's, not a transport failure
		if ctxErr := httpReq.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &APIError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
		}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	// Read response body
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check status code
	if httpResp.StatusCode != http.StatusOK {
		retryable := isStatusCodeRetryable(httpResp.StatusCode)

		// Prefer the structured error body when the server sends one
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, &APIError{
				Message:    errResp.Error.Message,
				StatusCode: httpResp.StatusCode,
				Type:       errResp.Error.Type,
				Code:       errResp.Error.Code,
				Retryable:  retryable,
			}
		}

		return nil, &APIError{
			Message:    fmt.Sprintf("API request failed with status %d: %s", httpResp.StatusCode, string(respBody)),
			StatusCode: httpResp.StatusCode,
			Retryable:  retryable,
		}
	}

	return respBody, nil
}

// Pooled request buffers are capped at 64KB; revision prompts carry the whole story.
const maxPooledBuffer = 64 * 1024

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxPooledBuffer {
		bufferPool.Put(buf)
	}
}

func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

func isRateLimitError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func isStatusCodeRetryable(statusCode int) bool {
	// Retry on rate limits and server errors
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}

// APIError represents an error returned by the API
type APIError struct {
	Message    string
	StatusCode int
	Type       string
	Code       string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}
