// Package httpclient provides a thin HTTP client with JSON handling,
// retries for transient failures and structured error reporting.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrolens/claimverify/pkg/resilience"
)

const defaultTimeout = 10 * time.Second

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client wraps http.Client with a base URL and retry behavior.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig *resilience.RetryConfig
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry enables retries with the given configuration.
func WithRetry(config resilience.RetryConfig) Option {
	return func(c *Client) {
		config.RetryableChecker = isHTTPRetryable
		c.retryConfig = &config
	}
}

// WithDefaultRetry enables retries with the default configuration.
func WithDefaultRetry() Option {
	return WithRetry(resilience.DefaultRetryConfig())
}

// WithTimeout overrides the per-request timeout. Non-positive values
// keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a Client for the given base URL. An optional timeout
// overrides the 10 second default.
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	t := defaultTimeout
	if len(timeout) > 0 {
		t = timeout[0]
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: t,
		},
	}
}

// NewClientWithOptions creates a Client with functional options applied.
func NewClientWithOptions(baseURL string, opts ...Option) *Client {
	c := NewClient(baseURL)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// isHTTPRetryable reports whether an error warrants a retry. Server errors
// and rate limiting are retryable, client errors are not. Non-HTTP errors
// (timeouts, connection resets) are treated as transient.
func isHTTPRetryable(err error) bool {
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// Get performs a GET request against baseURL+path and returns the body.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, headers)
}

// Post performs a POST request with a JSON-encoded body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body, headers)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string) ([]byte, error) {
	op := func(ctx context.Context) (interface{}, error) {
		return c.doOnce(ctx, method, path, body, headers)
	}

	var result interface{}
	var err error
	if c.retryConfig != nil {
		result, err = resilience.Retry(ctx, *c.retryConfig, op)
	} else {
		result, err = op(ctx)
	}
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body interface{}, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}
