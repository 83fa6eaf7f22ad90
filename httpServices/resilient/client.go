// Package resilient provides the JSON HTTP client shared by outbound integrations
package resilient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// APIError represents a non-2xx response that was not retried away
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// Options tunes the resilience policies
type Options struct {
	Timeout      time.Duration
	MaxRetries   int
	BackoffDelay time.Duration
	MaxBackoff   time.Duration
	BreakerDelay time.Duration
}

func DefaultOptions(timeout time.Duration) Options {
	return Options{
		Timeout:      timeout,
		MaxRetries:   3,
		BackoffDelay: 200 * time.Millisecond,
		MaxBackoff:   2 * time.Second,
		BreakerDelay: 30 * time.Second,
	}
}

type rawResponse struct {
	StatusCode int
	Body       []byte
}

// Client is a wrapper around http.Client with retry and circuit breaking
type Client struct {
	client   *http.Client
	baseURL  string
	headers  map[string]string
	pipeline failsafe.Executor[*rawResponse]
}

// NewClient builds a client whose headers are sent on every request.
func NewClient(baseURL string, headers map[string]string, opts Options) *Client {
	retryPolicy := retrypolicy.NewBuilder[*rawResponse]().
		HandleIf(func(resp *rawResponse, err error) bool {
			// Retry on network errors, 5xx and throttling
			if err != nil {
				return true
			}
			return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		}).
		WithBackoff(opts.BackoffDelay, opts.MaxBackoff).
		WithMaxRetries(opts.MaxRetries).
		Build()

	breaker := circuitbreaker.NewBuilder[*rawResponse]().
		HandleIf(func(resp *rawResponse, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode >= 500
		}).
		WithFailureThresholdRatio(5, 10).
		WithDelay(opts.BreakerDelay).
		Build()

	return &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:  baseURL,
		headers:  headers,
		pipeline: failsafe.With[*rawResponse](retryPolicy, breaker),
	}
}

// PostJSON sends body as JSON and returns the raw 2xx response body.
// extraHeaders are added to every attempt, so an idempotency key survives retries.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}, extraHeaders map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}

	resp, err := c.pipeline.GetWithExecution(func(exec failsafe.Execution[*rawResponse]) (*rawResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		for k, v := range extraHeaders {
			req.Header.Set(k, v)
		}
		return c.do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}

func (c *Client) do(req *http.Request) (*rawResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &rawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
