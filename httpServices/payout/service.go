package payout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"scrap-collect/httpServices/resilient"
)

// DeclinedError is a definitive rejection by the provider
type DeclinedError struct {
	StatusCode int
	Reason     string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payout declined (%d): %s", e.StatusCode, e.Reason)
}

type PayoutClient struct {
	client *resilient.Client
}

func NewClient(baseURL, apiKey string, opts resilient.Options) *PayoutClient {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &PayoutClient{
		client: resilient.NewClient(baseURL, headers, opts),
	}
}

// CreatePayout posts a payout. idempotencyKey must be stable for a given listing.
func (c *PayoutClient) CreatePayout(ctx context.Context, req CreatePayoutRequest, idempotencyKey string) (*PayoutResponse, error) {
	body, err := c.client.PostJSON(ctx, "/payouts", req, map[string]string{
		"Idempotency-Key": idempotencyKey,
	})
	if err != nil {
		var apiErr *resilient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return nil, &DeclinedError{StatusCode: apiErr.StatusCode, Reason: declineReason(apiErr.Body)}
		}
		return nil, err
	}

	var resp PayoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode payout response: %w", err)
	}
	return &resp, nil
}

func declineReason(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Description != "" {
		return er.Error.Description
	}
	if len(body) == 0 {
		return "no reason given"
	}
	return string(body)
}
