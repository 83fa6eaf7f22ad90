package payout

import (
	"context"
	"fmt"

	"scrap-collect/config"
	payoutHTTP "scrap-collect/httpServices/payout"
	"scrap-collect/httpServices/resilient"
	"scrap-collect/logger"

	"github.com/shopspring/decimal"
)

// Request describes a single transfer to a seller. Amount is in rupees.
type Request struct {
	SellerID  string
	Amount    decimal.Decimal
	ListingID string
}

// Result is the definitive outcome of a payout attempt
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Processor executes payouts. An error means the outcome is a failure too;
// timeouts and retries are the implementation's concern.
type Processor interface {
	ProcessPayout(ctx context.Context, req Request) (Result, error)
}

// NewFromConfig picks the provider-backed processor or the mock
func NewFromConfig(cfg config.PayoutConfig) (Processor, error) {
	switch cfg.Mode {
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("PAYOUT_BASE_URL is required when PAYOUT_MODE=http")
		}
		client := payoutHTTP.NewClient(cfg.BaseURL, cfg.APIKey, resilient.DefaultOptions(cfg.Timeout))
		return NewHTTPProcessor(client), nil
	case "", "mock":
		logger.Warning("Using mock payout processor; no money will move")
		return NewMockProcessor(), nil
	default:
		return nil, fmt.Errorf("unsupported PAYOUT_MODE %q", cfg.Mode)
	}
}
