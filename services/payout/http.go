package payout

import (
	"context"
	"errors"
	"fmt"

	payoutHTTP "scrap-collect/httpServices/payout"
	"scrap-collect/logger"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Provider statuses that mean the transfer was accepted
var acceptedStatuses = map[string]bool{
	"processed":  true,
	"processing": true,
	"queued":     true,
}

type payoutCreator interface {
	CreatePayout(ctx context.Context, req payoutHTTP.CreatePayoutRequest, idempotencyKey string) (*payoutHTTP.PayoutResponse, error)
}

// HTTPProcessor sends payouts to the provider API
type HTTPProcessor struct {
	client payoutCreator
}

func NewHTTPProcessor(client *payoutHTTP.PayoutClient) *HTTPProcessor {
	return &HTTPProcessor{client: client}
}

// IdempotencyKey is stable per listing so a retried collection never pays twice.
func IdempotencyKey(listingID string) string {
	return "payout-" + listingID
}

func (p *HTTPProcessor) ProcessPayout(ctx context.Context, req Request) (Result, error) {
	if !req.Amount.IsPositive() {
		return Result{Success: false, Message: "payout amount must be positive"}, nil
	}

	body := payoutHTTP.CreatePayoutRequest{
		AccountReference: req.SellerID,
		Amount:           req.Amount.Mul(hundred).Round(0).IntPart(),
		Currency:         "INR",
		Mode:             "IMPS",
		Purpose:          "payout",
		ReferenceID:      req.ListingID,
		Narration:        "Scrap collection payout",
	}

	resp, err := p.client.CreatePayout(ctx, body, IdempotencyKey(req.ListingID))
	if err != nil {
		var declined *payoutHTTP.DeclinedError
		if errors.As(err, &declined) {
			return Result{Success: false, Message: declined.Reason}, nil
		}
		logger.Error(fmt.Sprintf("Payout request for listing %s failed", req.ListingID), err)
		return Result{}, err
	}

	if !acceptedStatuses[resp.Status] {
		msg := resp.FailureReason
		if msg == "" {
			msg = "payout " + resp.Status
		}
		return Result{Success: false, TransactionID: resp.ID, Message: msg}, nil
	}

	return Result{
		Success:       true,
		TransactionID: resp.ID,
		Message:       fmt.Sprintf("Payout of ₹%s %s", req.Amount.StringFixed(2), resp.Status),
	}, nil
}
