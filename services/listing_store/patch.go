package listing_store

import (
	"errors"
	"time"

	listingModel "scrap-collect/models/listing"

	"github.com/shopspring/decimal"
)

var ErrInvalidPatch = errors.New("invalid listing patch")

// Patch is a status change plus exactly the fields that status requires.
// Build one with SchedulePatch, CollectPatch or CancelPatch.
type Patch struct {
	status       listingModel.Status
	actorID      string
	pickupAt     time.Time
	dispatcherID string
	actualKg     decimal.Decimal
	payoutTxnID  string
}

func (p Patch) Status() listingModel.Status {
	return p.status
}

func SchedulePatch(pickupAt time.Time, dispatcherID string) (Patch, error) {
	if pickupAt.IsZero() || dispatcherID == "" {
		return Patch{}, ErrInvalidPatch
	}
	return Patch{
		status:       listingModel.StatusScheduled,
		actorID:      dispatcherID,
		pickupAt:     pickupAt,
		dispatcherID: dispatcherID,
	}, nil
}

// CollectPatch sets weight and transaction id together so neither is ever stored alone.
func CollectPatch(actualKg decimal.Decimal, payoutTxnID, actorID string) (Patch, error) {
	if !actualKg.IsPositive() || payoutTxnID == "" || actorID == "" {
		return Patch{}, ErrInvalidPatch
	}
	return Patch{
		status:      listingModel.StatusCollected,
		actorID:     actorID,
		actualKg:    actualKg,
		payoutTxnID: payoutTxnID,
	}, nil
}

func CancelPatch(actorID string) (Patch, error) {
	if actorID == "" {
		return Patch{}, ErrInvalidPatch
	}
	return Patch{status: listingModel.StatusCancelled, actorID: actorID}, nil
}

func (p Patch) columns() map[string]interface{} {
	updates := map[string]interface{}{
		"status": p.status,
	}
	switch p.status {
	case listingModel.StatusScheduled:
		updates["pickup_at"] = p.pickupAt
		updates["dispatcher_id"] = p.dispatcherID
	case listingModel.StatusCollected:
		updates["actual_kg"] = p.actualKg
		updates["payout_txn_id"] = p.payoutTxnID
	}
	return updates
}
