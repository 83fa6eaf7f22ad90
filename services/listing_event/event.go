package listing_event

import (
	"context"
	"fmt"

	listingModel "scrap-collect/models/listing"

	"gorm.io/gorm"
)

// RecordTransition appends a status event for l, which already carries its new status.
// It must run inside the transaction that applied the transition.
func RecordTransition(tx *gorm.DB, l *listingModel.Listing, from listingModel.Status, actorID string) error {
	ev := listingModel.ListingStatusEvent{
		ListingID:   l.ID,
		FromStatus:  from,
		ToStatus:    l.Status,
		ActorID:     actorID,
		PayoutTxnID: l.PayoutTxnID,
	}
	if err := tx.Create(&ev).Error; err != nil {
		return fmt.Errorf("failed to record %s -> %s for listing %s: %w", from, l.Status, l.ID, err)
	}
	return nil
}

// History returns every recorded transition of a listing, oldest first
func History(ctx context.Context, db *gorm.DB, listingID string) ([]listingModel.ListingStatusEvent, error) {
	var events []listingModel.ListingStatusEvent
	err := db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
