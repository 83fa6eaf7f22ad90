package listing

import (
	"time"
)

// ListingStatusEvent is the append-only audit trail of status changes
type ListingStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ListingID   string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	FromStatus  Status    `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus    Status    `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID     string    `gorm:"type:varchar(36);not null" json:"actor_id"`
	PayoutTxnID *string   `gorm:"type:varchar(100)" json:"payout_txn_id,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the ListingStatusEvent model
func (ListingStatusEvent) TableName() string {
	return "listing_status_events"
}
