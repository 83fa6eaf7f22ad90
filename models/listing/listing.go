package listing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxImages is the number of photos a seller may attach to a listing
const MaxImages = 4

// WeightDecimals is the scale of the kg columns
const WeightDecimals = 3

// FitsWeightScale reports whether kg is stored without rounding.
func FitsWeightScale(kg decimal.Decimal) bool {
	return kg.Equal(kg.Truncate(WeightDecimals))
}

// Location is stored exactly as supplied by the seller
type Location struct {
	Address   string   `gorm:"type:text;not null" json:"address"`
	City      string   `gorm:"type:varchar(120);not null" json:"city"`
	State     string   `gorm:"type:varchar(120);not null" json:"state"`
	Pincode   string   `gorm:"type:varchar(20);not null" json:"pincode"`
	Landmark  *string  `gorm:"type:varchar(255)" json:"landmark,omitempty"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
}

// Listing is a seller's offer of recyclable material for pickup
type Listing struct {
	ID           string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	SellerID     string  `gorm:"type:varchar(36);not null;index" json:"seller_id"`
	DispatcherID *string `gorm:"type:varchar(36);index" json:"dispatcher_id,omitempty"`

	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Category    ScrapType       `gorm:"type:varchar(30);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	EstimatedKg decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"estimated_kg"`
	PricePerKg  int64           `gorm:"not null" json:"price_per_kg"`
	Location    Location        `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Images      StringSlice     `gorm:"type:json" json:"images"`

	Status      Status           `gorm:"type:varchar(20);not null;index" json:"status"`
	PickupAt    *time.Time       `json:"pickup_at,omitempty"`
	ActualKg    *decimal.Decimal `gorm:"type:numeric(12,3)" json:"actual_kg,omitempty"`
	PayoutTxnID *string          `gorm:"type:varchar(100)" json:"payout_txn_id,omitempty"`

	// Version is bumped on every transition and guards conditional updates.
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayoutAmount is actualKg × pricePerKg, zero until the listing is collected
func (l *Listing) PayoutAmount() decimal.Decimal {
	if l.ActualKg == nil {
		return decimal.Zero
	}
	return l.ActualKg.Mul(decimal.NewFromInt(l.PricePerKg))
}

var ErrInvariant = errors.New("listing invariant violated")

// CheckInvariants verifies the status-dependent field table.
func (l *Listing) CheckInvariants() error {
	if l.PricePerKg <= 0 {
		return fmt.Errorf("%w: price per kg must be positive", ErrInvariant)
	}

	switch l.Status {
	case StatusPending:
		if l.PickupAt != nil || l.ActualKg != nil || l.PayoutTxnID != nil || l.DispatcherID != nil {
			return fmt.Errorf("%w: pending listing has collection fields set", ErrInvariant)
		}
	case StatusScheduled:
		if l.PickupAt == nil || l.DispatcherID == nil {
			return fmt.Errorf("%w: scheduled listing needs pickup time and dispatcher", ErrInvariant)
		}
		if l.ActualKg != nil || l.PayoutTxnID != nil {
			return fmt.Errorf("%w: scheduled listing has collection fields set", ErrInvariant)
		}
	case StatusCollected:
		if l.PickupAt == nil || l.DispatcherID == nil || l.ActualKg == nil || l.PayoutTxnID == nil {
			return fmt.Errorf("%w: collected listing is missing collection fields", ErrInvariant)
		}
		if !l.ActualKg.IsPositive() {
			return fmt.Errorf("%w: collected weight must be positive", ErrInvariant)
		}
	case StatusCancelled:
		if l.ActualKg != nil || l.PayoutTxnID != nil {
			return fmt.Errorf("%w: cancelled listing has payout fields set", ErrInvariant)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvariant, l.Status)
	}
	return nil
}
