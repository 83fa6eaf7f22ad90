package listing

import (
	"fmt"
	"strings"
	"time"

	listingModel "scrap-collect/models/listing"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
)

// MaxScheduleDays bounds how far ahead a pickup may be booked
const MaxScheduleDays = 30

type LocationRequest struct {
	Address   string   `json:"address" validate:"required"`
	City      string   `json:"city" validate:"required"`
	State     string   `json:"state" validate:"required"`
	Pincode   string   `json:"pincode" validate:"required"`
	Landmark  *string  `json:"landmark"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

func (r *LocationRequest) ToModel() listingModel.Location {
	return listingModel.Location{
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		Pincode:   r.Pincode,
		Landmark:  r.Landmark,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type CreateListingRequest struct {
	Title       string                 `json:"title" validate:"required"`
	Category    listingModel.ScrapType `json:"category" validate:"required"`
	Description string                 `json:"description"`
	EstimatedKg decimal.Decimal        `json:"estimated_kg" validate:"required"`
	Location    LocationRequest        `json:"location" validate:"required"`
	Images      []string               `json:"images"`
}

// Validate validates the CreateListingRequest fields
func (r *CreateListingRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}

	if !r.Category.IsValid() {
		return fmt.Errorf("category must be one of the supported scrap types")
	}

	if !r.EstimatedKg.IsPositive() {
		return fmt.Errorf("estimated_kg must be greater than zero")
	}
	if !listingModel.FitsWeightScale(r.EstimatedKg) {
		return fmt.Errorf("estimated_kg allows at most %d decimal places", listingModel.WeightDecimals)
	}

	if strings.TrimSpace(r.Location.Address) == "" {
		return fmt.Errorf("location.address is required")
	}
	if strings.TrimSpace(r.Location.City) == "" {
		return fmt.Errorf("location.city is required")
	}
	if strings.TrimSpace(r.Location.State) == "" {
		return fmt.Errorf("location.state is required")
	}
	if strings.TrimSpace(r.Location.Pincode) == "" {
		return fmt.Errorf("location.pincode is required")
	}

	if len(r.Images) > listingModel.MaxImages {
		return fmt.Errorf("at most %d images are allowed", listingModel.MaxImages)
	}
	return nil
}

type SchedulePickupRequest struct {
	PickupAt time.Time `json:"pickup_at" validate:"required"`
}

// Validate checks pickup_at lies between current and the end of the scheduling window
func (r *SchedulePickupRequest) Validate(current time.Time) error {
	if r.PickupAt.IsZero() {
		return fmt.Errorf("pickup_at is required")
	}

	if r.PickupAt.Before(current) {
		return fmt.Errorf("pickup_at must not be in the past")
	}

	latest := now.With(current).EndOfDay().AddDate(0, 0, MaxScheduleDays)
	if r.PickupAt.After(latest) {
		return fmt.Errorf("pickup_at must be within %d days", MaxScheduleDays)
	}
	return nil
}

type CollectRequest struct {
	ActualKg decimal.Decimal `json:"actual_kg" validate:"required"`
}

// Validate validates the CollectRequest fields
func (r *CollectRequest) Validate() error {
	if !r.ActualKg.IsPositive() {
		return fmt.Errorf("actual_kg must be greater than zero")
	}
	if !listingModel.FitsWeightScale(r.ActualKg) {
		return fmt.Errorf("actual_kg allows at most %d decimal places", listingModel.WeightDecimals)
	}
	return nil
}

// ListingResponse adds derived display fields to a listing
type ListingResponse struct {
	*listingModel.Listing
	CategoryName string           `json:"category_name"`
	PayoutAmount *decimal.Decimal `json:"payout_amount,omitempty"`
}

func NewListingResponse(l *listingModel.Listing) ListingResponse {
	resp := ListingResponse{Listing: l, CategoryName: l.Category.DisplayName()}
	if l.ActualKg != nil {
		amount := l.PayoutAmount()
		resp.PayoutAmount = &amount
	}
	return resp
}

func NewListingResponses(listings []listingModel.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, NewListingResponse(&listings[i]))
	}
	return out
}
