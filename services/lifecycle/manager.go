package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scrap-collect/logger"
	listingModel "scrap-collect/models/listing"
	userModel "scrap-collect/models/user"
	"scrap-collect/services/listing_store"
	"scrap-collect/services/notification"
	"scrap-collect/services/payout"
	"scrap-collect/services/pricing"

	"github.com/shopspring/decimal"
)

const notifyTimeout = 10 * time.Second

// CreateListingInput is what a seller supplies for a new listing
type CreateListingInput struct {
	Title       string
	Category    listingModel.ScrapType
	Description string
	EstimatedKg decimal.Decimal
	Location    listingModel.Location
	Images      []string
}

// ListFilter narrows ListVisibleListings; zero value means everything visible
type ListFilter struct {
	Status listingModel.Status
}

// Manager is the only component allowed to change a listing's status.
// Checks run in the order role, input, state; nothing is written unless all pass.
type Manager struct {
	store    listing_store.Store
	users    listing_store.UserStore
	prices   pricing.Table
	payouts  payout.Processor
	notifier notification.Gateway
	locks    *keyedMutex
	now      func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, used for createdAt and the past-pickup check.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(
	store listing_store.Store,
	users listing_store.UserStore,
	prices pricing.Table,
	payouts payout.Processor,
	notifier notification.Gateway,
	opts ...Option,
) *Manager {
	m := &Manager{
		store:    store,
		users:    users,
		prices:   prices,
		payouts:  payouts,
		notifier: notifier,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateListing stores a new PENDING listing priced at the table's current rate.
func (m *Manager) CreateListing(ctx context.Context, caller userModel.Caller, in CreateListingInput) (*listingModel.Listing, error) {
	if !caller.IsSeller() {
		return nil, authError("only sellers can create listings")
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	price, err := m.prices.PriceForCategory(in.Category)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownCategory) {
			return nil, validationError("no price for category %s", in.Category)
		}
		return nil, fmt.Errorf("failed to resolve price: %w", err)
	}

	l := &listingModel.Listing{
		SellerID:    caller.ID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		EstimatedKg: in.EstimatedKg,
		PricePerKg:  price,
		Location:    in.Location,
		Images:      listingModel.StringSlice(in.Images),
		Status:      listingModel.StatusPending,
		CreatedAt:   m.now().UTC(),
	}
	if err := m.store.Insert(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	logger.Info(fmt.Sprintf("Listing %s created by seller %s (%s, ₹%d/kg)", l.ID, caller.ID, l.Category, l.PricePerKg))
	return l, nil
}

func validateCreate(in *CreateListingInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationError("title is required")
	}
	if !in.Category.IsValid() {
		return validationError("unknown category %q", in.Category)
	}
	if !in.EstimatedKg.IsPositive() {
		return validationError("estimated weight must be greater than zero")
	}
	if !listingModel.FitsWeightScale(in.EstimatedKg) {
		return validationError("estimated weight allows at most %d decimal places", listingModel.WeightDecimals)
	}
	if len(in.Images) > listingModel.MaxImages {
		return validationError("at most %d images are allowed", listingModel.MaxImages)
	}

	loc := &in.Location
	required := []struct {
		name  string
		value *string
	}{
		{"address", &loc.Address},
		{"city", &loc.City},
		{"state", &loc.State},
		{"pincode", &loc.Pincode},
	}
	for _, field := range required {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			return validationError("location %s is required", field.name)
		}
	}
	return nil
}

// SchedulePickup assigns the calling staff member as dispatcher and moves PENDING to SCHEDULED.
func (m *Manager) SchedulePickup(ctx context.Context, caller userModel.Caller, listingID string, pickupAt time.Time) (*listingModel.Listing, error) {
	if !caller.IsStaff() {
		return nil, authError("only staff can schedule pickups")
	}
	if pickupAt.IsZero() {
		return nil, validationError("pickup time is required")
	}
	if pickupAt.Before(m.now()) {
		return nil, validationError("pickup time must not be in the past")
	}

	unlock := m.locks.Lock(listingID)
	defer unlock()

	l, err := m.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.Status != listingModel.StatusPending {
		return nil, invalidStateError("cannot schedule a %s listing", l.Status)
	}

	patch, err := listing_store.SchedulePatch(pickupAt.UTC(), caller.ID)
	if err != nil {
		return nil, validationError("%v", err)
	}
	updated, err := m.store.Update(ctx, l.ID, l.Status, l.Version, patch)
	if err != nil {
		return nil, storeError(l.ID, err)
	}

	logger.Success(fmt.Sprintf("Listing %s scheduled for %s by %s", updated.ID, pickupAt.UTC().Format(time.RFC3339), caller.ID))
	m.notifySeller(ctx, updated.SellerID, notification.PickupScheduledMessage(*updated.PickupAt))
	return updated, nil
}

// MarkCollected pays the seller and, only if the payout succeeds, moves SCHEDULED to COLLECTED.
// A failed payout leaves the listing untouched so the call can simply be repeated.
func (m *Manager) MarkCollected(ctx context.Context, caller userModel.Caller, listingID string, actualKg decimal.Decimal) (*listingModel.Listing, error) {
	if !caller.IsStaff() {
		return nil, authError("only staff can mark listings collected")
	}
	if !actualKg.IsPositive() {
		return nil, validationError("actual weight must be greater than zero")
	}
	if !listingModel.FitsWeightScale(actualKg) {
		return nil, validationError("actual weight allows at most %d decimal places", listingModel.WeightDecimals)
	}

	unlock := m.locks.Lock(listingID)
	defer unlock()

	l, err := m.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.Status != listingModel.StatusScheduled {
		return nil, invalidStateError("cannot collect a %s listing", l.Status)
	}

	amount := actualKg.Mul(decimal.NewFromInt(l.PricePerKg))
	result, err := m.payouts.ProcessPayout(ctx, payout.Request{
		SellerID:  l.SellerID,
		Amount:    amount,
		ListingID: l.ID,
	})
	if err != nil {
		return nil, &PayoutError{ListingID: l.ID, Err: err}
	}
	if !result.Success {
		return nil, &PayoutError{ListingID: l.ID, Message: result.Message}
	}
	if result.TransactionID == "" {
		return nil, &PayoutError{ListingID: l.ID, Message: "processor returned no transaction id"}
	}

	patch, err := listing_store.CollectPatch(actualKg, result.TransactionID, caller.ID)
	if err != nil {
		return nil, validationError("%v", err)
	}
	updated, err := m.store.Update(ctx, l.ID, l.Status, l.Version, patch)
	if err != nil {
		// Money moved but the row did not; the idempotency key makes a retry safe.
		logger.Error(fmt.Sprintf("Payout %s succeeded but listing %s was not marked collected", result.TransactionID, l.ID), err)
		return nil, storeError(l.ID, err)
	}

	logger.Success(fmt.Sprintf("Listing %s collected (%s kg, ₹%s, txn %s)", updated.ID, actualKg.String(), amount.StringFixed(2), result.TransactionID))
	m.notifySeller(ctx, updated.SellerID, notification.CollectedMessage(amount))
	return updated, nil
}

// CancelListing ends a listing. Sellers may cancel their own PENDING listings;
// staff may cancel anything not yet terminal.
func (m *Manager) CancelListing(ctx context.Context, caller userModel.Caller, listingID string) (*listingModel.Listing, error) {
	if !caller.IsSeller() && !caller.IsStaff() {
		return nil, authError("unknown role %q", caller.Role)
	}

	unlock := m.locks.Lock(listingID)
	defer unlock()

	l, err := m.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if caller.IsSeller() && l.SellerID != caller.ID {
		return nil, ErrListingNotFound
	}
	if l.Status.IsTerminal() {
		return nil, invalidStateError("cannot cancel a %s listing", l.Status)
	}
	if caller.IsSeller() && l.Status != listingModel.StatusPending {
		return nil, authError("sellers can only cancel pending listings")
	}

	patch, err := listing_store.CancelPatch(caller.ID)
	if err != nil {
		return nil, validationError("%v", err)
	}
	updated, err := m.store.Update(ctx, l.ID, l.Status, l.Version, patch)
	if err != nil {
		return nil, storeError(l.ID, err)
	}

	logger.Info(fmt.Sprintf("Listing %s cancelled by %s %s", updated.ID, caller.Role, caller.ID))
	if caller.IsStaff() {
		m.notifySeller(ctx, updated.SellerID, notification.CancelledMessage(updated.Title))
	}
	return updated, nil
}

// ListVisibleListings returns what the caller may see, newest first.
func (m *Manager) ListVisibleListings(ctx context.Context, caller userModel.Caller, filter ListFilter) ([]listingModel.Listing, error) {
	if !caller.IsSeller() && !caller.IsStaff() {
		return nil, authError("unknown role %q", caller.Role)
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, validationError("unknown status %q", filter.Status)
	}

	storeFilter := listing_store.Filter{Status: filter.Status}
	if caller.IsSeller() {
		storeFilter.SellerID = caller.ID
	}

	listings, err := m.store.FindAll(ctx, storeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// GetListing returns one listing; a seller asking for someone else's gets not found.
func (m *Manager) GetListing(ctx context.Context, caller userModel.Caller, listingID string) (*listingModel.Listing, error) {
	if !caller.IsSeller() && !caller.IsStaff() {
		return nil, authError("unknown role %q", caller.Role)
	}

	l, err := m.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if caller.IsSeller() && l.SellerID != caller.ID {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// ListingHistory returns the status transitions of a listing the caller may see.
func (m *Manager) ListingHistory(ctx context.Context, caller userModel.Caller, listingID string) ([]listingModel.ListingStatusEvent, error) {
	if _, err := m.GetListing(ctx, caller, listingID); err != nil {
		return nil, err
	}
	events, err := m.store.History(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing history: %w", err)
	}
	return events, nil
}

func (m *Manager) load(ctx context.Context, listingID string) (*listingModel.Listing, error) {
	l, err := m.store.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listing_store.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	return l, nil
}

func storeError(listingID string, err error) error {
	switch {
	case errors.Is(err, listing_store.ErrNotFound):
		return ErrListingNotFound
	case errors.Is(err, listing_store.ErrConflict):
		return invalidStateError("listing %s changed concurrently", listingID)
	case errors.Is(err, listing_store.ErrIllegalTransition):
		return invalidStateError("%v", err)
	default:
		return fmt.Errorf("failed to update listing %s: %w", listingID, err)
	}
}

// notifySeller runs after the transition is committed; failures are only logged.
func (m *Manager) notifySeller(ctx context.Context, sellerID, message string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	seller, err := m.users.FindUserByID(ctx, sellerID)
	if err != nil {
		logger.Warning(fmt.Sprintf("Notification skipped: seller %s lookup failed: %v", sellerID, err))
		return
	}
	if seller.Phone == nil || *seller.Phone == "" {
		logger.Debug(fmt.Sprintf("Notification skipped: seller %s has no phone", sellerID))
		return
	}

	if !m.notifier.Notify(ctx, *seller.Phone, message) {
		logger.Warning(fmt.Sprintf("Notification to seller %s was not delivered", sellerID))
	}
}
