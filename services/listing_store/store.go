package listing_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	listingModel "scrap-collect/models/listing"
	userModel "scrap-collect/models/user"
	"scrap-collect/services/listing_event"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("listing not found")
	// ErrConflict means the row no longer has the expected status or version.
	ErrConflict          = errors.New("listing was modified concurrently")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrUserNotFound      = errors.New("user not found")
)

// Store is the persistence boundary of the lifecycle manager
type Store interface {
	Insert(ctx context.Context, l *listingModel.Listing) error
	FindByID(ctx context.Context, id string) (*listingModel.Listing, error)
	FindAll(ctx context.Context, filter Filter) ([]listingModel.Listing, error)
	Update(ctx context.Context, id string, expect listingModel.Status, expectVersion int64, patch Patch) (*listingModel.Listing, error)
	History(ctx context.Context, id string) ([]listingModel.ListingStatusEvent, error)
}

// UserStore resolves seller contact details
type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*userModel.User, error)
}

// Filter narrows FindAll. Zero values mean "any".
type Filter struct {
	SellerID    string
	Status      listingModel.Status
	Category    listingModel.ScrapType
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// GormStore implements Store and UserStore on top of gorm
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Insert(ctx context.Context, l *listingModel.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status != listingModel.StatusPending {
		return fmt.Errorf("%w: new listings start as %s, got %s", ErrIllegalTransition, listingModel.StatusPending, l.Status)
	}
	if err := l.CheckInvariants(); err != nil {
		return err
	}
	l.Version = 1

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(l).Error; err != nil {
			return fmt.Errorf("failed to insert listing: %w", err)
		}
		return listing_event.RecordTransition(tx, l, "", l.SellerID)
	})
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*listingModel.Listing, error) {
	var l listingModel.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	return &l, nil
}

// FindAll returns matching listings, newest first.
func (s *GormStore) FindAll(ctx context.Context, filter Filter) ([]listingModel.Listing, error) {
	query := s.DB.WithContext(ctx).Model(&listingModel.Listing{})

	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if !filter.CreatedFrom.IsZero() {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var listings []listingModel.Listing
	if err := query.Order("created_at DESC, id DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// Update applies patch only if the row still has status expect and version expectVersion.
// The status event is written in the same transaction.
func (s *GormStore) Update(ctx context.Context, id string, expect listingModel.Status, expectVersion int64, patch Patch) (*listingModel.Listing, error) {
	if !expect.CanTransitionTo(patch.status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, expect, patch.status)
	}

	var updated listingModel.Listing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := patch.columns()
		updates["version"] = expectVersion + 1
		updates["updated_at"] = time.Now()

		result := tx.Model(&listingModel.Listing{}).
			Where("id = ? AND status = ? AND version = ?", id, expect, expectVersion).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update listing %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&listingModel.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		if err := updated.CheckInvariants(); err != nil {
			return err
		}
		return listing_event.RecordTransition(tx, &updated, expect, patch.actorID)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// History returns the status events of a listing, oldest first.
func (s *GormStore) History(ctx context.Context, id string) ([]listingModel.ListingStatusEvent, error) {
	events, err := listing_event.History(ctx, s.DB, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history of listing %s: %w", id, err)
	}
	return events, nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*userModel.User, error) {
	var u userModel.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
