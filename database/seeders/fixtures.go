package seeders

import (
	"context"
	"errors"
	"fmt"

	"scrap-collect/logger"
	listingModel "scrap-collect/models/listing"
	userModel "scrap-collect/models/user"
	"scrap-collect/services/listing_store"
	"scrap-collect/services/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixed identities for local development tokens
const (
	SellerID = "00000000-0000-4000-8000-000000000001"
	StaffID  = "00000000-0000-4000-8000-000000000002"
	AdminID  = "00000000-0000-4000-8000-000000000003"
)

func strPtr(s string) *string { return &s }

func fixtureUsers() []userModel.User {
	return []userModel.User{
		{ID: SellerID, Email: "seller@scrap-collect.local", Role: userModel.RoleSeller, Name: strPtr("Asha Seller"), Phone: strPtr("+919800000001")},
		{ID: StaffID, Email: "staff@scrap-collect.local", Role: userModel.RoleStaff, Name: strPtr("Ravi Dispatcher"), Phone: strPtr("+919800000002")},
		{ID: AdminID, Email: "admin@scrap-collect.local", Role: userModel.RoleAdmin, Name: strPtr("Meera Admin")},
	}
}

func fixtureListings(prices pricing.Table) ([]listingModel.Listing, error) {
	drafts := []struct {
		id       string
		title    string
		category listingModel.ScrapType
		kg       string
	}{
		{"10000000-0000-4000-8000-000000000001", "Old newspapers", listingModel.ScrapPaper, "12.5"},
		{"10000000-0000-4000-8000-000000000002", "Cardboard boxes after moving", listingModel.ScrapCardboard, "8"},
		{"10000000-0000-4000-8000-000000000003", "Aluminium utensils", listingModel.ScrapAluminium, "3.2"},
	}

	listings := make([]listingModel.Listing, 0, len(drafts))
	for _, d := range drafts {
		price, err := prices.PriceForCategory(d.category)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listingModel.Listing{
			ID:          d.id,
			SellerID:    SellerID,
			Title:       d.title,
			Category:    d.category,
			EstimatedKg: decimal.RequireFromString(d.kg),
			PricePerKg:  price,
			Location: listingModel.Location{
				Address: "12 MG Road",
				City:    "Bengaluru",
				State:   "Karnataka",
				Pincode: "560001",
			},
			Status: listingModel.StatusPending,
		})
	}
	return listings, nil
}

// SeedFixtures inserts the development users and PENDING listings that are missing.
// Existing rows are left untouched, so running it twice is harmless.
func SeedFixtures(ctx context.Context, db *gorm.DB, prices pricing.Table) error {
	logger.Info("🔍 Checking development fixtures...")

	users := fixtureUsers()
	var existingUsers []string
	if err := db.WithContext(ctx).Model(&userModel.User{}).Pluck("id", &existingUsers).Error; err != nil {
		return fmt.Errorf("failed to fetch existing users: %w", err)
	}
	existing := make(map[string]bool, len(existingUsers))
	for _, id := range existingUsers {
		existing[id] = true
	}

	userCount := 0
	for i := range users {
		if existing[users[i].ID] {
			continue
		}
		if err := db.WithContext(ctx).Create(&users[i]).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].Email, err)
		}
		userCount++
	}

	listings, err := fixtureListings(prices)
	if err != nil {
		return err
	}
	store := listing_store.NewGormStore(db)

	listingCount := 0
	for i := range listings {
		_, err := store.FindByID(ctx, listings[i].ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, listing_store.ErrNotFound) {
			return err
		}
		if err := store.Insert(ctx, &listings[i]); err != nil {
			return fmt.Errorf("failed to seed listing %q: %w", listings[i].Title, err)
		}
		listingCount++
	}

	logger.Success(fmt.Sprintf("🌱 Seeded %d users and %d listings", userCount, listingCount))
	return nil
}
