package seeders

import (
	"context"
	"testing"

	"scrap-collect/database"
	listingModel "scrap-collect/models/listing"
	userModel "scrap-collect/models/user"
	"scrap-collect/services/listing_event"
	"scrap-collect/services/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedFixtures_IsIdempotent(t *testing.T) {
	db, err := database.OpenInMemory("seed_fixtures")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	ctx := context.Background()
	prices := pricing.NewStaticTable()

	require.NoError(t, SeedFixtures(ctx, db, prices))
	require.NoError(t, SeedFixtures(ctx, db, prices))

	var users int64
	require.NoError(t, db.Model(&userModel.User{}).Count(&users).Error)
	assert.EqualValues(t, 3, users)

	var listings []listingModel.Listing
	require.NoError(t, db.Find(&listings).Error)
	require.Len(t, listings, 3)
	for _, l := range listings {
		assert.Equal(t, listingModel.StatusPending, l.Status)
		assert.Equal(t, SellerID, l.SellerID)
		assert.NoError(t, l.CheckInvariants())

		price, err := prices.PriceForCategory(l.Category)
		require.NoError(t, err)
		assert.Equal(t, price, l.PricePerKg)

		history, err := listing_event.History(ctx, db, l.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	}
}
