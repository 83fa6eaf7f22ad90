package database

import (
	"fmt"

	"scrap-collect/logger"
	"scrap-collect/models/assessment"
	"scrap-collect/models/listing"
	"scrap-collect/models/log"
	"scrap-collect/models/user"

	"gorm.io/gorm"
)

// Migrate creates or updates every table, then indexes and constraints
func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		return err
	}
	logger.Debug("All models migrated")

	if err := createIndexes(db); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		createForeignKeyConstraints(db)
	}
	return nil
}

// autoMigrate runs auto migration for all models
func autoMigrate(db *gorm.DB) error {
	// Stage 1: accounts
	stage1Models := []interface{}{
		&user.User{},
	}

	// Stage 2: listings and their audit trail
	stage2Models := []interface{}{
		&listing.Listing{},
		&listing.ListingStatusEvent{},
	}

	// Stage 3: supporting records
	remainingModels := []interface{}{
		&assessment.MaterialAssessment{},
		&log.Log{},
	}

	for _, stage := range [][]interface{}{stage1Models, stage2Models, remainingModels} {
		for _, model := range stage {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
	}
	return nil
}

// createIndexes creates additional composite indexes for the hot queries
func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_listings_seller_created", "CREATE INDEX IF NOT EXISTS idx_listings_seller_created ON listings(seller_id, created_at)"},
		{"idx_listings_status_created", "CREATE INDEX IF NOT EXISTS idx_listings_status_created ON listings(status, created_at)"},
		{"idx_listing_status_events_listing_created", "CREATE INDEX IF NOT EXISTS idx_listing_status_events_listing_created ON listing_status_events(listing_id, created_at)"},
		{"idx_logs_method", "CREATE INDEX IF NOT EXISTS idx_logs_method ON logs(method)"},
		{"idx_logs_status_code", "CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)"},
		{"idx_logs_created_at", "CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)"},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// createForeignKeyConstraints adds FKs that AutoMigrate cannot infer without associations
func createForeignKeyConstraints(db *gorm.DB) {
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_listings_seller",
			sql: `ALTER TABLE listings ADD CONSTRAINT fk_listings_seller
				  FOREIGN KEY (seller_id) REFERENCES users(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_listing_status_events_listing",
			sql: `ALTER TABLE listing_status_events ADD CONSTRAINT fk_listing_status_events_listing
				  FOREIGN KEY (listing_id) REFERENCES listings(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
	}

	for _, constraint := range constraints {
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		if err := db.Raw(checkSQL, constraint.name).Scan(&exists).Error; err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if exists {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
			continue
		}
		if err := db.Exec(constraint.sql).Error; err != nil {
			logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
		} else {
			logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
		}
	}
}
