package main

import (
	"context"
	"fmt"
	"os"

	"scrap-collect/config"
	"scrap-collect/database"
	"scrap-collect/database/seeders"
	"scrap-collect/services/pricing"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/migrate.go migrate  - Create or update the schema")
		fmt.Println("  go run tools/migrate.go seed     - Migrate and insert development fixtures")
		return
	}

	command := os.Args[1]
	cfg := config.Load()

	switch command {
	case "migrate":
		fmt.Println("🚀 Running database migrations...")
		if _, err := database.InitDB(cfg.DB); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Migration completed successfully!")

	case "seed":
		db, err := database.InitDB(cfg.DB)
		if err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("🌱 Seeding development fixtures...")
		if err := seeders.SeedFixtures(context.Background(), db, pricing.NewStaticTable()); err != nil {
			fmt.Printf("❌ Seeding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Seeding completed successfully!")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: migrate, seed")
	}
}
