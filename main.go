package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scrap-collect/config"
	"scrap-collect/database"
	"scrap-collect/database/seeders"
	"scrap-collect/logger"
	"scrap-collect/middleware"
	"scrap-collect/routes"
	"scrap-collect/services/analytics"
	"scrap-collect/services/assessment"
	"scrap-collect/services/lifecycle"
	"scrap-collect/services/listing_store"
	"scrap-collect/services/notification"
	"scrap-collect/services/payout"
	"scrap-collect/services/pricing"
	"scrap-collect/services/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	if err := logger.Setup("log/app"); err != nil {
		logger.Error("Failed to set up file logging", err)
	}

	cfg := config.Load()
	ctx := context.Background()

	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       50 * 1024 * 1024, // 50MB body limit
	})

	db, err := database.InitDB(cfg.DB)
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return
	}

	prices := pricing.NewStaticTable()
	if cfg.SeedFixtures {
		if err := seeders.SeedFixtures(ctx, db, prices); err != nil {
			logger.Error("Failed to seed fixtures", err)
			return
		}
	}

	payouts, err := payout.NewFromConfig(cfg.Payout)
	if err != nil {
		logger.Error("Failed to configure payouts", err)
		return
	}
	notifier, err := notification.NewFromConfig(cfg.SMS)
	if err != nil {
		logger.Error("Failed to configure notifications", err)
		return
	}

	var analyzer assessment.Analyzer
	if cfg.GeminiAPIKey != "" {
		gemini, err := assessment.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to create Gemini analyzer, assessments disabled", err)
		} else {
			analyzer = gemini
		}
	} else {
		logger.Warning("GEMINI_API_KEY not set, material assessments disabled")
	}

	if cfg.JWTSecret == "" && cfg.PublicKeyURL == "" {
		logger.Fatal("Either JWT_SECRET or PUBLIC_KEY_URL must be set")
	}

	store := listing_store.NewGormStore(db)
	deps := routes.Dependencies{
		DB:          db,
		Verifier:    middleware.NewTokenVerifier(cfg.JWTSecret, cfg.PublicKeyURL),
		Manager:     lifecycle.NewManager(store, store, prices, payouts, notifier),
		Prices:      prices,
		Uploads:     upload.NewService(cfg.UploadDir),
		Analytics:   analytics.NewService(store),
		Assessments: assessment.NewService(db, analyzer, prices),
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.FrontendURL != "*",
	}))

	asyncLogger := routes.SetupRoutes(app, deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Server shutdown failed", err)
		}
	}()

	logger.Success("Server is running on ip: " + cfg.AppHost + " port: " + cfg.AppPort +
		"\n\t\t\t\t\t\t******************************************************************************************\n")
	if err := app.Listen(cfg.AppHost + ":" + cfg.AppPort); err != nil {
		logger.Error("Server stopped", err)
	}
	asyncLogger.Close()
}
