package routes

import (
	"time"

	"scrap-collect/constants"
	analyticsController "scrap-collect/controllers/analytics"
	assessmentController "scrap-collect/controllers/assessment"
	listingController "scrap-collect/controllers/listing"
	pricingController "scrap-collect/controllers/pricing"
	"scrap-collect/controllers/user"
	"scrap-collect/logger"
	"scrap-collect/middleware"
	"scrap-collect/services/analytics"
	"scrap-collect/services/assessment"
	"scrap-collect/services/lifecycle"
	"scrap-collect/services/pricing"
	"scrap-collect/services/upload"
	"scrap-collect/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies are the wired services the HTTP layer serves
type Dependencies struct {
	DB          *gorm.DB
	Verifier    *middleware.TokenVerifier
	Manager     *lifecycle.Manager
	Prices      *pricing.StaticTable
	Uploads     *upload.Service
	Analytics   *analytics.Service
	Assessments *assessment.Service
}

// SetupRoutes registers every route and starts the request logger.
// The returned logger must be closed on shutdown.
func SetupRoutes(app *fiber.App, deps Dependencies) *logger.AsyncLogger {
	asyncLogger := logger.NewAsyncLogger(deps.DB)
	listingCtrl := listingController.NewListingController(deps.Manager, deps.Uploads, asyncLogger)
	analyticsCtrl := analyticsController.NewAnalyticsController(deps.Analytics, asyncLogger)
	assessmentCtrl := assessmentController.NewAssessmentController(deps.Assessments, asyncLogger)
	pricingCtrl := pricingController.NewPricingController(deps.Prices)
	userCtrl := user.NewUserController(deps.DB)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Static("/uploads", deps.Uploads.UploadDir)

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(types.ApiResponse{
			Message: "ok",
			Status:  fiber.StatusOK,
			Data:    fiber.Map{"time": time.Now().UTC()},
		})
	})

	/*=============================================================================
	| Protected Routes
	===============================================================================*/
	protected := api.Group("", middleware.IsAuthenticated(deps.Verifier))
	protected.Get("/auth/profile", userCtrl.Profile)
	protected.Get("/pricing", pricingCtrl.Index)
	protected.Post("/assessments", assessmentCtrl.Assess)

	/*=============================================================================
	| Listing Routes
	===============================================================================*/
	listings := protected.Group("/listings")
	listings.Post("/", middleware.RequireRoles(constants.SellerRoles...), listingCtrl.Store)
	listings.Get("/", listingCtrl.Index)
	listings.Get("/:id", listingCtrl.Show)
	listings.Get("/:id/history", listingCtrl.History)
	listings.Post("/:id/schedule", middleware.RequireRoles(constants.StaffRoles...), listingCtrl.Schedule)
	listings.Post("/:id/collect", middleware.RequireRoles(constants.StaffRoles...), listingCtrl.Collect)
	listings.Post("/:id/cancel", listingCtrl.Cancel)

	protected.Post("/uploads/images", middleware.RequireRoles(constants.SellerRoles...), listingCtrl.UploadImage)

	/*=============================================================================
	| Dashboard Routes
	===============================================================================*/
	dashboard := protected.Group("/dashboard", middleware.RequireRoles(constants.StaffRoles...))
	dashboard.Get("/analytics", analyticsCtrl.Monthly)

	return asyncLogger
}
