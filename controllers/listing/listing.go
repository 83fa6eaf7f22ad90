package listing

import (
	"errors"
	"fmt"
	"io"
	"time"

	"scrap-collect/controllers/apierror"
	"scrap-collect/logger"
	"scrap-collect/middleware"
	listingModel "scrap-collect/models/listing"
	"scrap-collect/services/lifecycle"
	"scrap-collect/services/upload"
	"scrap-collect/types"
	listingTypes "scrap-collect/types/listing"
	"scrap-collect/utils"

	"github.com/gofiber/fiber/v2"
)

type ListingController struct {
	Manager        *lifecycle.Manager
	Uploads        *upload.Service
	loggerInstance *logger.AsyncLogger
	now            func() time.Time
}

func NewListingController(manager *lifecycle.Manager, uploads *upload.Service, asyncLogger *logger.AsyncLogger) *ListingController {
	return &ListingController{
		Manager:        manager,
		Uploads:        uploads,
		loggerInstance: asyncLogger,
		now:            time.Now,
	}
}

func (lc *ListingController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	lc.loggerInstance.Log(logEntry)
}

func (lc *ListingController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	lc.logAPIRequest(c)
	return result
}

func (lc *ListingController) sendError(c *fiber.Ctx, err error) error {
	status := apierror.Status(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("Listing request failed", err)
	}
	return lc.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: apierror.Message(err),
		Data:    nil,
	})
}

func (lc *ListingController) unauthenticated(c *fiber.Ctx) error {
	return lc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: "Authentication required",
		Data:    nil,
	})
}

// Store creates a PENDING listing for the calling seller
func (lc *ListingController) Store(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	var req listingTypes.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if err := req.Validate(); err != nil {
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	listing, err := lc.Manager.CreateListing(c.UserContext(), caller, lifecycle.CreateListingInput{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		EstimatedKg: req.EstimatedKg,
		Location:    req.Location.ToModel(),
		Images:      req.Images,
	})
	if err != nil {
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Listing created successfully",
		Data:    listingTypes.NewListingResponse(listing),
	})
}

// Index returns the listings visible to the caller, newest first
func (lc *ListingController) Index(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	filter := lifecycle.ListFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = listingModel.Status(status)
		if !filter.Status.IsValid() {
			return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: fmt.Sprintf("Unknown status %q", status),
				Data:    nil,
			})
		}
	}

	listings, err := lc.Manager.ListVisibleListings(c.UserContext(), caller, filter)
	if err != nil {
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Listings retrieved successfully",
		Data:    listingTypes.NewListingResponses(listings),
	})
}

func (lc *ListingController) Show(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	listing, err := lc.Manager.GetListing(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Listing retrieved successfully",
		Data:    listingTypes.NewListingResponse(listing),
	})
}

// History lists the status transitions of one listing
func (lc *ListingController) History(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	events, err := lc.Manager.ListingHistory(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Listing history retrieved successfully",
		Data:    events,
	})
}

// Schedule books a pickup and assigns the caller as dispatcher
func (lc *ListingController) Schedule(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	var req listingTypes.SchedulePickupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body, pickup_at must be RFC3339",
			Data:    nil,
		})
	}

	if err := req.Validate(lc.now()); err != nil {
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	listing, err := lc.Manager.SchedulePickup(c.UserContext(), caller, c.Params("id"), req.PickupAt)
	if err != nil {
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Pickup scheduled successfully",
		Data:    listingTypes.NewListingResponse(listing),
	})
}

// Collect records the weighed quantity and pays the seller
func (lc *ListingController) Collect(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	var req listingTypes.CollectRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if err := req.Validate(); err != nil {
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	listing, err := lc.Manager.MarkCollected(c.UserContext(), caller, c.Params("id"), req.ActualKg)
	if err != nil {
		var payoutErr *lifecycle.PayoutError
		if errors.As(err, &payoutErr) {
			logger.Warning(fmt.Sprintf("Payout for listing %s failed: %s", payoutErr.ListingID, payoutErr.Message))
		}
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Listing collected and payout completed",
		Data:    listingTypes.NewListingResponse(listing),
	})
}

func (lc *ListingController) Cancel(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	listing, err := lc.Manager.CancelListing(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Listing cancelled successfully",
		Data:    listingTypes.NewListingResponse(listing),
	})
}

// UploadImage stores one listing photo and returns its reference
func (lc *ListingController) UploadImage(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return lc.unauthenticated(c)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "An image file is required in the 'image' field",
			Data:    nil,
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if err := upload.ValidateImage(mimeType, fileHeader.Size); err != nil {
		return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded image", err)
		return lc.sendError(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded image", err)
		return lc.sendError(c, err)
	}

	stored, err := lc.Uploads.SaveListingImage(caller.ID, fileHeader.Filename, mimeType, data)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrEmpty) {
			return lc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
				Data:    nil,
			})
		}
		return lc.sendError(c, err)
	}

	return lc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Image uploaded successfully",
		Data:    stored,
	})
}
