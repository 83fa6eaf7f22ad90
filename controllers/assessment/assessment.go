package assessment

import (
	"errors"
	"io"

	"scrap-collect/logger"
	"scrap-collect/middleware"
	assessmentService "scrap-collect/services/assessment"
	"scrap-collect/services/upload"
	"scrap-collect/types"
	"scrap-collect/utils"

	"github.com/gofiber/fiber/v2"
)

type AssessmentController struct {
	Service        *assessmentService.Service
	loggerInstance *logger.AsyncLogger
}

func NewAssessmentController(service *assessmentService.Service, asyncLogger *logger.AsyncLogger) *AssessmentController {
	return &AssessmentController{Service: service, loggerInstance: asyncLogger}
}

func (ac *AssessmentController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	ac.loggerInstance.Log(logEntry)
}

func (ac *AssessmentController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	ac.logAPIRequest(c)
	return result
}

// Assess suggests a category, title and weight from a material photo.
// The result is advisory; nothing is written to listings.
func (ac *AssessmentController) Assess(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return ac.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Authentication required",
			Data:    nil,
		})
	}

	if !ac.Service.Enabled() {
		return ac.sendResponseWithLog(c, fiber.StatusServiceUnavailable, types.ApiResponse{
			Status:  fiber.StatusServiceUnavailable,
			Message: assessmentService.ErrDisabled.Error(),
			Data:    nil,
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "An image file is required in the 'image' field",
			Data:    nil,
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if err := upload.ValidateImage(mimeType, fileHeader.Size); err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded image", err)
		return ac.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read uploaded image",
			Data:    nil,
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded image", err)
		return ac.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read uploaded image",
			Data:    nil,
		})
	}

	suggestion, err := ac.Service.Assess(c.UserContext(), caller, assessmentService.Image{
		FileName: fileHeader.Filename,
		MimeType: mimeType,
		Data:     data,
	})
	if err != nil {
		status := fiber.StatusBadGateway
		message := "Material assessment failed, please fill in the details manually"
		switch {
		case errors.Is(err, assessmentService.ErrDisabled):
			status = fiber.StatusServiceUnavailable
			message = err.Error()
		case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrTooLarge), errors.Is(err, upload.ErrEmpty):
			status = fiber.StatusBadRequest
			message = err.Error()
		case errors.Is(err, assessmentService.ErrInvalidSuggestion):
			status = fiber.StatusUnprocessableEntity
			message = err.Error()
		}
		return ac.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: message,
			Data:    nil,
		})
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Material assessed successfully",
		Data:    suggestion,
	})
}
