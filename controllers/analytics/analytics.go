package analytics

import (
	"fmt"
	"time"

	"scrap-collect/controllers/apierror"
	"scrap-collect/logger"
	"scrap-collect/middleware"
	analyticsService "scrap-collect/services/analytics"
	"scrap-collect/types"
	"scrap-collect/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Service        *analyticsService.Service
	loggerInstance *logger.AsyncLogger
	now            func() time.Time
}

func NewAnalyticsController(service *analyticsService.Service, asyncLogger *logger.AsyncLogger) *AnalyticsController {
	return &AnalyticsController{Service: service, loggerInstance: asyncLogger, now: time.Now}
}

func (ac *AnalyticsController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	ac.loggerInstance.Log(logEntry)
}

func (ac *AnalyticsController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	ac.logAPIRequest(c)
	return result
}

// Monthly returns the dashboard summary for ?month=YYYY-MM, defaulting to the current month
func (ac *AnalyticsController) Monthly(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return ac.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Authentication required",
			Data:    nil,
		})
	}

	at := ac.now().UTC()
	if month := c.Query("month"); month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, time.UTC)
		if err != nil {
			return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: fmt.Sprintf("month must be in YYYY-MM format, got %q", month),
				Data:    nil,
			})
		}
		at = parsed
	}

	summary, err := ac.Service.MonthlySummary(c.UserContext(), caller, at)
	if err != nil {
		status := apierror.Status(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("Failed to build monthly summary", err)
		}
		return ac.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apierror.Message(err),
			Data:    nil,
		})
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Analytics retrieved successfully",
		Data:    summary,
	})
}
