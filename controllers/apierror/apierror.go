package apierror

import (
	"errors"

	"scrap-collect/services/lifecycle"

	"github.com/gofiber/fiber/v2"
)

// Status maps a lifecycle error to its HTTP status code
func Status(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, lifecycle.ErrListingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, lifecycle.ErrPayout):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Message is safe to show to the client; internal errors are not echoed.
func Message(err error) string {
	if Status(err) == fiber.StatusInternalServerError {
		return "Something went wrong, please try again"
	}
	return err.Error()
}
