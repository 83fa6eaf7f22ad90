package user

import (
	"errors"

	"scrap-collect/logger"
	"scrap-collect/middleware"
	userModel "scrap-collect/models/user"
	"scrap-collect/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Profile returns the authenticated caller and, when known locally, their account record
func (uc *UserController) Profile(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Invalid token data",
			Status:  fiber.StatusUnauthorized,
			Data:    nil,
		})
	}

	profile := fiber.Map{
		"id":   caller.ID,
		"role": caller.Role,
	}

	var user userModel.User
	err := uc.DB.WithContext(c.UserContext()).Where("id = ?", caller.ID).First(&user).Error
	switch {
	case err == nil:
		profile["email"] = user.Email
		profile["name"] = user.Name
		profile["phone"] = user.Phone
		profile["created_at"] = user.CreatedAt.Format("2006-01-02 15:04:05")
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Debug("Authenticated caller has no local account: " + caller.ID)
	default:
		logger.Error("Error fetching user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Error fetching user",
			Status:  fiber.StatusInternalServerError,
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "User fetched successfully",
		Status:  fiber.StatusOK,
		Data:    profile,
	})
}
