package pricing

import (
	"scrap-collect/services/pricing"
	"scrap-collect/types"

	"github.com/gofiber/fiber/v2"
)

type PricingController struct {
	Prices *pricing.StaticTable
}

func NewPricingController(prices *pricing.StaticTable) *PricingController {
	return &PricingController{Prices: prices}
}

// Index lists the current price per kg for every scrap type
func (pc *PricingController) Index(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Prices retrieved successfully",
		Data:    pc.Prices.Entries(),
	})
}
