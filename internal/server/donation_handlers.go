package server

import (
	"refugio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetDonations handles GET /api/donations
func (s *Server) GetDonations(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	donations, err := s.donationService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"donations": donations})
}

// CreateDonation handles POST /api/donations
func (s *Server) CreateDonation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Amount    float64 `json:"cantidad"`
		Anonymous bool    `json:"anonimo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	donation, err := s.donationService.Create(c.Context(), userID, req.Amount, req.Anonymous)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}
