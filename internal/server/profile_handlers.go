package server

import (
	"encoding/json"

	"refugio/internal/models"
	"refugio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	payload, err := s.userService.Profile(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(payload)
}

// UpdateMyProfile handles PUT /api/users/profile/update
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Location    *string `json:"location"`
		PhoneNumber *string `json:"phone_number"`
		Bio         *string `json:"bio"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	payload, err := s.userService.UpdateProfile(c.Context(), userID, service.UpdateProfileInput{
		Location:    req.Location,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(payload)
}

// GetAdoptionForm handles GET /api/users/profile/adoption-form
func (s *Server) GetAdoptionForm(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	form, err := s.userService.AdoptionForm(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"adoption_form": form})
}

// SetAdoptionForm handles PUT /api/users/profile/adoption-form
func (s *Server) SetAdoptionForm(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		AdoptionForm json.RawMessage `json:"adoption_form"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	form, err := s.userService.SetAdoptionForm(c.Context(), userID, req.AdoptionForm)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"adoption_form": form})
}

// AddFavorite handles POST /api/users/favorites/:animalId
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	animalID, err := s.parseID(c, "animalId")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	favorites, err := s.userService.AddFavorite(c.Context(), userID, animalID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Añadido a favoritos",
		"favorites": favorites,
	})
}

// RemoveFavorite handles DELETE /api/users/favorites/:animalId
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	animalID, err := s.parseID(c, "animalId")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	favorites, err := s.userService.RemoveFavorite(c.Context(), userID, animalID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Eliminado de favoritos",
		"favorites": favorites,
	})
}

// GetAdopters handles GET /api/users/adopters
func (s *Server) GetAdopters(c *fiber.Ctx) error {
	users, err := s.userService.ListAdopters(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"adopters": users})
}

// SearchUsers handles GET /api/users/?search=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	users, err := s.userService.Search(c.Context(), c.Query("search"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetPublicProfile handles GET /api/users/:id/profile
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	payload, err := s.userService.PublicProfile(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(payload)
}
