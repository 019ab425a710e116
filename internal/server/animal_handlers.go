package server

import (
	"encoding/json"

	"refugio/internal/models"
	"refugio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAnimals handles GET /api/animals
func (s *Server) GetAnimals(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	animals, err := s.animalService.List(c.Context(), service.ListInput{
		Search:  c.Query("search"),
		UserLat: c.Query("user_lat"),
		UserLng: c.Query("user_lng"),
		Radius:  c.Query("distance"),
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"animals": animals,
		"count":   len(animals),
	})
}

// GetAnimal handles GET /api/animals/:id
func (s *Server) GetAnimal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	animal, err := s.animalService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(animal)
}

// CreateAnimal handles POST /api/animals
func (s *Server) CreateAnimal(c *fiber.Ctx) error {
	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var animal models.Animal
	if err := c.BodyParser(&animal); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if animal.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	if err := s.animalService.Create(c.Context(), caller.ID, &animal); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(animal)
}

// UpdateAnimal handles PATCH /api/animals/:id. The payload is decoded as a
// raw field map so an explicit "adopter": null can be told apart from an
// absent key.
func (s *Server) UpdateAnimal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	animal, err := s.animalService.Update(c.Context(), caller, id, fields)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(animal)
}

// DeleteAnimal handles DELETE /api/animals/:id
func (s *Server) DeleteAnimal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.animalService.Delete(c.Context(), caller, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetDashboardAnimals handles GET /api/animals/protectora/animals
func (s *Server) GetDashboardAnimals(c *fiber.Ctx) error {
	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	rows, err := s.animalService.DashboardAnimals(c.Context(), caller.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"animals": rows})
}

// GetDashboardAdopted handles GET /api/animals/protectora/adopted
func (s *Server) GetDashboardAdopted(c *fiber.Ctx) error {
	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	animals, err := s.animalService.DashboardAdopted(c.Context(), caller.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"animals": animals})
}

// GetDashboardMetrics handles GET /api/animals/protectora/metrics
func (s *Server) GetDashboardMetrics(c *fiber.Ctx) error {
	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	metrics, err := s.animalService.Metrics(c.Context(), caller.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(metrics)
}

// GetMonthlyAdoptions handles GET /api/animals/protectora/monthly-adoptions
func (s *Server) GetMonthlyAdoptions(c *fiber.Ctx) error {
	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	buckets, err := s.animalService.MonthlyAdoptions(c.Context(), caller.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"monthly_adoptions": buckets})
}

// GetTopRequested handles GET /api/animals/protectora/top-requested
func (s *Server) GetTopRequested(c *fiber.Ctx) error {
	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	rows, err := s.animalService.TopRequested(c.Context(), caller.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	type topRow struct {
		Animal       models.Animal `json:"animal"`
		RequestCount int64         `json:"request_count"`
	}
	out := make([]topRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, topRow{Animal: r.Animal, RequestCount: r.RequestCount})
	}
	return c.JSON(fiber.Map{"top_requested": out})
}
