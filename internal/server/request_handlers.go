package server

import (
	"encoding/json"

	"refugio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitRequest handles POST /api/animals/:id/request
func (s *Server) SubmitRequest(c *fiber.Ctx) error {
	animalID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := c.Locals("userID").(uint)

	var req struct {
		AdoptionForm json.RawMessage `json:"adoption_form"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	request, created, err := s.requestService.Submit(c.Context(), userID, animalID, req.AdoptionForm)
	if err != nil {
		return respondServiceError(c, err)
	}

	status := fiber.StatusOK
	message := "Solicitud actualizada"
	if created {
		status = fiber.StatusCreated
		message = "Solicitud enviada"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"request": request,
	})
}

// GetAnimalRequests handles GET /api/animals/:animalId/requests
func (s *Server) GetAnimalRequests(c *fiber.Ctx) error {
	animalID, err := s.parseID(c, "animalId")
	if err != nil {
		return nil
	}

	requests, err := s.requestService.ListForAnimal(c.Context(), animalID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// RejectRequest handles DELETE /api/animals/:animalId/requests/:username/delete
func (s *Server) RejectRequest(c *fiber.Ctx) error {
	animalID, err := s.parseID(c, "animalId")
	if err != nil {
		return nil
	}
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	caller, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.requestService.Reject(c.Context(), caller, animalID, username); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Solicitud eliminada"})
}

// CancelRequest handles DELETE /api/users/animals/request/:id/delete
func (s *Server) CancelRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := c.Locals("userID").(uint)

	if err := s.requestService.Cancel(c.Context(), userID, requestID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Solicitud cancelada"})
}
