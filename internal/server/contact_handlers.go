package server

import (
	"refugio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitContact handles POST /api/contact
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.contactService.Submit(c.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Mensaje enviado",
		"contact": msg,
	})
}

// GetContactMessages handles GET /api/contact/admin/messages
func (s *Server) GetContactMessages(c *fiber.Ctx) error {
	msgs, err := s.contactService.List(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// GetContactMessage handles GET /api/contact/admin/messages/:id
func (s *Server) GetContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	msg, err := s.contactService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(msg)
}

// DeleteContactMessage handles DELETE /api/contact/admin/messages/:id
func (s *Server) DeleteContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.contactService.Delete(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
