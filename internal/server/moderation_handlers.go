package server

import (
	"github.com/gofiber/fiber/v2"
)

// ValidateProtectora handles PUT /api/users/admin/validate-protectora/:id
func (s *Server) ValidateProtectora(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.moderationService.ValidateProtectora(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Protectora aprobada",
		"user":    user,
	})
}

// BlockUser handles PUT /api/users/admin/block/:id
func (s *Server) BlockUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	callerID := c.Locals("userID").(uint)

	user, err := s.moderationService.Block(c.Context(), callerID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Usuario bloqueado",
		"user":    user,
	})
}

// UnblockUser handles PUT /api/users/admin/unblock/:id
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.moderationService.Unblock(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Usuario desbloqueado",
		"user":    user,
	})
}

// DeleteUser handles DELETE /api/users/admin/delete/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	callerID := c.Locals("userID").(uint)

	if err := s.moderationService.DeleteUser(c.Context(), callerID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Usuario eliminado"})
}

// GetBlockedUsers handles GET /api/users/admin/blocked-users
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	users, err := s.moderationService.BlockedUsers(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetPendingProtectoras handles GET /api/users/admin/pending-protectoras
func (s *Server) GetPendingProtectoras(c *fiber.Ctx) error {
	users, err := s.moderationService.PendingProtectoras(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
