package service

import (
	"context"
	"log/slog"

	"refugio/internal/middleware"
	"refugio/internal/models"
	"refugio/internal/repository"
)

// ModerationService provides the superuser account-moderation workflow.
// State errors keep the Spanish detail strings the frontend renders as-is.
type ModerationService struct {
	userRepo repository.UserRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(userRepo repository.UserRepository) *ModerationService {
	return &ModerationService{userRepo: userRepo}
}

// ValidateProtectora approves a pending shelter account: the target must be
// staff and inactive. Activation and approval are committed together.
func (s *ModerationService) ValidateProtectora(ctx context.Context, targetID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff || user.IsActive {
		return nil, models.NewValidationError("El usuario no es una protectora pendiente de aprobación")
	}

	if err := s.userRepo.ApproveProtectora(ctx, targetID); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "protectora approved",
		slog.Uint64("user_id", uint64(targetID)),
		slog.String("username", user.Username),
	)
	return s.userRepo.GetByID(ctx, targetID)
}

// Block deactivates the account. Blocking hides the shelter's animals from
// the catalog but leaves its approval record untouched, so a later unblock
// restores the account as it was.
func (s *ModerationService) Block(ctx context.Context, callerID, targetID uint) (*models.User, error) {
	if callerID == targetID {
		return nil, models.NewValidationError("No puedes bloquearte a ti mismo")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewValidationError("Usuario ya bloqueado")
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user blocked",
		slog.Uint64("user_id", uint64(targetID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Unblock reactivates the account. An approved shelter comes straight back;
// a still-pending one would remain gated by its approval record, but pending
// shelters cannot be blocked in the first place.
func (s *ModerationService) Unblock(ctx context.Context, targetID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return nil, models.NewValidationError("Usuario ya activo")
	}

	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user unblocked",
		slog.Uint64("user_id", uint64(targetID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

// DeleteUser permanently removes the account. Foreign keys cascade: the
// shelter's animals and everyone's requests, profile and approval go with it.
func (s *ModerationService) DeleteUser(ctx context.Context, callerID, targetID uint) error {
	if callerID == targetID {
		return models.NewValidationError("No puedes eliminar tu propia cuenta")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "user deleted",
		slog.Uint64("user_id", uint64(targetID)),
		slog.String("username", user.Username),
	)
	return nil
}

// BlockedUsers lists accounts deactivated by moderation.
func (s *ModerationService) BlockedUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListBlocked(ctx)
}

// PendingProtectoras lists shelter accounts waiting for approval.
func (s *ModerationService) PendingProtectoras(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListPendingProtectoras(ctx)
}
