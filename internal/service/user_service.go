package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"refugio/internal/cache"
	"refugio/internal/config"
	"refugio/internal/mailer"
	"refugio/internal/models"
	"refugio/internal/repository"
	"refugio/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// RoleAdoptante is the default self-service role.
	RoleAdoptante = "adoptante"
	// RoleProtectora registers a shelter pending admin approval.
	RoleProtectora = "protectora"

	passwordResetTTL       = 30 * time.Minute
	passwordResetKeyPrefix = "pwreset:"
)

// UserService provides registration, profile and account-recovery logic.
type UserService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	animalRepo  repository.AnimalRepository
	requestRepo repository.RequestRepository
	mail        mailer.Mailer
	cfg         *config.Config
}

// NewUserService returns a new UserService.
func NewUserService(db *gorm.DB, userRepo repository.UserRepository, profileRepo repository.ProfileRepository, animalRepo repository.AnimalRepository, requestRepo repository.RequestRepository, mail mailer.Mailer, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		animalRepo:  animalRepo,
		requestRepo: requestRepo,
		mail:        mail,
		cfg:         cfg,
	}
}

// RegisterInput carries a registration payload.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Register creates the account. Adopters come out active and ready to log in.
// Shelters come out staff but inactive, with a pending approval record, and
// the platform admin is emailed to review them. User, profile and approval
// rows are written in one transaction.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	role := in.Role
	if role == "" {
		role = RoleAdoptante
	}
	if role != RoleAdoptante && role != RoleProtectora {
		return nil, models.NewValidationError("Role must be adoptante or protectora")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsStaff:   role == RoleProtectora,
		IsActive:  role == RoleAdoptante,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.AdopterProfile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		if role == RoleProtectora {
			approval := &models.ProtectoraApproval{UserID: user.ID}
			if err := tx.Create(approval).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if role == RoleProtectora && s.cfg.AdminEmail != "" {
		mailer.SendAsync(ctx, s.mail, s.cfg.AdminEmail,
			"Nueva protectora pendiente de aprobación",
			fmt.Sprintf("<p>La protectora <strong>%s</strong> (%s) espera aprobación.</p>", user.Username, user.Email),
		)
	}

	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password read
// the same to the caller. Inactive accounts are rejected with the pending
// approval message regardless of why they are inactive.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Tu cuenta está pendiente de aprobación.")
	}
	return user, nil
}

// ProfilePayload is the role-shaped response of the profile endpoint.
type ProfilePayload struct {
	User       *models.User             `json:"user"`
	Role       string                   `json:"role"`
	Profile    *models.AdopterProfile   `json:"profile,omitempty"`
	Favorites  []models.Animal          `json:"favorites,omitempty"`
	Adopted    []models.Animal          `json:"adopted"`
	Requests   []models.AdoptionRequest `json:"requests,omitempty"`
	EnAdopcion []models.Animal          `json:"en_adopcion,omitempty"`
}

// Profile assembles the caller's profile payload. Adopters see their profile,
// favorites, adopted animals and open requests. Shelters see their listings
// split into in-adoption and adopted.
func (s *UserService) Profile(ctx context.Context, userID uint) (*ProfilePayload, error) {
	user, err := s.userRepo.GetByIDFull(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := &ProfilePayload{User: user, Role: user.Role()}

	if user.IsStaff {
		all, err := s.animalRepo.ListByOwner(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		adopted := make([]models.Animal, 0)
		enAdopcion := make([]models.Animal, 0)
		for _, a := range all {
			if a.Available() {
				enAdopcion = append(enAdopcion, a)
			} else {
				adopted = append(adopted, a)
			}
		}
		payload.EnAdopcion = enAdopcion
		payload.Adopted = adopted
		return payload, nil
	}

	payload.Profile = user.Profile
	if user.Profile != nil {
		payload.Favorites = user.Profile.Favorites
	}

	adopted, err := s.animalRepo.ListAdoptedByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	payload.Adopted = adopted

	requests, err := s.requestRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	payload.Requests = requests

	return payload, nil
}

// UpdateProfileInput carries the updatable profile fields. Nil means the
// field was absent from the payload.
type UpdateProfileInput struct {
	Location    *string
	PhoneNumber *string
	Bio         *string
	Avatar      *string
}

// UpdateProfile applies a partial update and returns the fresh payload.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*ProfilePayload, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Location != nil {
		profile.Location = *in.Location
	}
	if in.PhoneNumber != nil {
		profile.PhoneNumber = *in.PhoneNumber
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Avatar != nil {
		profile.Avatar = *in.Avatar
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// AdoptionForm returns the stored reusable adoption form.
func (s *UserService) AdoptionForm(ctx context.Context, userID uint) (models.JSONMap, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.AdoptionForm == nil {
		return models.JSONMap{}, nil
	}
	return profile.AdoptionForm, nil
}

// SetAdoptionForm replaces the stored form after object-shape validation.
func (s *UserService) SetAdoptionForm(ctx context.Context, userID uint, raw json.RawMessage) (models.JSONMap, error) {
	form, err := models.DecodeJSONObject(raw)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.AdoptionForm = form
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return form, nil
}

// AddFavorite marks the animal as a favorite and returns the refreshed list.
// Adding twice is a no-op.
func (s *UserService) AddFavorite(ctx context.Context, userID, animalID uint) ([]models.Animal, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	animal, err := s.animalRepo.GetVisible(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.AddFavorite(ctx, profile.ID, animal); err != nil {
		return nil, err
	}
	return s.profileRepo.ListFavorites(ctx, profile.ID)
}

// RemoveFavorite removes the animal from the caller's favorites and returns
// the refreshed list.
func (s *UserService) RemoveFavorite(ctx context.Context, userID, animalID uint) ([]models.Animal, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	animal, err := s.animalRepo.GetByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.RemoveFavorite(ctx, profile.ID, animal); err != nil {
		return nil, err
	}
	return s.profileRepo.ListFavorites(ctx, profile.ID)
}

// ListAdopters returns active non-staff accounts for the public listing.
func (s *UserService) ListAdopters(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdopters(ctx)
}

// Search finds active users by username substring, excluding the caller.
// An empty query returns an empty list rather than everyone.
func (s *UserService) Search(ctx context.Context, query string, callerID uint) ([]models.User, error) {
	if query == "" {
		return []models.User{}, nil
	}
	return s.userRepo.Search(ctx, query, callerID, 50)
}

// PublicProfile returns another user's profile with their role.
func (s *UserService) PublicProfile(ctx context.Context, id uint) (*ProfilePayload, error) {
	user, err := s.userRepo.GetByIDFull(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProfilePayload{User: user, Role: user.Role(), Profile: user.Profile}, nil
}

// RequestPasswordReset stores a single-use token and emails the reset link.
// The response is identical whether or not the address exists, so the
// endpoint cannot be used to probe for accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return err
	}

	client := cache.GetClient()
	if client == nil {
		return models.NewInternalError(fmt.Errorf("redis unavailable"))
	}

	token := uuid.New().String()
	key := passwordResetKeyPrefix + token
	if err := client.Set(ctx, key, user.ID, passwordResetTTL).Err(); err != nil {
		return models.NewInternalError(err)
	}

	link := fmt.Sprintf("%s/password-reset/%s", s.cfg.FrontendURL, token)
	mailer.SendAsync(ctx, s.mail, user.Email,
		"Restablece tu contraseña",
		fmt.Sprintf("<p>Para restablecer tu contraseña, visita <a href=%q>%s</a>. El enlace caduca en 30 minutos.</p>", link, link),
	)
	return nil
}

// ConfirmPasswordReset consumes the token and sets the new password. GETDEL
// makes the token single-use even under concurrent confirmation attempts.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	client := cache.GetClient()
	if client == nil {
		return models.NewInternalError(fmt.Errorf("redis unavailable"))
	}

	val, err := client.GetDel(ctx, passwordResetKeyPrefix+token).Result()
	if err != nil || val == "" {
		return models.NewValidationError("Invalid or expired reset token")
	}

	var userID uint
	if _, err := fmt.Sscanf(val, "%d", &userID); err != nil {
		return models.NewValidationError("Invalid or expired reset token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}
