package repository

import (
	"context"
	"errors"

	"refugio/internal/cache"
	"refugio/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for adopter profiles and
// their favorites.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.AdopterProfile, error)
	Create(ctx context.Context, profile *models.AdopterProfile) error
	Update(ctx context.Context, profile *models.AdopterProfile) error
	AddFavorite(ctx context.Context, profileID uint, animal *models.Animal) error
	RemoveFavorite(ctx context.Context, profileID uint, animal *models.Animal) error
	ListFavorites(ctx context.Context, profileID uint) ([]models.Animal, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.AdopterProfile, error) {
	var profile models.AdopterProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Favorites").
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.AdopterProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.AdopterProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, profile.UserID)
	return nil
}

// AddFavorite is idempotent. Appending an association that already exists is
// a no-op at the join table.
func (r *profileRepository) AddFavorite(ctx context.Context, profileID uint, animal *models.Animal) error {
	profile := models.AdopterProfile{ID: profileID}
	if err := r.db.WithContext(ctx).Model(&profile).Association("Favorites").Append(animal); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) RemoveFavorite(ctx context.Context, profileID uint, animal *models.Animal) error {
	profile := models.AdopterProfile{ID: profileID}
	if err := r.db.WithContext(ctx).Model(&profile).Association("Favorites").Delete(animal); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) ListFavorites(ctx context.Context, profileID uint) ([]models.Animal, error) {
	var animals []models.Animal
	profile := models.AdopterProfile{ID: profileID}
	if err := r.db.WithContext(ctx).Model(&profile).Association("Favorites").Find(&animals); err != nil {
		return nil, models.NewInternalError(err)
	}
	return animals, nil
}
