package repository

import (
	"context"
	"errors"

	"refugio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository defines persistence operations for adoption requests.
type RequestRepository interface {
	Upsert(ctx context.Context, request *models.AdoptionRequest) (created bool, err error)
	GetByID(ctx context.Context, id uint) (*models.AdoptionRequest, error)
	ListByAnimal(ctx context.Context, animalID uint) ([]models.AdoptionRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.AdoptionRequest, error)
	DeleteByAnimalAndUser(ctx context.Context, animalID, userID uint) error
	Delete(ctx context.Context, id uint) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new RequestRepository implementation.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Upsert inserts the request or, when the (user, animal) pair already exists,
// replaces its form payload. The conflict clause rides on the composite unique
// index, so two concurrent submissions can never produce two rows. The row is
// read back after the write because the conflict path leaves the struct with a
// zero ID and insert timestamps. The created flag comes from the stored
// timestamps: only an untouched insert has created_at equal to updated_at.
func (r *requestRepository) Upsert(ctx context.Context, request *models.AdoptionRequest) (bool, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "animal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"form_data", "updated_at"}),
		}).
		Create(request).Error; err != nil {
		return false, models.NewInternalError(err)
	}

	var stored models.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND animal_id = ?", request.UserID, request.AnimalID).
		First(&stored).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	*request = stored
	return stored.CreatedAt.Equal(stored.UpdatedAt), nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.AdoptionRequest, error) {
	var request models.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Animal").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("AdoptionRequest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) ListByAnimal(ctx context.Context, animalID uint) ([]models.AdoptionRequest, error) {
	var requests []models.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Where("animal_id = ?", animalID).
		Preload("User").
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) ListByUser(ctx context.Context, userID uint) ([]models.AdoptionRequest, error) {
	var requests []models.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Animal").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

// DeleteByAnimalAndUser removes the pair's request. Deleting a request that
// does not exist reads as not found so rejection endpoints can 404.
func (r *requestRepository) DeleteByAnimalAndUser(ctx context.Context, animalID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("animal_id = ? AND user_id = ?", animalID, userID).
		Delete(&models.AdoptionRequest{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("AdoptionRequest", animalID)
	}
	return nil
}

func (r *requestRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.AdoptionRequest{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("AdoptionRequest", id)
	}
	return nil
}
