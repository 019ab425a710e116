package repository

import (
	"context"

	"refugio/internal/models"

	"gorm.io/gorm"
)

// DonationRepository defines persistence operations for donations.
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	List(ctx context.Context, limit, offset int) ([]models.Donation, error)
}

type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository returns a new DonationRepository implementation.
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *donationRepository) List(ctx context.Context, limit, offset int) ([]models.Donation, error) {
	var donations []models.Donation
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&donations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return donations, nil
}
