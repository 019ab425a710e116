package service

import (
	"context"

	"refugio/internal/models"
	"refugio/internal/repository"
)

// DonationService provides donation logic.
type DonationService struct {
	donationRepo repository.DonationRepository
}

// NewDonationService returns a new DonationService.
func NewDonationService(donationRepo repository.DonationRepository) *DonationService {
	return &DonationService{donationRepo: donationRepo}
}

// Create records a donation by the caller.
func (s *DonationService) Create(ctx context.Context, userID uint, amount float64, anonymous bool) (*models.Donation, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("La cantidad debe ser mayor que cero")
	}

	donation := &models.Donation{
		UserID:    userID,
		Amount:    amount,
		Anonymous: anonymous,
	}
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

// List returns public donation views, newest first. Anonymous donors show as
// "Anonimo".
func (s *DonationService) List(ctx context.Context, limit, offset int) ([]models.DonationView, error) {
	donations, err := s.donationRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]models.DonationView, 0, len(donations))
	for _, d := range donations {
		views = append(views, d.View())
	}
	return views, nil
}
