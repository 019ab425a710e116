package repository

import (
	"context"
	"errors"

	"refugio/internal/models"

	"gorm.io/gorm"
)

// ContactRepository defines persistence operations for contact messages.
// Messages sent from the email address of a blocked account are filtered out
// of every read path, so moderators never act on them by accident.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context) ([]models.ContactMessage, error)
	GetByID(ctx context.Context, id uint) (*models.ContactMessage, error)
	Delete(ctx context.Context, id uint) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// blockedEmailFilter excludes messages whose sender email belongs to a
// deactivated account.
func blockedEmailFilter(db *gorm.DB) *gorm.DB {
	return db.Where(
		"email NOT IN (SELECT email FROM users WHERE is_active = ?)", false,
	)
}

func (r *contactRepository) List(ctx context.Context) ([]models.ContactMessage, error) {
	var msgs []models.ContactMessage
	if err := blockedEmailFilter(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := blockedEmailFilter(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("ContactMessage", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *contactRepository) Delete(ctx context.Context, id uint) error {
	// Resolve through the filter first so blocked-author messages 404.
	msg, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.ContactMessage{}, msg.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
