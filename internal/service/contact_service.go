package service

import (
	"context"
	"fmt"

	"refugio/internal/config"
	"refugio/internal/mailer"
	"refugio/internal/models"
	"refugio/internal/repository"
	"refugio/internal/validation"
)

// ContactService stores contact-form messages and relays them to the admin.
type ContactService struct {
	contactRepo repository.ContactRepository
	mail        mailer.Mailer
	cfg         *config.Config
}

// NewContactService returns a new ContactService.
func NewContactService(contactRepo repository.ContactRepository, mail mailer.Mailer, cfg *config.Config) *ContactService {
	return &ContactService{contactRepo: contactRepo, mail: mail, cfg: cfg}
}

// Submit validates, stores and relays a contact message. The relay email is
// best-effort; the message is already persisted when it fires.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	if name == "" || email == "" || message == "" {
		return nil, models.NewValidationError("Name, email, and message are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.ContactMessage{Name: name, Email: email, Message: message}
	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.cfg.AdminEmail != "" {
		mailer.SendAsync(ctx, s.mail, s.cfg.AdminEmail,
			fmt.Sprintf("Nuevo mensaje de contacto de %s", name),
			fmt.Sprintf("<p><strong>%s</strong> (%s) escribió:</p><p>%s</p>", name, email, message),
		)
	}
	return msg, nil
}

// List returns stored messages, hiding those sent from blocked accounts.
func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	return s.contactRepo.List(ctx)
}

// Get returns one message; blocked-author messages read as absent.
func (s *ContactService) Get(ctx context.Context, id uint) (*models.ContactMessage, error) {
	return s.contactRepo.GetByID(ctx, id)
}

// Delete removes one message; blocked-author messages read as absent.
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	return s.contactRepo.Delete(ctx, id)
}
