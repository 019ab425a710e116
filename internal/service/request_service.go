package service

import (
	"context"
	"encoding/json"
	"fmt"

	"refugio/internal/mailer"
	"refugio/internal/middleware"
	"refugio/internal/models"
	"refugio/internal/repository"
)

// RequestService provides adoption-request business logic.
type RequestService struct {
	requestRepo repository.RequestRepository
	animalRepo  repository.AnimalRepository
	userRepo    repository.UserRepository
	mail        mailer.Mailer
}

// NewRequestService returns a new RequestService.
func NewRequestService(requestRepo repository.RequestRepository, animalRepo repository.AnimalRepository, userRepo repository.UserRepository, mail mailer.Mailer) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		animalRepo:  animalRepo,
		userRepo:    userRepo,
		mail:        mail,
	}
}

// Submit records or refreshes the caller's request for the animal. Returns
// created=true on first submission, false when an existing request had its
// form replaced. The shelter gets a best-effort email on new requests.
func (s *RequestService) Submit(ctx context.Context, userID, animalID uint, rawForm json.RawMessage) (*models.AdoptionRequest, bool, error) {
	form, err := models.DecodeJSONObject(rawForm)
	if err != nil {
		return nil, false, err
	}

	animal, err := s.animalRepo.GetVisible(ctx, animalID)
	if err != nil {
		return nil, false, err
	}
	if !animal.Available() {
		return nil, false, models.NewConflictError("This animal has already been adopted")
	}

	request := &models.AdoptionRequest{
		UserID:   userID,
		AnimalID: animalID,
		FormData: form,
	}
	created, err := s.requestRepo.Upsert(ctx, request)
	if err != nil {
		return nil, false, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
		s.notifyOwner(ctx, animal, userID)
	}
	middleware.AdoptionRequestsSubmitted.WithLabelValues(outcome).Inc()

	return request, created, nil
}

func (s *RequestService) notifyOwner(ctx context.Context, animal *models.Animal, requesterID uint) {
	owner, err := s.userRepo.GetByID(ctx, animal.OwnerID)
	if err != nil {
		return
	}
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return
	}
	mailer.SendAsync(ctx, s.mail, owner.Email,
		fmt.Sprintf("Nueva solicitud de adopción para %s", animal.Name),
		fmt.Sprintf("<p>%s ha enviado una solicitud de adopción para <strong>%s</strong>.</p>", requester.Username, animal.Name),
	)
}

// ListForAnimal returns every request for the animal. Listing stays coarse:
// any authenticated caller sees the queue length for transparency.
func (s *RequestService) ListForAnimal(ctx context.Context, animalID uint) ([]models.AdoptionRequest, error) {
	if _, err := s.animalRepo.GetVisible(ctx, animalID); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByAnimal(ctx, animalID)
}

// Reject removes the named user's request for the animal. Allowed to the
// requester themselves, the animal's owner, and staff. The rejected requester
// is notified by best-effort email.
func (s *RequestService) Reject(ctx context.Context, caller *models.User, animalID uint, username string) error {
	animal, err := s.animalRepo.GetByID(ctx, animalID)
	if err != nil {
		return err
	}

	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundError("User", 0)
	}

	allowed := caller.ID == target.ID ||
		caller.ID == animal.OwnerID ||
		caller.IsStaff || caller.IsSuperuser
	if !allowed {
		return models.NewForbiddenError("You do not have permission to remove this request")
	}

	if err := s.requestRepo.DeleteByAnimalAndUser(ctx, animalID, target.ID); err != nil {
		return err
	}

	if caller.ID != target.ID {
		mailer.SendAsync(ctx, s.mail, target.Email,
			fmt.Sprintf("Solicitud de adopción para %s", animal.Name),
			fmt.Sprintf("<p>Tu solicitud de adopción para <strong>%s</strong> ha sido rechazada.</p>", animal.Name),
		)
	}
	return nil
}

// Cancel deletes the caller's own request by id.
func (s *RequestService) Cancel(ctx context.Context, callerID, requestID uint) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.UserID != callerID {
		return models.NewForbiddenError("You can only cancel your own requests")
	}
	return s.requestRepo.Delete(ctx, requestID)
}
