// Package service implements the business logic between handlers and
// repositories.
package service

import (
	"context"
	"encoding/json"

	"refugio/internal/geo"
	"refugio/internal/models"
	"refugio/internal/repository"
)

// AnimalService provides catalog and shelter-dashboard logic.
type AnimalService struct {
	animalRepo  repository.AnimalRepository
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
}

// NewAnimalService returns a new AnimalService.
func NewAnimalService(animalRepo repository.AnimalRepository, userRepo repository.UserRepository, requestRepo repository.RequestRepository) *AnimalService {
	return &AnimalService{
		animalRepo:  animalRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
	}
}

// ListInput carries the catalog listing filters as they arrive from the query
// string. Geofilter params stay raw strings: malformed values disable the
// filter instead of failing the request.
type ListInput struct {
	Search  string
	UserLat string
	UserLng string
	Radius  string
	Limit   int
	Offset  int
}

// List returns available animals from active shelters, optionally narrowed by
// name search and a distance radius around the caller.
func (s *AnimalService) List(ctx context.Context, in ListInput) ([]models.Animal, error) {
	animals, err := s.animalRepo.ListAvailable(ctx, repository.AnimalListOptions{
		Search: in.Search,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, err
	}

	filter, ok := geo.ParseFilter(in.UserLat, in.UserLng, in.Radius)
	if !ok {
		return animals, nil
	}

	filtered := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		if filter.Contains(a.Latitude, a.Longitude) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Get returns the animal when it exists and its owner is active.
func (s *AnimalService) Get(ctx context.Context, id uint) (*models.Animal, error) {
	return s.animalRepo.GetVisible(ctx, id)
}

// Create lists a new animal. Ownership is forced to the caller regardless of
// what the payload claims.
func (s *AnimalService) Create(ctx context.Context, ownerID uint, animal *models.Animal) error {
	animal.ID = 0
	animal.OwnerID = ownerID
	animal.AdopterID = nil
	return s.animalRepo.Create(ctx, animal)
}

// CanModify reports whether the caller may write to the animal.
func CanModify(caller *models.User, animal *models.Animal) bool {
	return caller.IsStaff || caller.IsSuperuser || animal.OwnerID == caller.ID
}

// Update applies a partial update. The "adopter" key is special-cased: a user
// id assigns the adopter and clears that user's pending request atomically,
// an explicit null returns the animal to the catalog.
func (s *AnimalService) Update(ctx context.Context, caller *models.User, id uint, fields map[string]json.RawMessage) (*models.Animal, error) {
	animal, err := s.animalRepo.GetVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(caller, animal) {
		return nil, models.NewForbiddenError("You do not have permission to modify this animal")
	}

	adopterRaw, hasAdopter := fields["adopter"]
	delete(fields, "adopter")

	if len(fields) > 0 {
		if err := applyAnimalFields(animal, fields); err != nil {
			return nil, err
		}
		if err := s.animalRepo.Update(ctx, animal); err != nil {
			return nil, err
		}
	}

	// Adopter assignment runs last so the full-struct save above cannot
	// clobber the freshly written adopter_id.
	if hasAdopter {
		if err := s.applyAdopter(ctx, animal, adopterRaw); err != nil {
			return nil, err
		}
	}

	return s.animalRepo.GetVisible(ctx, id)
}

func (s *AnimalService) applyAdopter(ctx context.Context, animal *models.Animal, raw json.RawMessage) error {
	if string(raw) == "null" {
		return s.animalRepo.ClearAdopter(ctx, animal.ID)
	}

	var adopterID uint
	if err := json.Unmarshal(raw, &adopterID); err != nil {
		return models.NewValidationError("adopter must be a user id or null")
	}
	if _, err := s.userRepo.GetByID(ctx, adopterID); err != nil {
		return err
	}
	return s.animalRepo.AssignAdopter(ctx, animal.ID, adopterID)
}

// applyAnimalFields decodes the remaining payload onto the model. Unknown keys
// are ignored, matching lenient partial-update semantics. Identity fields
// never move through this path.
func applyAnimalFields(animal *models.Animal, fields map[string]json.RawMessage) error {
	id, ownerID, adopterID := animal.ID, animal.OwnerID, animal.AdopterID

	payload, err := json.Marshal(fields)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := json.Unmarshal(payload, animal); err != nil {
		return models.NewValidationError("Invalid animal payload")
	}

	animal.ID, animal.OwnerID, animal.AdopterID = id, ownerID, adopterID
	return nil
}

// Delete removes the animal after an ownership check.
func (s *AnimalService) Delete(ctx context.Context, caller *models.User, id uint) error {
	animal, err := s.animalRepo.GetVisible(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(caller, animal) {
		return models.NewForbiddenError("You do not have permission to delete this animal")
	}
	return s.animalRepo.Delete(ctx, id)
}

// DashboardAnimal is one catalog row in the shelter dashboard, carrying the
// pending request total and the adopter's username when assigned.
type DashboardAnimal struct {
	models.Animal
	RequestCount    int64  `json:"request_count"`
	AdopterUsername string `json:"adopter_username,omitempty"`
}

// DashboardAnimals lists the shelter's own animals with request counts.
func (s *AnimalService) DashboardAnimals(ctx context.Context, ownerID uint) ([]DashboardAnimal, error) {
	animals, err := s.animalRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	counts, err := s.animalRepo.CountPendingRequests(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]DashboardAnimal, 0, len(animals))
	for _, a := range animals {
		row := DashboardAnimal{Animal: a, RequestCount: counts[a.ID]}
		if a.Adopter != nil {
			row.AdopterUsername = a.Adopter.Username
		}
		out = append(out, row)
	}
	return out, nil
}

// DashboardAdopted lists the shelter's animals that found a home.
func (s *AnimalService) DashboardAdopted(ctx context.Context, ownerID uint) ([]models.Animal, error) {
	return s.animalRepo.ListAdoptedByOwner(ctx, ownerID)
}

// DashboardMetrics holds the shelter's headline totals.
type DashboardMetrics struct {
	InAdoption      int64 `json:"in_adoption"`
	Adopted         int64 `json:"adopted"`
	PendingRequests int64 `json:"pending_requests"`
}

// Metrics returns the shelter's headline totals.
func (s *AnimalService) Metrics(ctx context.Context, ownerID uint) (*DashboardMetrics, error) {
	inAdoption, adopted, pending, err := s.animalRepo.OwnerMetrics(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &DashboardMetrics{InAdoption: inAdoption, Adopted: adopted, PendingRequests: pending}, nil
}

// MonthlyAdoptions returns adopted counts for the last 12 months.
func (s *AnimalService) MonthlyAdoptions(ctx context.Context, ownerID uint) ([]repository.MonthlyAdoptionCount, error) {
	return s.animalRepo.MonthlyAdoptions(ctx, ownerID, 12)
}

// TopRequested returns the shelter's five most requested animals.
func (s *AnimalService) TopRequested(ctx context.Context, ownerID uint) ([]repository.AnimalRequestCount, error) {
	return s.animalRepo.TopRequested(ctx, ownerID, 5)
}
