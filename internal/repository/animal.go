package repository

import (
	"context"
	"errors"
	"time"

	"refugio/internal/cache"
	"refugio/internal/models"

	"gorm.io/gorm"
)

// AnimalListOptions narrows the public catalog listing.
type AnimalListOptions struct {
	Search string
	Limit  int
	Offset int
}

// MonthlyAdoptionCount is one bucket of the dashboard adoption histogram.
type MonthlyAdoptionCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// AnimalRequestCount pairs an animal with its pending request total.
type AnimalRequestCount struct {
	Animal       models.Animal
	RequestCount int64
}

// AnimalRepository defines persistence operations for animals.
type AnimalRepository interface {
	Create(ctx context.Context, animal *models.Animal) error
	GetByID(ctx context.Context, id uint) (*models.Animal, error)
	GetVisible(ctx context.Context, id uint) (*models.Animal, error)
	ListAvailable(ctx context.Context, opts AnimalListOptions) ([]models.Animal, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Animal, error)
	ListAdoptedByOwner(ctx context.Context, ownerID uint) ([]models.Animal, error)
	ListAdoptedByUser(ctx context.Context, adopterID uint) ([]models.Animal, error)
	Update(ctx context.Context, animal *models.Animal) error
	Delete(ctx context.Context, id uint) error
	AssignAdopter(ctx context.Context, animalID, adopterID uint) error
	ClearAdopter(ctx context.Context, animalID uint) error
	OwnerMetrics(ctx context.Context, ownerID uint) (inAdoption, adopted, pendingRequests int64, err error)
	MonthlyAdoptions(ctx context.Context, ownerID uint, months int) ([]MonthlyAdoptionCount, error)
	TopRequested(ctx context.Context, ownerID uint, limit int) ([]AnimalRequestCount, error)
	CountPendingRequests(ctx context.Context, ownerID uint) (map[uint]int64, error)
}

type animalRepository struct {
	db *gorm.DB
}

// NewAnimalRepository returns a new AnimalRepository implementation.
func NewAnimalRepository(db *gorm.DB) AnimalRepository {
	return &animalRepository{db: db}
}

func (r *animalRepository) Create(ctx context.Context, animal *models.Animal) error {
	if err := r.db.WithContext(ctx).Create(animal).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID fetches without the owner-activity gate. Callers that serve the
// public catalog must use GetVisible instead.
func (r *animalRepository) GetByID(ctx context.Context, id uint) (*models.Animal, error) {
	var animal models.Animal
	key := cache.AnimalKey(id)

	err := cache.Aside(ctx, key, &animal, cache.AnimalTTL, func() error {
		if err := r.db.WithContext(ctx).First(&animal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Animal", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &animal, nil
}

// GetVisible behaves like GetByID but hides animals whose owner account has
// been deactivated. Hidden animals read as not found, never as forbidden.
func (r *animalRepository) GetVisible(ctx context.Context, id uint) (*models.Animal, error) {
	var animal models.Animal
	if err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = animals.owner_id").
		Where("animals.id = ? AND users.is_active = ?", id, true).
		Preload("Adopter").
		First(&animal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Animal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &animal, nil
}

func (r *animalRepository) ListAvailable(ctx context.Context, opts AnimalListOptions) ([]models.Animal, error) {
	var animals []models.Animal

	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = animals.owner_id").
		Where("animals.adopter_id IS NULL AND users.is_active = ?", true)

	if opts.Search != "" {
		q = q.Where("LOWER(animals.name) LIKE LOWER(?)", "%"+opts.Search+"%")
	}

	if err := q.Order("animals.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&animals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return animals, nil
}

func (r *animalRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Animal, error) {
	var animals []models.Animal
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Adopter").
		Order("created_at DESC").
		Find(&animals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return animals, nil
}

func (r *animalRepository) ListAdoptedByOwner(ctx context.Context, ownerID uint) ([]models.Animal, error) {
	var animals []models.Animal
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND adopter_id IS NOT NULL", ownerID).
		Preload("Adopter").
		Order("updated_at DESC").
		Find(&animals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return animals, nil
}

func (r *animalRepository) ListAdoptedByUser(ctx context.Context, adopterID uint) ([]models.Animal, error) {
	var animals []models.Animal
	if err := r.db.WithContext(ctx).
		Where("adopter_id = ?", adopterID).
		Order("updated_at DESC").
		Find(&animals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return animals, nil
}

func (r *animalRepository) Update(ctx context.Context, animal *models.Animal) error {
	if err := r.db.WithContext(ctx).Save(animal).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAnimal(ctx, animal.ID)
	return nil
}

func (r *animalRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Animal{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAnimal(ctx, id)
	return nil
}

// AssignAdopter marks the animal adopted and removes the winning user's
// pending request in the same transaction. Competing requests stay in place
// for the protectora to reject explicitly.
func (r *animalRepository) AssignAdopter(ctx context.Context, animalID, adopterID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Animal{}).
			Where("id = ?", animalID).
			Update("adopter_id", adopterID).Error; err != nil {
			return err
		}
		return tx.Where("animal_id = ? AND user_id = ?", animalID, adopterID).
			Delete(&models.AdoptionRequest{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAnimal(ctx, animalID)
	return nil
}

func (r *animalRepository) ClearAdopter(ctx context.Context, animalID uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Animal{}).
		Where("id = ?", animalID).
		Update("adopter_id", nil).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAnimal(ctx, animalID)
	return nil
}

func (r *animalRepository) OwnerMetrics(ctx context.Context, ownerID uint) (inAdoption, adopted, pendingRequests int64, err error) {
	db := r.db.WithContext(ctx)

	if err = db.Model(&models.Animal{}).
		Where("owner_id = ? AND adopter_id IS NULL", ownerID).
		Count(&inAdoption).Error; err != nil {
		return 0, 0, 0, models.NewInternalError(err)
	}
	if err = db.Model(&models.Animal{}).
		Where("owner_id = ? AND adopter_id IS NOT NULL", ownerID).
		Count(&adopted).Error; err != nil {
		return 0, 0, 0, models.NewInternalError(err)
	}
	if err = db.Model(&models.AdoptionRequest{}).
		Joins("JOIN animals ON animals.id = adoption_requests.animal_id").
		Where("animals.owner_id = ?", ownerID).
		Count(&pendingRequests).Error; err != nil {
		return 0, 0, 0, models.NewInternalError(err)
	}
	return inAdoption, adopted, pendingRequests, nil
}

// MonthlyAdoptions buckets adopted animals by the month the adopter was set,
// approximated by updated_at. Months with no adoptions are filled with zeros
// so the chart axis stays continuous.
func (r *animalRepository) MonthlyAdoptions(ctx context.Context, ownerID uint, months int) ([]MonthlyAdoptionCount, error) {
	if months <= 0 || months > 24 {
		months = 12
	}

	since := time.Now().AddDate(0, -(months - 1), 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	// Bucketing happens in Go so the query stays dialect-neutral.
	var stamps []time.Time
	if err := r.db.WithContext(ctx).Model(&models.Animal{}).
		Where("owner_id = ? AND adopter_id IS NOT NULL AND updated_at >= ?", ownerID, since).
		Pluck("updated_at", &stamps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byMonth := make(map[string]int64, len(stamps))
	for _, ts := range stamps {
		byMonth[ts.UTC().Format("2006-01")]++
	}

	out := make([]MonthlyAdoptionCount, 0, months)
	cursor := since
	for i := 0; i < months; i++ {
		key := cursor.Format("2006-01")
		out = append(out, MonthlyAdoptionCount{Month: key, Count: byMonth[key]})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out, nil
}

func (r *animalRepository) TopRequested(ctx context.Context, ownerID uint, limit int) ([]AnimalRequestCount, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	type row struct {
		AnimalID     uint
		RequestCount int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.AdoptionRequest{}).
		Select("animal_id, COUNT(*) AS request_count").
		Joins("JOIN animals ON animals.id = adoption_requests.animal_id").
		Where("animals.owner_id = ?", ownerID).
		Group("animal_id").
		Order("request_count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AnimalID)
	}
	var animals []models.Animal
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&animals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[uint]models.Animal, len(animals))
	for _, a := range animals {
		byID[a.ID] = a
	}

	out := make([]AnimalRequestCount, 0, len(rows))
	for _, r := range rows {
		if a, ok := byID[r.AnimalID]; ok {
			out = append(out, AnimalRequestCount{Animal: a, RequestCount: r.RequestCount})
		}
	}
	return out, nil
}

// CountPendingRequests returns pending request totals keyed by animal id for
// every animal the owner lists.
func (r *animalRepository) CountPendingRequests(ctx context.Context, ownerID uint) (map[uint]int64, error) {
	type row struct {
		AnimalID uint
		Count    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.AdoptionRequest{}).
		Select("animal_id, COUNT(*) AS count").
		Joins("JOIN animals ON animals.id = adoption_requests.animal_id").
		Where("animals.owner_id = ?", ownerID).
		Group("animal_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.AnimalID] = r.Count
	}
	return counts, nil
}
