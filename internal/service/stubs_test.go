package service

import (
	"context"
	"sync"

	"refugio/internal/models"
	"refugio/internal/repository"
)

// Function-field stubs for the repository interfaces. Unset fields return
// zero values.

type userRepoStub struct {
	getByIDFn                func(context.Context, uint) (*models.User, error)
	getByIDFullFn            func(context.Context, uint) (*models.User, error)
	getByEmailFn             func(context.Context, string) (*models.User, error)
	getByUsernameFn          func(context.Context, string) (*models.User, error)
	createFn                 func(context.Context, *models.User) error
	updateFn                 func(context.Context, *models.User) error
	deleteFn                 func(context.Context, uint) error
	searchFn                 func(context.Context, string, uint, int) ([]models.User, error)
	listAdoptersFn           func(context.Context) ([]models.User, error)
	listBlockedFn            func(context.Context) ([]models.User, error)
	listPendingProtectorasFn func(context.Context) ([]models.User, error)
	approveProtectoraFn      func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDFull(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFullFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFullFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, q string, excludeID uint, limit int) ([]models.User, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, q, excludeID, limit)
}
func (s *userRepoStub) ListAdopters(ctx context.Context) ([]models.User, error) {
	if s.listAdoptersFn == nil {
		return nil, nil
	}
	return s.listAdoptersFn(ctx)
}
func (s *userRepoStub) ListBlocked(ctx context.Context) ([]models.User, error) {
	if s.listBlockedFn == nil {
		return nil, nil
	}
	return s.listBlockedFn(ctx)
}
func (s *userRepoStub) ListPendingProtectoras(ctx context.Context) ([]models.User, error) {
	if s.listPendingProtectorasFn == nil {
		return nil, nil
	}
	return s.listPendingProtectorasFn(ctx)
}
func (s *userRepoStub) ApproveProtectora(ctx context.Context, userID uint) error {
	if s.approveProtectoraFn == nil {
		return nil
	}
	return s.approveProtectoraFn(ctx, userID)
}

type animalRepoStub struct {
	createFn               func(context.Context, *models.Animal) error
	getByIDFn              func(context.Context, uint) (*models.Animal, error)
	getVisibleFn           func(context.Context, uint) (*models.Animal, error)
	listAvailableFn        func(context.Context, repository.AnimalListOptions) ([]models.Animal, error)
	listByOwnerFn          func(context.Context, uint) ([]models.Animal, error)
	listAdoptedByOwnerFn   func(context.Context, uint) ([]models.Animal, error)
	listAdoptedByUserFn    func(context.Context, uint) ([]models.Animal, error)
	updateFn               func(context.Context, *models.Animal) error
	deleteFn               func(context.Context, uint) error
	assignAdopterFn        func(context.Context, uint, uint) error
	clearAdopterFn         func(context.Context, uint) error
	ownerMetricsFn         func(context.Context, uint) (int64, int64, int64, error)
	monthlyAdoptionsFn     func(context.Context, uint, int) ([]repository.MonthlyAdoptionCount, error)
	topRequestedFn         func(context.Context, uint, int) ([]repository.AnimalRequestCount, error)
	countPendingRequestsFn func(context.Context, uint) (map[uint]int64, error)
}

func (s *animalRepoStub) Create(ctx context.Context, animal *models.Animal) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, animal)
}
func (s *animalRepoStub) GetByID(ctx context.Context, id uint) (*models.Animal, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Animal", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *animalRepoStub) GetVisible(ctx context.Context, id uint) (*models.Animal, error) {
	if s.getVisibleFn == nil {
		return nil, models.NewNotFoundError("Animal", id)
	}
	return s.getVisibleFn(ctx, id)
}
func (s *animalRepoStub) ListAvailable(ctx context.Context, opts repository.AnimalListOptions) ([]models.Animal, error) {
	if s.listAvailableFn == nil {
		return nil, nil
	}
	return s.listAvailableFn(ctx, opts)
}
func (s *animalRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]models.Animal, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *animalRepoStub) ListAdoptedByOwner(ctx context.Context, ownerID uint) ([]models.Animal, error) {
	if s.listAdoptedByOwnerFn == nil {
		return nil, nil
	}
	return s.listAdoptedByOwnerFn(ctx, ownerID)
}
func (s *animalRepoStub) ListAdoptedByUser(ctx context.Context, adopterID uint) ([]models.Animal, error) {
	if s.listAdoptedByUserFn == nil {
		return nil, nil
	}
	return s.listAdoptedByUserFn(ctx, adopterID)
}
func (s *animalRepoStub) Update(ctx context.Context, animal *models.Animal) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, animal)
}
func (s *animalRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *animalRepoStub) AssignAdopter(ctx context.Context, animalID, adopterID uint) error {
	if s.assignAdopterFn == nil {
		return nil
	}
	return s.assignAdopterFn(ctx, animalID, adopterID)
}
func (s *animalRepoStub) ClearAdopter(ctx context.Context, animalID uint) error {
	if s.clearAdopterFn == nil {
		return nil
	}
	return s.clearAdopterFn(ctx, animalID)
}
func (s *animalRepoStub) OwnerMetrics(ctx context.Context, ownerID uint) (int64, int64, int64, error) {
	if s.ownerMetricsFn == nil {
		return 0, 0, 0, nil
	}
	return s.ownerMetricsFn(ctx, ownerID)
}
func (s *animalRepoStub) MonthlyAdoptions(ctx context.Context, ownerID uint, months int) ([]repository.MonthlyAdoptionCount, error) {
	if s.monthlyAdoptionsFn == nil {
		return nil, nil
	}
	return s.monthlyAdoptionsFn(ctx, ownerID, months)
}
func (s *animalRepoStub) TopRequested(ctx context.Context, ownerID uint, limit int) ([]repository.AnimalRequestCount, error) {
	if s.topRequestedFn == nil {
		return nil, nil
	}
	return s.topRequestedFn(ctx, ownerID, limit)
}
func (s *animalRepoStub) CountPendingRequests(ctx context.Context, ownerID uint) (map[uint]int64, error) {
	if s.countPendingRequestsFn == nil {
		return nil, nil
	}
	return s.countPendingRequestsFn(ctx, ownerID)
}

type requestRepoStub struct {
	upsertFn                func(context.Context, *models.AdoptionRequest) (bool, error)
	getByIDFn               func(context.Context, uint) (*models.AdoptionRequest, error)
	listByAnimalFn          func(context.Context, uint) ([]models.AdoptionRequest, error)
	listByUserFn            func(context.Context, uint) ([]models.AdoptionRequest, error)
	deleteByAnimalAndUserFn func(context.Context, uint, uint) error
	deleteFn                func(context.Context, uint) error
}

func (s *requestRepoStub) Upsert(ctx context.Context, r *models.AdoptionRequest) (bool, error) {
	if s.upsertFn == nil {
		return true, nil
	}
	return s.upsertFn(ctx, r)
}
func (s *requestRepoStub) GetByID(ctx context.Context, id uint) (*models.AdoptionRequest, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("AdoptionRequest", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *requestRepoStub) ListByAnimal(ctx context.Context, animalID uint) ([]models.AdoptionRequest, error) {
	if s.listByAnimalFn == nil {
		return nil, nil
	}
	return s.listByAnimalFn(ctx, animalID)
}
func (s *requestRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.AdoptionRequest, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}
func (s *requestRepoStub) DeleteByAnimalAndUser(ctx context.Context, animalID, userID uint) error {
	if s.deleteByAnimalAndUserFn == nil {
		return nil
	}
	return s.deleteByAnimalAndUserFn(ctx, animalID, userID)
}
func (s *requestRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

type profileRepoStub struct {
	getByUserIDFn    func(context.Context, uint) (*models.AdopterProfile, error)
	createFn         func(context.Context, *models.AdopterProfile) error
	updateFn         func(context.Context, *models.AdopterProfile) error
	addFavoriteFn    func(context.Context, uint, *models.Animal) error
	removeFavoriteFn func(context.Context, uint, *models.Animal) error
	listFavoritesFn  func(context.Context, uint) ([]models.Animal, error)
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.AdopterProfile, error) {
	if s.getByUserIDFn == nil {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) Create(ctx context.Context, p *models.AdopterProfile) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, p)
}
func (s *profileRepoStub) Update(ctx context.Context, p *models.AdopterProfile) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, p)
}
func (s *profileRepoStub) AddFavorite(ctx context.Context, profileID uint, a *models.Animal) error {
	if s.addFavoriteFn == nil {
		return nil
	}
	return s.addFavoriteFn(ctx, profileID, a)
}
func (s *profileRepoStub) RemoveFavorite(ctx context.Context, profileID uint, a *models.Animal) error {
	if s.removeFavoriteFn == nil {
		return nil
	}
	return s.removeFavoriteFn(ctx, profileID, a)
}
func (s *profileRepoStub) ListFavorites(ctx context.Context, profileID uint) ([]models.Animal, error) {
	if s.listFavoritesFn == nil {
		return nil, nil
	}
	return s.listFavoritesFn(ctx, profileID)
}

// mailerStub records sends for assertions.
type mailerStub struct {
	mu    sync.Mutex
	sends []string
}

func (m *mailerStub) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, to+": "+subject)
	return nil
}
