package service

import (
	"context"
	"encoding/json"
	"testing"

	"refugio/internal/config"
	"refugio/internal/database"
	"refugio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUserServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := setupUserServiceDB(t)
	svc := NewUserService(
		db,
		&dbUserRepo{db: db},
		&profileRepoStub{},
		&animalRepoStub{},
		&requestRepoStub{},
		&mailerStub{},
		&config.Config{AdminEmail: "admin@refugio.dev", FrontendURL: "http://localhost:5173"},
	)
	return svc, db
}

// dbUserRepo is a thin SQLite-backed repo for registration tests, where the
// interesting behavior lives in the transaction, not in the repository.
type dbUserRepo struct {
	userRepoStub
	db *gorm.DB
}

func (r *dbUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *dbUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	valid := RegisterInput{
		Username: "maria_garcia",
		Email:    "maria@example.com",
		Password: "SecurePass12!@",
	}

	t.Run("adopter registers active with profile", func(t *testing.T) {
		svc, db := newUserService(t)

		user, err := svc.Register(ctx, valid)
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsStaff)
		assert.Equal(t, RoleAdoptante, user.Role())

		var profile models.AdopterProfile
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)

		var approvals int64
		db.Model(&models.ProtectoraApproval{}).Where("user_id = ?", user.ID).Count(&approvals)
		assert.Zero(t, approvals)
	})

	t.Run("protectora registers inactive with pending approval", func(t *testing.T) {
		svc, db := newUserService(t)

		in := valid
		in.Username = "refugio_bcn"
		in.Email = "bcn@example.com"
		in.Role = RoleProtectora

		user, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.False(t, user.IsActive)
		assert.True(t, user.IsStaff)
		assert.Equal(t, RoleProtectora, user.Role())

		var approval models.ProtectoraApproval
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&approval).Error)
		assert.False(t, approval.Approved)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.Register(ctx, valid)
		require.NoError(t, err)

		in := valid
		in.Username = "other_user"
		_, err = svc.Register(ctx, in)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", err.(*models.AppError).Code)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		svc, _ := newUserService(t)

		in := valid
		in.Password = "short"
		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*models.AppError).Code)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		svc, _ := newUserService(t)

		in := valid
		in.Role = "admin"
		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*models.AppError).Code)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!@"), bcrypt.MinCost)
	require.NoError(t, err)

	users := map[string]*models.User{
		"active@e.com":  {ID: 1, Email: "active@e.com", Password: string(hashed), IsActive: true},
		"pending@e.com": {ID: 2, Email: "pending@e.com", Password: string(hashed), IsActive: false, IsStaff: true},
	}
	repo := &userRepoStub{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return users[email], nil
		},
	}
	svc := NewUserService(nil, repo, &profileRepoStub{}, &animalRepoStub{}, &requestRepoStub{}, &mailerStub{}, &config.Config{})

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "active@e.com", "SecurePass12!@")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("unknown email and wrong password read the same", func(t *testing.T) {
		_, errUnknown := svc.Authenticate(ctx, "ghost@e.com", "SecurePass12!@")
		_, errWrongPw := svc.Authenticate(ctx, "active@e.com", "WrongPass12!@")

		require.Error(t, errUnknown)
		require.Error(t, errWrongPw)
		assert.Equal(t, errUnknown.(*models.AppError).Message, errWrongPw.(*models.AppError).Message)
	})

	t.Run("inactive account gets the pending message", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "pending@e.com", "SecurePass12!@")
		require.Error(t, err)
		appErr := err.(*models.AppError)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
		assert.Equal(t, "Tu cuenta está pendiente de aprobación.", appErr.Message)
	})
}

func TestUserService_AdoptionForm(t *testing.T) {
	ctx := context.Background()

	stored := &models.AdopterProfile{ID: 1, UserID: 7}
	profiles := &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.AdopterProfile, error) {
			return stored, nil
		},
		updateFn: func(_ context.Context, p *models.AdopterProfile) error {
			stored = p
			return nil
		},
	}
	svc := NewUserService(nil, &userRepoStub{}, profiles, &animalRepoStub{}, &requestRepoStub{}, &mailerStub{}, &config.Config{})

	t.Run("empty form reads as empty object", func(t *testing.T) {
		form, err := svc.AdoptionForm(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, form)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		_, err := svc.SetAdoptionForm(ctx, 7, json.RawMessage(`{"vivienda":"casa"}`))
		require.NoError(t, err)

		form, err := svc.AdoptionForm(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "casa", form["vivienda"])
	})

	t.Run("non-object form is rejected", func(t *testing.T) {
		_, err := svc.SetAdoptionForm(ctx, 7, json.RawMessage(`"just a string"`))
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*models.AppError).Code)
	})
}

func TestUserService_Favorites(t *testing.T) {
	ctx := context.Background()

	luna := &models.Animal{ID: 9, Name: "Luna", OwnerID: 3}
	var stored []models.Animal
	profiles := &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.AdopterProfile, error) {
			return &models.AdopterProfile{ID: 1, UserID: userID}, nil
		},
		addFavoriteFn: func(_ context.Context, _ uint, a *models.Animal) error {
			stored = append(stored, *a)
			return nil
		},
		removeFavoriteFn: func(_ context.Context, _ uint, _ *models.Animal) error {
			stored = nil
			return nil
		},
		listFavoritesFn: func(_ context.Context, _ uint) ([]models.Animal, error) {
			return stored, nil
		},
	}
	animals := &animalRepoStub{
		getVisibleFn: func(_ context.Context, _ uint) (*models.Animal, error) { return luna, nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.Animal, error) { return luna, nil },
	}
	svc := NewUserService(nil, &userRepoStub{}, profiles, animals, &requestRepoStub{}, &mailerStub{}, &config.Config{})

	favorites, err := svc.AddFavorite(ctx, 7, 9)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Luna", favorites[0].Name)

	favorites, err = svc.RemoveFavorite(ctx, 7, 9)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestUserService_Search(t *testing.T) {
	ctx := context.Background()

	called := false
	repo := &userRepoStub{
		searchFn: func(_ context.Context, q string, excludeID uint, limit int) ([]models.User, error) {
			called = true
			return []models.User{{ID: 2, Username: "maria"}}, nil
		},
	}
	svc := NewUserService(nil, repo, &profileRepoStub{}, &animalRepoStub{}, &requestRepoStub{}, &mailerStub{}, &config.Config{})

	t.Run("empty query short-circuits to empty list", func(t *testing.T) {
		got, err := svc.Search(ctx, "", 1)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.False(t, called)
	})

	t.Run("non-empty query hits the repository", func(t *testing.T) {
		got, err := svc.Search(ctx, "mar", 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.True(t, called)
	})
}

func TestUserService_Profile_Shapes(t *testing.T) {
	ctx := context.Background()

	protectora := &models.User{ID: 1, Username: "shelter", IsStaff: true, IsActive: true}
	adopter := &models.User{
		ID: 2, Username: "maria", IsActive: true,
		Profile: &models.AdopterProfile{ID: 5, UserID: 2, Favorites: []models.Animal{{ID: 9, Name: "Luna"}}},
	}

	users := &userRepoStub{
		getByIDFullFn: func(_ context.Context, id uint) (*models.User, error) {
			if id == 1 {
				return protectora, nil
			}
			return adopter, nil
		},
	}
	animals := &animalRepoStub{
		listByOwnerFn: func(_ context.Context, ownerID uint) ([]models.Animal, error) {
			adopterID := uint(2)
			return []models.Animal{
				{ID: 10, OwnerID: 1},
				{ID: 11, OwnerID: 1, AdopterID: &adopterID},
			}, nil
		},
		listAdoptedByUserFn: func(_ context.Context, id uint) ([]models.Animal, error) {
			return []models.Animal{{ID: 11}}, nil
		},
	}
	requests := &requestRepoStub{
		listByUserFn: func(_ context.Context, id uint) ([]models.AdoptionRequest, error) {
			return []models.AdoptionRequest{{ID: 20, UserID: id, AnimalID: 10}}, nil
		},
	}
	svc := NewUserService(nil, users, &profileRepoStub{}, animals, requests, &mailerStub{}, &config.Config{})

	t.Run("protectora payload splits listings", func(t *testing.T) {
		p, err := svc.Profile(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "protectora", p.Role)
		assert.Len(t, p.EnAdopcion, 1)
		assert.Len(t, p.Adopted, 1)
		assert.Nil(t, p.Profile)
	})

	t.Run("adopter payload carries profile, favorites and requests", func(t *testing.T) {
		p, err := svc.Profile(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "adoptante", p.Role)
		require.NotNil(t, p.Profile)
		assert.Len(t, p.Favorites, 1)
		assert.Len(t, p.Adopted, 1)
		assert.Len(t, p.Requests, 1)
	})
}
