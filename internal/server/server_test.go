package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"refugio/internal/cache"
	"refugio/internal/config"
	"refugio/internal/database"
	"refugio/internal/featureflags"
	"refugio/internal/mailer"
	"refugio/internal/models"
	"refugio/internal/repository"
	"refugio/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Str0ngPass!23"

var testPasswordHash []byte

func init() {
	testPasswordHash, _ = bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
}

type testHarness struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

// newTestServer wires a full Server against in-memory SQLite and miniredis.
// The Prometheus middleware is left nil so repeated setup does not re-register
// collectors on the default registry.
func newTestServer(t *testing.T) *testHarness {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		JWTSecret:   "test-secret-key-for-handler-tests",
		Port:        "8375",
		Env:         "test",
		FrontendURL: "http://localhost:5173",
	}

	userRepo := repository.NewUserRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	contactRepo := repository.NewContactRepository(db)

	mail := mailer.NopMailer{}

	srv := &Server{
		config:       cfg,
		db:           db,
		redis:        rdb,
		userRepo:     userRepo,
		animalRepo:   animalRepo,
		requestRepo:  requestRepo,
		profileRepo:  profileRepo,
		donationRepo: donationRepo,
		contactRepo:  contactRepo,
		mail:         mail,
		featureFlags: featureflags.NewManager(""),
	}
	srv.animalService = service.NewAnimalService(animalRepo, userRepo, requestRepo)
	srv.requestService = service.NewRequestService(requestRepo, animalRepo, userRepo, mail)
	srv.userService = service.NewUserService(db, userRepo, profileRepo, animalRepo, requestRepo, mail, cfg)
	srv.moderationService = service.NewModerationService(userRepo)
	srv.donationService = service.NewDonationService(donationRepo)
	srv.contactService = service.NewContactService(contactRepo, mail, cfg)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testHarness{srv: srv, app: app, db: db, mr: mr}
}

func (h *testHarness) createUser(t *testing.T, username string, mutate func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(testPasswordHash),
		IsActive: true,
		Profile:  &models.AdopterProfile{},
	}
	if mutate != nil {
		mutate(user)
	}
	require.NoError(t, h.db.Create(user).Error)
	return user
}

func (h *testHarness) createAdopter(t *testing.T, username string) *models.User {
	return h.createUser(t, username, nil)
}

func (h *testHarness) createShelter(t *testing.T, username string, approved bool) *models.User {
	return h.createUser(t, username, func(u *models.User) {
		u.IsStaff = true
		u.IsActive = approved
		u.Approval = &models.ProtectoraApproval{Approved: approved}
	})
}

func (h *testHarness) createSuperuser(t *testing.T, username string) *models.User {
	return h.createUser(t, username, func(u *models.User) {
		u.IsSuperuser = true
	})
}

func (h *testHarness) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := h.srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return token
}

func (h *testHarness) createAnimal(t *testing.T, owner *models.User, name string, mutate func(*models.Animal)) *models.Animal {
	t.Helper()
	animal := &models.Animal{
		Name:    name,
		Species: "dog",
		OwnerID: owner.ID,
	}
	if mutate != nil {
		mutate(animal)
	}
	require.NoError(t, h.db.Create(animal).Error)
	return animal
}

// request performs an HTTP request against the test app and decodes the JSON
// response into a generic map.
func (h *testHarness) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)

	status, body := h.request(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = h.request(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadinessReportsDatabaseFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := &Server{
		config: &config.Config{JWTSecret: "x", Port: "8375"},
		db:     gormDB,
		redis:  rdb,
	}

	app := fiber.New()
	app.Get("/health/ready", srv.ReadinessCheck)

	req := httptest.NewRequest("GET", "/health/ready", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["database"])
	assert.Equal(t, "healthy", checks["redis"])
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t)
	adopter := h.createAdopter(t, "auth_adopter")

	t.Run("missing token", func(t *testing.T) {
		status, body := h.request(t, "GET", "/api/animals/", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Authorization required", body["error"])
	})

	t.Run("garbage token", func(t *testing.T) {
		status, _ := h.request(t, "GET", "/api/animals/", "not-a-jwt", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := &Server{config: &config.Config{JWTSecret: "some-other-secret"}}
		forged, err := other.generateToken(adopter.ID, adopter.Username)
		require.NoError(t, err)

		status, _ := h.request(t, "GET", "/api/animals/", forged, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("valid token", func(t *testing.T) {
		status, body := h.request(t, "GET", "/api/animals/", h.token(t, adopter), nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.NotNil(t, body["animals"])
	})

	t.Run("token via query param", func(t *testing.T) {
		status, _ := h.request(t, "GET", "/api/animals/?token="+h.token(t, adopter), "", nil)
		assert.Equal(t, fiber.StatusOK, status)
	})
}

func TestBlockedUserTokenRejected(t *testing.T) {
	h := newTestServer(t)
	adopter := h.createAdopter(t, "stale_adopter")
	admin := h.createSuperuser(t, "stale_admin")
	shelter := h.createShelter(t, "stale_shelter", true)
	animal := h.createAnimal(t, shelter, "Pendiente", nil)

	token := h.token(t, adopter)

	status, _ := h.request(t, "GET", "/api/users/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = h.request(t, "PUT", fmt.Sprintf("/api/users/admin/block/%d", adopter.ID), h.token(t, admin), nil)
	require.Equal(t, fiber.StatusOK, status)

	t.Run("existing token loses read access", func(t *testing.T) {
		status, body := h.request(t, "GET", "/api/users/profile", token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Account inactive or deleted", body["error"])
	})

	t.Run("existing token loses write access", func(t *testing.T) {
		status, _ := h.request(t, "POST", fmt.Sprintf("/api/animals/%d/request", animal.ID), token, map[string]any{
			"adoption_form": map[string]any{"vivienda": "piso"},
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("unblock restores access", func(t *testing.T) {
		status, _ := h.request(t, "PUT", fmt.Sprintf("/api/users/admin/unblock/%d", adopter.ID), h.token(t, admin), nil)
		require.Equal(t, fiber.StatusOK, status)

		status, _ = h.request(t, "GET", "/api/users/profile", token, nil)
		assert.Equal(t, fiber.StatusOK, status)
	})
}

func TestRoleMiddleware(t *testing.T) {
	h := newTestServer(t)
	adopter := h.createAdopter(t, "role_adopter")
	shelter := h.createShelter(t, "role_shelter", true)
	admin := h.createSuperuser(t, "role_admin")

	t.Run("adopter cannot reach shelter dashboard", func(t *testing.T) {
		status, body := h.request(t, "GET", "/api/animals/protectora/metrics", h.token(t, adopter), nil)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "Shelter access required", body["error"])
	})

	t.Run("shelter reaches dashboard", func(t *testing.T) {
		status, _ := h.request(t, "GET", "/api/animals/protectora/metrics", h.token(t, shelter), nil)
		assert.Equal(t, fiber.StatusOK, status)
	})

	t.Run("shelter cannot reach moderation", func(t *testing.T) {
		status, body := h.request(t, "GET", "/api/users/admin/blocked-users", h.token(t, shelter), nil)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "Admin access required", body["error"])
	})

	t.Run("superuser reaches moderation", func(t *testing.T) {
		status, _ := h.request(t, "GET", "/api/users/admin/blocked-users", h.token(t, admin), nil)
		assert.Equal(t, fiber.StatusOK, status)
	})

	t.Run("superuser passes shelter check too", func(t *testing.T) {
		status, _ := h.request(t, "GET", "/api/animals/protectora/metrics", h.token(t, admin), nil)
		assert.Equal(t, fiber.StatusOK, status)
	})
}

func TestFeatureFlagsEndpoint(t *testing.T) {
	h := newTestServer(t)
	h.srv.featureFlags = featureflags.NewManager("geo_filter=on,new_dashboard=off")
	admin := h.createSuperuser(t, "flags_admin")

	status, body := h.request(t, "GET", "/api/admin/feature-flags", h.token(t, admin), nil)
	assert.Equal(t, fiber.StatusOK, status)

	raw := body["raw"].(map[string]any)
	assert.Equal(t, "on", raw["geo_filter"])

	evaluated := body["evaluated"].(map[string]any)
	assert.Equal(t, true, evaluated["geo_filter"])
	assert.Equal(t, false, evaluated["new_dashboard"])
}
