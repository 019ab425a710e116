// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"refugio/internal/cache"
	"refugio/internal/config"
	"refugio/internal/database"
	"refugio/internal/featureflags"
	"refugio/internal/mailer"
	"refugio/internal/middleware"
	"refugio/internal/models"
	"refugio/internal/repository"
	"refugio/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "refugio-api"
	tokenAudience = "refugio-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	animalRepo     repository.AnimalRepository
	requestRepo    repository.RequestRepository
	profileRepo    repository.ProfileRepository
	donationRepo   repository.DonationRepository
	contactRepo    repository.ContactRepository
	mail           mailer.Mailer
	featureFlags   *featureflags.Manager

	animalService     *service.AnimalService
	requestService    *service.RequestService
	userService       *service.UserService
	moderationService *service.ModerationService
	donationService   *service.DonationService
	contactService    *service.ContactService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	contactRepo := repository.NewContactRepository(db)

	prom := middleware.InitMetrics("refugio-api")
	mail := mailer.NewFromConfig(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		animalRepo:     animalRepo,
		requestRepo:    requestRepo,
		profileRepo:    profileRepo,
		donationRepo:   donationRepo,
		contactRepo:    contactRepo,
		mail:           mail,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.animalService = service.NewAnimalService(animalRepo, userRepo, requestRepo)
	server.requestService = service.NewRequestService(requestRepo, animalRepo, userRepo, mail)
	server.userService = service.NewUserService(db, userRepo, profileRepo, animalRepo, requestRepo, mail, cfg)
	server.moderationService = service.NewModerationService(userRepo)
	server.donationService = service.NewDonationService(donationRepo)
	server.contactService = service.NewContactService(contactRepo, mail, cfg)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Refugio Backend Metrics Dashboard",
	}))

	// User and auth routes
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/password-reset", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "password_reset"), s.PasswordReset)
	users.Put("/password-reset-confirm", s.PasswordResetConfirm)
	users.Get("/check_session", s.CheckSession)
	users.Get("/adopters", s.GetAdopters)

	usersAuth := users.Group("", s.AuthRequired())
	usersAuth.Post("/logout", s.Logout)
	usersAuth.Get("/", s.SearchUsers)
	usersAuth.Get("/profile", s.GetMyProfile)
	usersAuth.Put("/profile/update", s.UpdateMyProfile)
	usersAuth.Get("/profile/adoption-form", s.GetAdoptionForm)
	usersAuth.Put("/profile/adoption-form", s.SetAdoptionForm)
	usersAuth.Post("/favorites/:animalId", s.AddFavorite)
	usersAuth.Delete("/favorites/:animalId", s.RemoveFavorite)
	usersAuth.Delete("/animals/request/:id/delete", s.CancelRequest)
	usersAuth.Get("/:id/profile", s.GetPublicProfile)

	// Moderation routes (superuser only)
	adminUsers := users.Group("/admin", s.AuthRequired(), s.SuperuserRequired())
	adminUsers.Put("/validate-protectora/:id", s.ValidateProtectora)
	adminUsers.Put("/block/:id", s.BlockUser)
	adminUsers.Put("/unblock/:id", s.UnblockUser)
	adminUsers.Delete("/delete/:id", s.DeleteUser)
	adminUsers.Get("/blocked-users", s.GetBlockedUsers)
	adminUsers.Get("/pending-protectoras", s.GetPendingProtectoras)

	// Animal catalog routes
	animals := api.Group("/animals", s.AuthRequired())
	animals.Get("/", s.GetAnimals)
	animals.Post("/", s.CreateAnimal)

	// Shelter dashboard routes before generic /:id routes
	protectora := animals.Group("/protectora", s.StaffRequired())
	protectora.Get("/animals", s.GetDashboardAnimals)
	protectora.Get("/adopted", s.GetDashboardAdopted)
	protectora.Get("/metrics", s.GetDashboardMetrics)
	protectora.Get("/monthly-adoptions", s.GetMonthlyAdoptions)
	protectora.Get("/top-requested", s.GetTopRequested)

	animals.Post("/:id/request", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "adoption_request"), s.SubmitRequest)
	animals.Get("/:animalId/requests", s.GetAnimalRequests)
	animals.Delete("/:animalId/requests/:username/delete", s.RejectRequest)
	animals.Get("/:id", s.GetAnimal)
	animals.Patch("/:id", s.UpdateAnimal)
	animals.Delete("/:id", s.DeleteAnimal)

	// Donation routes
	donations := api.Group("/donations")
	donations.Get("/", s.GetDonations)
	donations.Post("/", s.AuthRequired(), s.CreateDonation)

	// Contact routes
	contact := api.Group("/contact")
	contact.Post("/", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "contact"), s.SubmitContact)
	contactAdmin := contact.Group("/admin", s.AuthRequired(), s.SuperuserRequired())
	contactAdmin.Get("/messages", s.GetContactMessages)
	contactAdmin.Get("/messages/:id", s.GetContactMessage)
	contactAdmin.Delete("/messages/:id", s.DeleteContactMessage)

	// Admin platform routes
	admin := api.Group("/admin", s.AuthRequired(), s.SuperuserRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis backs sessions and rate limits, so readiness needs it
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// SuperuserRequired returns middleware that rejects non-superusers with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) SuperuserRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.currentUser(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !user.IsSuperuser {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// StaffRequired returns middleware that rejects callers without a shelter
// account. Superusers pass too.
func (s *Server) StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.currentUser(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !user.IsStaff && !user.IsSuperuser {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Shelter access required"))
		}
		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// The token alone is not enough: an account blocked by moderation
		// must lose access immediately, not when its token expires.
		user, err := s.userRepo.GetByID(c.Context(), uint(userID))
		if err != nil || !user.IsActive {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account inactive or deleted"))
		}

		// Store user and ID in context
		c.Locals("userID", uint(userID))
		c.Locals("currentUser", user)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Refugio API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
