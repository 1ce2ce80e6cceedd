// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	validate       *validator.Validate
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo       repository.UserRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	recipeRepo     repository.RecipeRepository
	followRepo     repository.FollowRepository

	mediaService        *service.MediaService
	userService         *service.UserService
	recipeService       *service.RecipeService
	followService       *service.FollowService
	shoppingListService *service.ShoppingListService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	middleware.InitMiddleware(cfg, redisClient)

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	followRepo := repository.NewFollowRepository(db)

	prom := middleware.InitMetrics("foodgram-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		validate:       validator.New(),
		promMiddleware: prom,
		userRepo:       userRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		recipeRepo:     recipeRepo,
		followRepo:     followRepo,
	}
	server.mediaService = service.NewMediaService(cfg)
	server.userService = service.NewUserService(userRepo, server.mediaService)
	server.recipeService = service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, server.mediaService)
	server.followService = service.NewFollowService(followRepo, userRepo, recipeRepo)
	server.shoppingListService = service.NewShoppingListService(recipeRepo, userRepo)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry request spans; must run before ContextMiddleware so the
	// trace ID local reaches the context-aware logger.
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID, User ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
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
		Title: "Foodgram Backend Metrics Dashboard",
	}))

	// Stored media (recipe images, avatars)
	app.Static("/media", s.config.MediaRoot)

	// Short link redirects
	app.Get("/s/:code", s.ResolveShortLink)

	// Token auth
	auth := api.Group("/auth/token")
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	// User routes. Specific paths must precede the generic /:id route.
	users := api.Group("/users")
	users.Get("/", middleware.OptionalAuth, s.GetUsers)
	users.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Register)
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Put("/me/avatar", middleware.AuthRequired, s.SetAvatar)
	users.Delete("/me/avatar", middleware.AuthRequired, s.DeleteAvatar)
	users.Post("/set_password", middleware.AuthRequired, s.SetPassword)
	users.Get("/subscriptions", middleware.AuthRequired, s.GetSubscriptions)
	users.Post("/:id/subscribe", middleware.AuthRequired, s.Subscribe)
	users.Delete("/:id/subscribe", middleware.AuthRequired, s.Unsubscribe)
	users.Get("/:id", middleware.OptionalAuth, s.GetUserProfile)

	// Reference data
	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/:id", s.GetTag)

	ingredients := api.Group("/ingredients")
	ingredients.Get("/", s.GetIngredients)
	ingredients.Get("/:id", s.GetIngredient)

	// Recipe routes. Specific paths must precede the generic /:id route.
	recipeWriteLimit := middleware.RateLimit(s.redis, 30, time.Minute, "recipe-write")

	recipes := api.Group("/recipes")
	recipes.Get("/", middleware.OptionalAuth, s.GetRecipes)
	recipes.Post("/", middleware.AuthRequired, recipeWriteLimit, s.CreateRecipe)
	recipes.Get("/download_shopping_cart", middleware.AuthRequired, s.DownloadShoppingCart)
	recipes.Get("/:id/get-link", s.GetRecipeLink)
	recipes.Post("/:id/favorite", middleware.AuthRequired, s.AddFavorite)
	recipes.Delete("/:id/favorite", middleware.AuthRequired, s.RemoveFavorite)
	recipes.Post("/:id/shopping_cart", middleware.AuthRequired, s.AddToShoppingCart)
	recipes.Delete("/:id/shopping_cart", middleware.AuthRequired, s.RemoveFromShoppingCart)
	recipes.Get("/:id", middleware.OptionalAuth, s.GetRecipe)
	recipes.Patch("/:id", middleware.AuthRequired, recipeWriteLimit, s.UpdateRecipe)
	recipes.Put("/:id", middleware.AuthRequired, recipeWriteLimit, s.UpdateRecipe)
	recipes.Delete("/:id", middleware.AuthRequired, recipeWriteLimit, s.DeleteRecipe)
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
		// The API stays functional without Redis; report it as degraded only
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the configured Fiber application.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "foodgram-api",
		// Base64 inflates image payloads by a third; leave headroom above the raw limit
		BodyLimit: (s.config.ImageMaxUploadSizeMB + 5) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start builds the app and begins listening. Blocks until the listener
// stops.
func (s *Server) Start() error {
	app := s.App()
	s.app = app

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

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
