package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/subtrack/internal/config"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/handler"
	"github.com/mansoorceksport/subtrack/internal/middleware"
	"github.com/mansoorceksport/subtrack/internal/repository"
	"github.com/mansoorceksport/subtrack/internal/service"
	"github.com/mansoorceksport/subtrack/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	// Optional overrides; built from MongoDB/config when nil
	Subscriptions domain.SubscriptionRepository
	Exports       domain.ExportStore
	StoreOptions  service.StoreOptions
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	subscriptionRepo := deps.Subscriptions
	if subscriptionRepo == nil {
		subscriptionRepo = repository.NewMongoSubscriptionRepository(deps.MongoDB)
	}
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	vocabularyRepo := repository.NewRedisVocabularyRepository(cacheRepo)

	exports := deps.Exports
	if exports == nil && deps.Config.ExportsEnabled() {
		// S3 is optional; exports answer 503 without it
		s3Repo, err := repository.NewS3ExportRepository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 export repository: %v", err)
		} else {
			exports = s3Repo
		}
	}

	// Initialize services
	sessions := service.NewSessionManager(subscriptionRepo, vocabularyRepo, deps.StoreOptions)
	exportService := service.NewExportService(sessions, exports)

	// Initialize handlers
	subscriptionHandler := handler.NewSubscriptionHandler(sessions)
	vocabularyHandler := handler.NewVocabularyHandler(sessions)
	dashboardHandler := handler.NewDashboardHandler(sessions)
	exportHandler := handler.NewExportHandler(exportService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SubTrack API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "subtrack",
		})
	})

	// API v1 routes, all owner-scoped
	v1 := app.Group("/v1")
	v1.Use(middleware.VerifyOwnerToken(deps.Config.JWT.Secret))

	subscriptions := v1.Group("/subscriptions")
	subscriptions.Get("/", subscriptionHandler.List)
	subscriptions.Post("/", middleware.IdempotencyMiddleware(cacheRepo, deps.Config.Server.IdempotencyTTL), subscriptionHandler.Create)
	subscriptions.Post("/refetch", subscriptionHandler.Refetch)
	subscriptions.Get("/:id", subscriptionHandler.Get)
	subscriptions.Put("/:id", subscriptionHandler.Update)
	subscriptions.Delete("/:id", subscriptionHandler.Delete)

	v1.Get("/dashboard/summary", dashboardHandler.Summary)
	v1.Get("/calendar", dashboardHandler.Calendar)

	planTypes := v1.Group("/plan-types")
	planTypes.Get("/", vocabularyHandler.ListPlanTypes)
	planTypes.Post("/", vocabularyHandler.AddPlanType)
	planTypes.Delete("/:label", vocabularyHandler.RemovePlanType)

	durations := v1.Group("/durations")
	durations.Get("/", vocabularyHandler.ListDurations)
	durations.Post("/", vocabularyHandler.AddDuration)
	durations.Put("/:index", vocabularyHandler.UpdateDuration)
	durations.Delete("/:index", vocabularyHandler.RemoveDuration)

	v1.Post("/exports", exportHandler.Create)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
