// Package server contains the HTTP handlers for the messaging API.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hirelink/internal/cache"
	"hirelink/internal/config"
	"hirelink/internal/database"
	"hirelink/internal/featureflags"
	"hirelink/internal/middleware"
	"hirelink/internal/notifications"
	"hirelink/internal/repository"
	"hirelink/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	promMiddleware *fiberprometheus.FiberPrometheus
	flags          *featureflags.Manager

	threadRepo        repository.ThreadRepository
	messageRepo       repository.MessageRepository
	templateRepo      repository.TemplateRepository
	notificationRepo  repository.NotificationRepository
	statusHistoryRepo repository.StatusHistoryRepository
	identityRepo      repository.IdentityRepository
	jobRepo           repository.JobRepository
	applicationRepo   repository.ApplicationRepository

	notifier *notifications.Notifier

	threadService       *service.ThreadService
	messageService      *service.MessageService
	templateService     *service.TemplateService
	notificationService *service.NotificationService
	statusService       *service.StatusService
}

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// initPrometheus builds the HTTP metrics middleware once per process; the
// collectors it registers on the default registry cannot be registered twice.
func initPrometheus() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New("hirelink-api")
	})
	return promInst
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with sqlite and miniredis backends.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:            cfg,
		db:                db,
		redis:             redisClient,
		promMiddleware:    initPrometheus(),
		flags:             featureflags.NewManager(cfg.FeatureFlags),
		threadRepo:        repository.NewThreadRepository(db),
		messageRepo:       repository.NewMessageRepository(db),
		templateRepo:      repository.NewTemplateRepository(db),
		notificationRepo:  repository.NewNotificationRepository(db),
		statusHistoryRepo: repository.NewStatusHistoryRepository(db),
		identityRepo:      repository.NewIdentityRepository(db),
		jobRepo:           repository.NewJobRepository(db),
		applicationRepo:   repository.NewApplicationRepository(db),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	s.threadService = service.NewThreadService(s.threadRepo)
	s.messageService = service.NewMessageService(db, s.messageRepo, s.identityRepo, s.threadService)
	s.templateService = service.NewTemplateService(s.templateRepo)
	s.notificationService = service.NewNotificationService(db, s.notificationRepo)
	s.statusService = service.NewStatusService(
		db, s.applicationRepo, s.jobRepo, s.statusHistoryRepo, s.templateRepo,
		s.messageService, s.notificationService,
	)

	middleware.InitMiddleware(cfg)
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limit; per-route Redis limits guard the write endpoints.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api := app.Group("/api")
	protected := api.Group("", middleware.AuthRequired)

	protected.Get("/feature-flags", s.FeatureFlagSnapshot)

	messages := protected.Group("/messages")
	messages.Post("/send", middleware.RateLimit(s.redis, "send_message", 30, time.Minute), s.SendMessage)
	messages.Get("/templates", s.ListTemplates)
	messages.Get("/templates/:templateKey", s.GetTemplate)
	messages.Post("/templates/:id/preview", s.PreviewTemplate)
	messages.Get("/search-recipients", s.SearchRecipients)
	messages.Post("/:messageId/reactions", s.AddReaction)

	threads := messages.Group("/threads")
	threads.Get("/", s.ListThreads)
	threads.Get("/unread-count", s.UnreadCount)
	threads.Get("/:threadId/messages", s.ListThreadMessages)
	threads.Post("/:threadId/read", s.MarkThreadRead)
	threads.Post("/:threadId/archive", s.ArchiveThread)
	threads.Get("/:threadId", s.GetThread)

	notifs := protected.Group("/notifications")
	notifs.Get("/", s.ListNotifications)
	notifs.Post("/:id/cancel", s.CancelNotification)

	jobs := protected.Group("/jobs")
	jobs.Patch("/:jobId/status", middleware.EmployerRequired, s.UpdateJobStatus)

	applications := protected.Group("/applications")
	applications.Get("/:applicationId/history", s.GetStatusHistory)
	applications.Post("/:applicationId/status", middleware.EmployerRequired, s.RecordApplicationStatus)
}

// FeatureFlagSnapshot reports the evaluated flags for the calling actor so
// clients can toggle optional UI without redeploys.
func (s *Server) FeatureFlagSnapshot(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	return c.JSON(fiber.Map{"flags": s.flags.Snapshot(actor.ID)})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health.
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

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   dbStatus,
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now(),
	})
}

// Shutdown closes the database connection pool.
func (s *Server) Shutdown() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
