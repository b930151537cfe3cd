package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/rentdesk-api/docs" // Swagger docs
	"github.com/sjperalta/rentdesk-api/internal/cache"
	"github.com/sjperalta/rentdesk-api/internal/config"
	"github.com/sjperalta/rentdesk-api/internal/database"
	"github.com/sjperalta/rentdesk-api/internal/handlers"
	"github.com/sjperalta/rentdesk-api/internal/jobs"
	"github.com/sjperalta/rentdesk-api/internal/middleware"
	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/sjperalta/rentdesk-api/internal/permission"
	"github.com/sjperalta/rentdesk-api/internal/queue"
	"github.com/sjperalta/rentdesk-api/internal/repository"
	"github.com/sjperalta/rentdesk-api/internal/services"
	"github.com/sjperalta/rentdesk-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title RentDesk API
// @version 1.0
// @description Contract lifecycle, billing dates and reminder notifications for branch-managed rental contracts

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8081
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("Database schema migrated")
	}

	// Notification dispatch
	ledger, closeLedger := openLedger(cfg)
	defer closeLedger()
	sender, closeSender := openSender(cfg)
	defer closeSender()
	dispatcher := notify.NewDispatcher(sender, ledger, notify.DispatcherOptions{
		RatePerSecond: cfg.NotifyRatePerSecond,
		Burst:         cfg.NotifyBurst,
		MaxAttempts:   cfg.NotifyMaxAttempts,
		RetryDelay:    time.Second,
	})

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, dispatcher, cfg)

	// Schedule recurring jobs
	svcs.Job.ScheduleDailySweep()

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, svcs.Permission, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

// openLedger uses Redis when configured so every instance shares one sent ledger
func openLedger(cfg *config.Config) (notify.SentLedger, func()) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, reminder dedupe is per process")
		return notify.NewMemoryLedger(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Redis unavailable, falling back to in-memory ledger", "error", err)
		return notify.NewMemoryLedger(), func() {}
	}
	logger.Info("Connected to Redis")
	return cache.NewRedisLedger(c, "rentdesk"), func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close Redis", "error", err)
		}
	}
}

// openSender publishes to RabbitMQ when configured, otherwise reminders go to the log
func openSender(cfg *config.Config) (notify.Sender, func()) {
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, reminders are written to the log only")
		return notify.LogSender{}, func() {}
	}

	conn, err := queue.Connect(cfg.AMQPURL, 5, 2*time.Second)
	if err != nil {
		logger.Error("RabbitMQ unavailable, reminders are written to the log only", "error", err)
		return notify.LogSender{}, func() {}
	}
	publisher, err := queue.OpenPublisher(conn, cfg.NotifyExchange)
	if err != nil {
		logger.Error("Failed to open notification channel", "error", err)
		_ = conn.Close()
		return notify.LogSender{}, func() {}
	}
	logger.Info("Publishing reminders to RabbitMQ", "exchange", cfg.NotifyExchange)
	return publisher, func() {
		_ = publisher.Close()
		_ = conn.Close()
	}
}

func setupRouter(h *handlers.Handlers, evaluator permission.Evaluator, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	h.RegisterRoutes(router.Group("/api/v1"), cfg.JWTSecret, evaluator)

	return router
}
