package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insurance-marketplace/config"
	deliveryHttp "insurance-marketplace/internal/delivery/http"
	"insurance-marketplace/internal/delivery/http/handler"
	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/infrastructure/cache"
	"insurance-marketplace/internal/infrastructure/database"
	"insurance-marketplace/internal/infrastructure/docstore"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/internal/repository"
	"insurance-marketplace/internal/service"
	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/jwt"
	"insurance-marketplace/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Store       docstore.Store
	Server      *http.Server

	log     *logrus.Logger
	closers []interface{ Close() error }
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{log: logrus.StandardLogger()}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App)
	app.log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, !cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.log.Info("Database connected successfully")

	if cfg.App.AutoMigrate {
		if err := database.RunMigrations(db, app.log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.log.Info("Redis connected successfully")

	ctx := context.Background()

	store, err := newDocumentStore(ctx, cfg.DocStore, db, redisClient, app.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	app.Store = store
	app.log.Infof("Document store ready (driver %s)", cfg.DocStore.Driver)

	objects, err := newObjectStorage(ctx, cfg.Storage, app.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open object storage: %w", err)
	}

	// Initialize all layers
	server, err := app.initializeServer(ctx, cfg, db, redisClient, store, objects)
	if err != nil {
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// newDocumentStore opens the driver named in cfg.
func newDocumentStore(ctx context.Context, cfg config.DocStoreConfig, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (docstore.Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return docstore.NewPostgresStore(db, docstore.NewRedisNotifier(redisClient, log), log), nil
	case "firestore":
		return docstore.NewFirestoreStore(ctx, cfg.FirestoreProject, cfg.FirestoreCredential, log)
	case "memory":
		log.Warn("Using the in-memory document store, data is lost on restart")
		return docstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown document store driver %q", cfg.Driver)
}

// newObjectStorage uses S3 when a bucket is configured. Without one, image
// uploads fail and records are saved without image.
func newObjectStorage(ctx context.Context, cfg config.StorageConfig, log *logrus.Logger) (storage.ObjectStorage, error) {
	if cfg.Bucket == "" {
		log.Warn("S3_BUCKET not set, image uploads are disabled")
		return storage.Disabled{}, nil
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	store docstore.Store,
	objects storage.ObjectStorage,
) (*http.Server, error) {
	log := app.log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	tokens := cache.NewRedisStore(redisClient)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	userRepo := repository.NewUserRepository(store, log)
	agentRepo := repository.NewAgentRepository(store, log)
	insurerRepo := repository.NewInsurerRepository(store, log)
	insuranceRepo := repository.NewInsuranceRepository(store, objects, log)
	postRepo := repository.NewPostRepository(store, objects, log)
	messageRepo := repository.NewMessageRepository(store, log)

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)

	// Initialize usecases
	identityUsecase := usecase.NewIdentityUsecase(log, userRepo, insurerRepo)
	authUsecase := usecase.NewAuthUsecase(db, log, cfg.Auth, accountRepo, userRepo, insurerRepo, identityUsecase, auditService, usecase.NewLogMailer(log), jwtService, tokens)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize view models shared by every request
	factory := &viewmodel.Factory{
		Users:      userRepo,
		Agents:     agentRepo,
		Insurers:   insurerRepo,
		Insurances: insuranceRepo,
		Posts:      postRepo,
		Messages:   messageRepo,
		Authors:    viewmodel.NewAuthorResolver(userRepo, insurerRepo, cfg.Media.DefaultAvatarURL, log),
		Log:        log,
	}
	users := factory.NewUsers()
	agents := factory.NewAgents()
	insurers := factory.NewInsurers()
	insurances := factory.NewInsurances()
	posts := factory.NewPosts()

	starts := []struct {
		name  string
		start func(context.Context) error
		vm    interface{ Close() error }
	}{
		{"users", users.StartRealtimeUpdates, users},
		{"agents", agents.StartRealtimeUpdates, agents},
		{"insurers", insurers.StartRealtimeUpdates, insurers},
		{"insurances", insurances.StartRealtimeUpdates, insurances},
		{"posts", posts.StartRealtimeUpdates, posts},
	}
	for _, s := range starts {
		if err := s.start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start %s updates: %w", s.name, err)
		}
		app.closers = append(app.closers, s.vm)
	}

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:       handler.NewAuthHandler(authUsecase, customValidator, jwtService),
		Validation: handler.NewValidationHandler(identityUsecase, customValidator),
		User:       handler.NewUserHandler(users, identityUsecase, customValidator),
		Agent:      handler.NewAgentHandler(agents, customValidator),
		Insurer:    handler.NewInsurerHandler(insurers, factory, identityUsecase, customValidator),
		Insurance:  handler.NewInsuranceHandler(insurances, customValidator, cfg.Media.MaxUploadBytes),
		Post:       handler.NewPostHandler(posts, customValidator, cfg.Media.MaxUploadBytes),
		Chat:       handler.NewChatHandler(factory, customValidator),
		Stream:     handler.NewStreamHandler(factory, log),
		AuditLog:   handler.NewAuditLogHandler(auditLogUsecase),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokens, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	// open streams end when shutdown starts
	server.RegisterOnShutdown(cancelRequests)
	return server, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.log.Infof("Server starting on port %s", app.Config.App.Port)
		app.log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.log.Info("Server shutdown complete")
}

// Close disposes the view models, then the document store, database and redis
func (app *App) Close() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.log.Warnf("Failed to close view model: %+v", err)
		}
	}

	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			app.log.Warnf("Failed to close document store: %+v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
