package app

import (
	"context"
	"fmt"

	"github.com/openlearn/openlearn-backend/blobstore"
	"github.com/openlearn/openlearn-backend/config"
	"github.com/openlearn/openlearn-backend/handlers"
	"github.com/openlearn/openlearn-backend/middleware"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/repositories/postgres"
	"github.com/openlearn/openlearn-backend/services/access"
	"github.com/openlearn/openlearn-backend/services/catalog"
	"github.com/openlearn/openlearn-backend/services/enrollment"
	"github.com/openlearn/openlearn-backend/services/identity"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger
	Blobs  blobstore.Store

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	Identity    *identity.Service
	Access      *access.Service
	Enrollments *enrollment.Service
	Catalog     *catalog.Service

	// HTTP layer
	AuthMiddleware    *middleware.AuthMiddleware
	AuthHandler       *handlers.AuthHandler
	CourseHandler     *handlers.CourseHandler
	LessonHandler     *handlers.LessonHandler
	MaterialHandler   *handlers.MaterialHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	HealthHandler     *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
// This is the central wiring point for dependency injection.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initBlobStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	deps.initServices(cfg)
	deps.initHTTP()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection, schema and repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Repos = factory.NewRepositories()
	d.TxManager = factory.GetTransactionManager()

	d.Logger.Info("database initialized",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initBlobStore selects the blob backend from configuration
func (d *Dependencies) initBlobStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Storage.Mode {
	case "gcs":
		store, err := blobstore.NewGCS(ctx, cfg.Storage.Bucket, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create GCS store: %w", err)
		}
		d.Blobs = store
		d.Logger.Info("blob store initialized",
			zap.String("mode", "gcs"),
			zap.String("bucket", cfg.Storage.Bucket))
	case "memory":
		d.Blobs = blobstore.NewMemory()
		d.Logger.Warn("using in-memory blob store, uploads do not survive restarts")
	default:
		return fmt.Errorf("unknown storage mode: %s", cfg.Storage.Mode)
	}
	return nil
}

// initServices wires the domain services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Identity = identity.NewService(d.Repos.Users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, d.Logger)
	d.Access = access.NewService(d.Repos.Enrollments, d.Logger)
	d.Enrollments = enrollment.NewService(d.Repos.Courses, d.Repos.Enrollments, d.Logger)
	d.Catalog = catalog.NewService(
		d.Repos.Courses,
		d.Repos.Lessons,
		d.Repos.Materials,
		d.Access,
		d.TxManager,
		d.Blobs,
		d.Logger,
	)
}

// initHTTP wires middleware and handlers
func (d *Dependencies) initHTTP() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Identity, d.Logger)
	d.AuthHandler = handlers.NewAuthHandler(d.Identity, d.Logger)
	d.CourseHandler = handlers.NewCourseHandler(d.Catalog, d.Logger)
	d.LessonHandler = handlers.NewLessonHandler(d.Catalog, d.Logger)
	d.MaterialHandler = handlers.NewMaterialHandler(d.Catalog, d.Logger)
	d.EnrollmentHandler = handlers.NewEnrollmentHandler(d.Catalog, d.Enrollments, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if closer, ok := d.Blobs.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close blob store: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
