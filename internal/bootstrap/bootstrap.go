package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/assessai/internal/app/auth"
	appControllers "github.com/yigit/assessai/internal/app/controllers"
	appMigrations "github.com/yigit/assessai/internal/app/migrations"
	appRepos "github.com/yigit/assessai/internal/app/repositories"
	appRoutes "github.com/yigit/assessai/internal/app/routes"
	appServices "github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/config"
	"github.com/yigit/assessai/internal/db"
	appMiddleware "github.com/yigit/assessai/internal/middleware"
	pkgAuth "github.com/yigit/assessai/internal/pkg/auth"
	"github.com/yigit/assessai/internal/pkg/cache"
	"github.com/yigit/assessai/internal/pkg/filestorage"
	"github.com/yigit/assessai/internal/pkg/helpers"
	"github.com/yigit/assessai/internal/pkg/logger"
	"github.com/yigit/assessai/internal/pkg/marking"
	"github.com/yigit/assessai/internal/pkg/queue"
	"github.com/yigit/assessai/internal/pkg/websocket"
	"github.com/yigit/assessai/internal/seed"
)

// cleanupInterval is how often retention cleanup runs without a task queue
const cleanupInterval = 24 * time.Hour

// Dependencies holds all the application dependencies
type Dependencies struct {
	SettingsService   appServices.SettingsService
	AuthService       appServices.AuthService
	UserService       appServices.UserService
	CatalogService    appServices.CatalogService
	AssessmentService appServices.AssessmentService
	MarkingService    appServices.MarkingService
	WebsiteService    appServices.WebsiteService
	DashboardService  appServices.DashboardService

	AuthController       *appControllers.AuthController
	CatalogController    *appControllers.CatalogController
	AssessmentController *appControllers.AssessmentController
	MarkingController    *appControllers.MarkingController
	DashboardController  *appControllers.DashboardController
	UserController       *appControllers.UserController
	WebsiteController    *appControllers.WebsiteController
	SettingsController   *appControllers.SettingsController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	FileStorage    filestorage.FileStorage
	Cache          cache.Cache
	Hub            *websocket.Hub
	WSHandler      *websocket.Handler
	Logger         zerolog.Logger

	redisClient    *redis.Client
	asynqClient    *asynq.Client
	worker         *queue.Worker
	inlineEnqueuer *queue.InlineEnqueuer
	cancel         context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	admin := seed.AdminAccount{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}
	if err := seed.CreateDefaultData(ctx, dbPool, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// setupCache connects to Redis when enabled. Without Redis caching is a no-op.
func setupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Cache, *redis.Client) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, caching is off")
		return cache.NewNopCache(), nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, caching is off")
		return cache.NewNopCache(), nil
	}
	return cache.NewRedisCache(client, "assessai"), client
}

// setupStorage creates the configured file storage driver
func setupStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.Storage.Driver == config.StorageDriverMinio {
		return filestorage.NewMinioStorage(ctx, filestorage.MinioConfig{
			Endpoint:   cfg.Storage.Minio.Endpoint,
			AccessKey:  cfg.Storage.Minio.AccessKey,
			SecretKey:  cfg.Storage.Minio.SecretKey,
			Bucket:     cfg.Storage.Minio.Bucket,
			UseSSL:     cfg.Storage.Minio.UseSSL,
			PresignTTL: time.Hour,
		})
	}

	return filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.PublicBaseURL()+"/uploads")
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.Cache, deps.redisClient = setupCache(ctx, cfg, lgr)

	var err error
	deps.FileStorage, err = setupStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize file storage")
		deps.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.CategoryRepository,
		deps.Repos.ModuleRepository,
		deps.Repos.AssessmentRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(logger.Component("ws-hub"))
	deps.WSHandler = websocket.NewHandler(deps.Hub, cfg.CORS.AllowedOrigins, logger.Component("ws"))

	analyzer := marking.NewHTTPAnalyzer(nil, deps.Cache, marking.AnalyzerConfig{
		Timeout:   helpers.ParseDuration(cfg.Marking.URLFetchTimeout, 10*time.Second),
		UserAgent: cfg.Marking.UserAgent,
		CacheTTL:  helpers.ParseDuration(cfg.Marking.URLCacheTTL, time.Hour),
	}, logger.Component("url-analyzer"))
	engine := marking.NewEngine(analyzer, cfg.Marking.MaxURLs)

	deps.SettingsService = appServices.NewSettingsService(deps.Repos.SettingsRepository, deps.Cache, logger.Component("settings"))
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.SettingsService,
		deps.JWTService,
		deps.FileStorage,
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, logger.Component("users"))
	deps.CatalogService = appServices.NewCatalogService(
		deps.Repos.CategoryRepository,
		deps.Repos.ModuleRepository,
		deps.Repos.AssessmentRepository,
		deps.AuthzService,
		logger.Component("catalog"),
	)
	deps.MarkingService = appServices.NewMarkingService(appServices.MarkingDeps{
		Users:           deps.Repos.UserRepository,
		Rubrics:         deps.Repos.RubricRepository,
		Works:           deps.Repos.StudentWorkRepository,
		Marks:           deps.Repos.MarkRepository,
		Analytics:       deps.Repos.AnalyticsRepository,
		Recommendations: deps.Repos.RecommendationRepository,
		Settings:        deps.SettingsService,
		Storage:         deps.FileStorage,
		Engine:          engine,
		Publisher:       deps.Hub,
		Authz:           deps.AuthzService,
	}, logger.Component("marking"))

	enqueuer, err := deps.setupQueue(cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.AssessmentService = appServices.NewAssessmentService(appServices.AssessmentDeps{
		Assessments:     deps.Repos.AssessmentRepository,
		Rubrics:         deps.Repos.RubricRepository,
		Works:           deps.Repos.StudentWorkRepository,
		Marks:           deps.Repos.MarkRepository,
		Analytics:       deps.Repos.AnalyticsRepository,
		Recommendations: deps.Repos.RecommendationRepository,
		Settings:        deps.SettingsService,
		Storage:         deps.FileStorage,
		Enqueuer:        enqueuer,
		Authz:           deps.AuthzService,
	}, logger.Component("assessments"))
	deps.WebsiteService = appServices.NewWebsiteService(deps.Repos.WebsiteRepository, logger.Component("website"))
	deps.DashboardService = appServices.NewDashboardService(
		deps.Repos.DashboardRepository,
		deps.Repos.UserRepository,
		deps.Repos.AssessmentRepository,
		deps.Repos.StudentWorkRepository,
		deps.Repos.RecommendationRepository,
		logger.Component("dashboard"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, cfg.JWT.SecureCookies, lgr)
	deps.CatalogController = appControllers.NewCatalogController(deps.CatalogService)
	deps.AssessmentController = appControllers.NewAssessmentController(deps.AssessmentService, lgr)
	deps.MarkingController = appControllers.NewMarkingController(deps.MarkingService, deps.WebsiteService, lgr)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)
	deps.WebsiteController = appControllers.NewWebsiteController(deps.WebsiteService)
	deps.SettingsController = appControllers.NewSettingsController(deps.SettingsService, lgr)

	return deps, nil
}

// setupQueue builds the asynq client and worker when the queue is enabled,
// otherwise marking runs in background goroutines of this process.
func (d *Dependencies) setupQueue(cfg *config.Config) (queue.Enqueuer, error) {
	queueLogger := logger.Component("queue")

	if !cfg.Queue.Enabled {
		d.inlineEnqueuer = queue.NewInlineEnqueuer(d.MarkingService.MarkWorkForUser, queueLogger)
		queueLogger.Info().Msg("Task queue disabled, marking runs in-process")
		return d.inlineEnqueuer, nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	d.asynqClient = asynq.NewClient(redisOpt)

	worker, err := queue.NewWorker(queue.WorkerConfig{
		Redis:       redisOpt,
		Concurrency: cfg.Queue.Concurrency,
	}, d.MarkingService.MarkWorkForUser, d.MarkingService.CleanupAnalytics, queueLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task worker: %w", err)
	}
	d.worker = worker

	return queue.NewAsynqEnqueuer(d.asynqClient, cfg.Queue.MaxRetry, queueLogger), nil
}

// Start launches the websocket hub and the background task processing
func (d *Dependencies) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)

	go d.Hub.Run(ctx)

	if d.worker != nil {
		return d.worker.Start()
	}
	go queue.RunCleanupLoop(ctx, cleanupInterval, d.MarkingService.CleanupAnalytics, logger.Component("queue"))
	return nil
}

// Close stops background work and releases connections. It is safe to call
// on partially built dependencies.
func (d *Dependencies) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.worker != nil {
		d.worker.Shutdown()
	}
	if d.inlineEnqueuer != nil {
		d.inlineEnqueuer.Wait()
	}
	if d.asynqClient != nil {
		if err := d.asynqClient.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close task queue client")
		}
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", pkgAuth.CSRFHeader},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CatalogController,
		deps.AssessmentController,
		deps.MarkingController,
		deps.DashboardController,
		deps.UserController,
		deps.WebsiteController,
		deps.SettingsController,
		deps.WSHandler,
		deps.AuthMiddleware,
	)

	return router
}
