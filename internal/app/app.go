package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/controller"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/configwatcher"
	"vocaman_backend/pkg/database"
	"vocaman_backend/pkg/logger"
	"vocaman_backend/pkg/monitoring"
	"vocaman_backend/pkg/security"
	"vocaman_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *gorm.DB
	Redis   *redis.Client
	Origins *security.OriginSet

	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	relation     *repository.RelationRepository
	dataset      *repository.DatasetRepository
	content      *repository.ContentRepository
	homework     *repository.HomeworkRepository
	game         *repository.GameRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	relation     *service.RelationService
	dataset      *service.DatasetService
	content      *service.ContentService
	storage      *service.StorageService
	game         *service.GameService
	homework     *service.HomeworkService
	notification *service.NotificationService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	dataset      *controller.DatasetController
	content      *controller.ContentController
	game         *controller.GameController
	homework     *controller.HomeworkController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		relation:     repository.NewRelationRepository(db),
		dataset:      repository.NewDatasetRepository(db),
		content:      repository.NewContentRepository(db),
		homework:     repository.NewHomeworkRepository(db),
		game:         repository.NewGameRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	store := repository.NewStore(db, cfg.Database.QueryTimeout())
	cache := repository.NewCache(rdb)

	return &services{
		auth:         service.NewAuthService(store, repos.user, cache, cfg, service.NewGoogleVerifier(cfg.Google.ClientID)),
		user:         service.NewUserService(store, repos.user, repos.game),
		relation:     service.NewRelationService(store, repos.relation, repos.user, repos.notification),
		dataset:      service.NewDatasetService(store, repos.dataset, repos.content, cache),
		content:      service.NewContentService(store, repos.content),
		storage:      service.NewStorageService(cfg),
		game:         service.NewGameService(store, repos.dataset, repos.content, repos.game, cache),
		homework:     service.NewHomeworkService(store, repos.homework, repos.relation, repos.dataset, repos.user, repos.notification),
		notification: service.NewNotificationService(store, repos.notification),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user, s.relation),
		dataset:      controller.NewDatasetController(s.dataset),
		content:      controller.NewContentController(s.content, s.storage),
		game:         controller.NewGameController(s.game),
		homework:     controller.NewHomeworkController(s.homework),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(a.Origins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services and routes on top of already opened
// connections. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Origins: security.NewOriginSet(cfg.CORS.AllowedOrigins),
	}

	if err := util.RegisterValidators(); err != nil {
		logger.Log.Error("Failed to register validators", zap.Error(err))
	}
	monitoring.Init()

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db, rdb)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(next *config.Config) {
		app.Origins.Replace(next.CORS.AllowedOrigins)
		logger.SetMode(next.Server.Mode)
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// the cache only speeds things up, run without it
		logger.Log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		rdb = nil
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		err := configwatcher.WatchConfig(ctx, filepath.Join("configs", "config.yaml"), func(next *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(next)
			}
		})
		if err != nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("listen failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	logger.Sync()
}
