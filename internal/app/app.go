package app

import (
	"context"
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/controller"
	"course_risk_backend/internal/repository"
	"course_risk_backend/internal/service"
	"course_risk_backend/pkg/configwatcher"
	"course_risk_backend/pkg/database"
	"course_risk_backend/pkg/logger"
	"course_risk_backend/pkg/monitoring"
	"course_risk_backend/pkg/security"
	"course_risk_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	submission *repository.SubmissionRepository
	risk       *repository.RiskRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	engine     *service.RiskEngineService
	ml         *service.MLService
	suggestion *service.SuggestionService
	course     *service.CourseService
}

type controllers struct {
	auth   *controller.AuthController
	course *controller.CourseController
	risk   *controller.RiskController
	admin  *controller.AdminController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		submission: repository.NewSubmissionRepository(db),
		risk:       repository.NewRiskRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.engine = service.NewRiskEngineService(cfg.Risk)
	s.ml = service.NewMLService(cfg)
	s.suggestion = service.NewSuggestionService(rdb)
	s.course = service.NewCourseService(
		repos.course,
		repos.submission,
		repos.risk,
		repos.user,
		s.engine,
		s.ml,
		s.suggestion,
		s.storage,
		cfg,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		course: controller.NewCourseController(s.course),
		risk:   controller.NewRiskController(s.course),
		admin:  controller.NewAdminController(s.course, s.ml),
		health: controller.NewHealthController(db, rdb, s.ml),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchPolicy hot-reloads the risk policy knobs when the config file
// changes; everything else requires a restart.
func (a *App) watchPolicy() {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		a.services.engine.ApplyPolicy(cfg.Risk)
		logger.Log.Info("risk policy reloaded",
			zap.Int("courseWeeks", cfg.Risk.CourseWeeks),
			zap.Float64("mlBlendWeight", cfg.Risk.MLBlendWeight))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ShouldMigrate())
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("course-risk-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchPolicy()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
