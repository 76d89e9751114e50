package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/controller"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/pkg/configwatcher"
	"exam_prep_backend/pkg/database"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"
	"exam_prep_backend/pkg/security"
	"exam_prep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	whitelist  *repository.WhitelistRepository
	paper      *repository.PaperRepository
	question   *repository.QuestionRepository
	difficulty *repository.DifficultyRepository
	attempt    *repository.TestAttemptRepository
	answer     *repository.TestAnswerRepository
	summary    *repository.SummaryRepository
}

type services struct {
	auth        *service.AuthService
	whitelist   *service.WhitelistService
	storage     *service.StorageService
	content     *service.ContentService
	calibration *service.CalibrationService
	selection   *service.SelectionService
	test        *service.TestService
	dashboard   *service.DashboardService
}

type controllers struct {
	auth      *controller.AuthController
	whitelist *controller.WhitelistController
	content   *controller.ContentController
	test      *controller.TestController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		whitelist:  repository.NewWhitelistRepository(db),
		paper:      repository.NewPaperRepository(db),
		question:   repository.NewQuestionRepository(db),
		difficulty: repository.NewDifficultyRepository(db),
		attempt:    repository.NewTestAttemptRepository(db),
		answer:     repository.NewTestAnswerRepository(db),
		summary:    repository.NewSummaryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.whitelist, cfg)
	s.whitelist = service.NewWhitelistService(repos.whitelist)
	s.content = service.NewContentService(repos.paper, repos.question, s.storage)
	s.calibration = service.NewCalibrationService(repos.difficulty, repos.question, db)
	s.selection = service.NewSelectionService(repos.question, repos.difficulty)
	s.dashboard = service.NewDashboardService(repos.summary, repos.attempt, repos.answer, rdb, db)

	// 看板服务消费测试完成通知
	s.test = service.NewTestService(
		repos.attempt,
		repos.answer,
		repos.question,
		s.selection,
		s.calibration,
		s.dashboard,
		rdb,
		cfg,
		db,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		whitelist: controller.NewWhitelistController(s.whitelist),
		content:   controller.NewContentController(s.content),
		test:      controller.NewTestController(s.test, s.calibration),
		dashboard: controller.NewDashboardController(s.dashboard),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 超时未交卷的会话定期标记为放弃
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		for range ticker.C {
			if err := s.test.AbandonStale(); err != nil {
				logger.Log.Error("abandon stale attempts error", zap.Error(err))
			}
		}
	}()

	// 配置热更新
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// redis 不可用时降级运行，缓存路径各自判空
		logger.Log.Warn("Failed to initialize redis, running without cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-prep-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
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
