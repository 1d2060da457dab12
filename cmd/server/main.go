package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/application/authz"
	engagementapp "github.com/unicef/etools-sub003/internal/application/engagement"
	integrationapp "github.com/unicef/etools-sub003/internal/application/integration"
	lastmileapp "github.com/unicef/etools-sub003/internal/application/lastmile"
	notificationapp "github.com/unicef/etools-sub003/internal/application/notification"
	pseaapp "github.com/unicef/etools-sub003/internal/application/psea"
	riskapp "github.com/unicef/etools-sub003/internal/application/risk"
	tpmapp "github.com/unicef/etools-sub003/internal/application/tpm"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/notification"
	"github.com/unicef/etools-sub003/internal/domain/permission"
	"github.com/unicef/etools-sub003/internal/infrastructure/auth"
	"github.com/unicef/etools-sub003/internal/infrastructure/cache"
	"github.com/unicef/etools-sub003/internal/infrastructure/config"
	"github.com/unicef/etools-sub003/internal/infrastructure/erp"
	"github.com/unicef/etools-sub003/internal/infrastructure/event"
	"github.com/unicef/etools-sub003/internal/infrastructure/logger"
	"github.com/unicef/etools-sub003/internal/infrastructure/notify"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence"
	"github.com/unicef/etools-sub003/internal/interfaces/http/handler"
	"github.com/unicef/etools-sub003/internal/interfaces/http/middleware"
	"github.com/unicef/etools-sub003/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting assurance platform core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	// Notification idempotency backed by Redis; an in-memory store keeps
	// development environments running without one.
	var idempotencyStore notification.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisStore
	}

	sender := notify.NewLogSender(cfg.Notify.DefaultFromEmail, log)
	dispatcher := notification.NewDispatcher(sender, idempotencyStore, cfg.Notify.IdempotencyWindow, log)

	// Repositories
	engagementRepo := persistence.NewGormEngagementRepository(db.DB)
	visitRepo := persistence.NewGormTPMVisitRepository(db.DB)
	assessmentRepo := persistence.NewGormPSEAAssessmentRepository(db.DB)
	indicatorRepo := persistence.NewGormIndicatorRepository(db.DB)
	catalogRepo := persistence.NewGormRiskCatalogRepository(db.DB)
	answerRepo := persistence.NewGormRiskAnswerRepository(db.DB)
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	poiRepo := persistence.NewGormPointOfInterestRepository(db.DB)
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	poRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	staffRepo := persistence.NewGormStaffMemberRepository(db.DB)

	// Permission matrix and role resolution
	matrix := permission.Default()
	resolver := identity.NewRoleResolver(cfg.Platform.UNICEFEmailSuffix)
	authorizer := authz.New(matrix, resolver)

	// Event bus and notification routing
	eventBus := event.NewInMemoryEventBus(log)
	eventHandler := notificationapp.NewEventHandler(dispatcher, userRepo, log)
	eventBus.Subscribe(eventHandler)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	engagementService := engagementapp.NewService(
		engagementRepo, orgRepo, catalogRepo, answerRepo,
		authorizer, cfg.Platform.CountryShort, log)
	tpmService := tpmapp.NewService(visitRepo, orgRepo, authorizer, log)
	pseaService := pseaapp.NewService(
		assessmentRepo, indicatorRepo, poRepo,
		authorizer, cfg.Platform.CountryShort, log)
	riskService := riskapp.NewService(catalogRepo, answerRepo, log)
	lastmileService := lastmileapp.NewService(
		poiRepo, materialRepo, transferRepo, itemRepo, auditRepo,
		authorizer, cfg.Platform.RUTFMaterials, log)
	erpClient := erp.NewClient(cfg.ERP, log)
	integrationService := integrationapp.NewService(
		poRepo, orgRepo, userRepo, staffRepo, poiRepo, erpClient, dispatcher, log)

	engagementService.SetEventPublisher(eventBus)
	tpmService.SetEventPublisher(eventBus)
	pseaService.SetEventPublisher(eventBus)
	lastmileService.SetEventPublisher(eventBus)

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.JWTAuthMiddleware(jwtService,
		"/api/v1/health",
		"/api/v1/ready"))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(version, db.Ping))
	r.Register(handler.NewEngagementHandler(engagementService, matrix))
	r.Register(handler.NewTPMVisitHandler(tpmService, matrix))
	r.Register(handler.NewPSEAHandler(pseaService, matrix))
	r.Register(handler.NewRiskHandler(riskService))
	r.Register(handler.NewLastMileHandler(lastmileService))
	r.Register(handler.NewIntegrationHandler(integrationService))
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
