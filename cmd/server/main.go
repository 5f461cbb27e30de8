package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appidentity "github.com/commercehub/backoffice/internal/application/identity"
	appprocurement "github.com/commercehub/backoffice/internal/application/procurement"
	"github.com/commercehub/backoffice/internal/infrastructure/auth"
	"github.com/commercehub/backoffice/internal/infrastructure/config"
	"github.com/commercehub/backoffice/internal/infrastructure/logger"
	"github.com/commercehub/backoffice/internal/infrastructure/notification"
	"github.com/commercehub/backoffice/internal/infrastructure/persistence"
	"github.com/commercehub/backoffice/internal/infrastructure/telemetry"
	"github.com/commercehub/backoffice/internal/interfaces/http/handler"
	"github.com/commercehub/backoffice/internal/interfaces/http/middleware"
	"github.com/commercehub/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, caching and notifications degrade", zap.Error(err))
	}

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	historyRepo := persistence.NewGormApprovalHistoryRepository(db.DB)
	backorderRepo := persistence.NewGormBackorderRepository(db.DB)
	fulfillmentRepo := persistence.NewGormFulfillmentOrderRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	actorRepo := persistence.NewCachedActorRepository(
		persistence.NewGormActorRepository(db.DB), redisClient, log)

	// Collaborators
	permissions := appidentity.NewPermissionEvaluator(cfg.Approval.DistributorSelfApproval)
	notifier := notification.NewRedisNotifier(redisClient, log)
	calendar := notification.NewRedisCalendarScheduler(redisClient, cfg.Approval.ReminderLeadTime, log)

	// Application services
	orderGenerator := appprocurement.NewOrderGenerator(fulfillmentRepo, productRepo, stockRepo, log)
	backorderManager := appprocurement.NewBackorderManager(backorderRepo, notifier, log)
	poService := appprocurement.NewPurchaseOrderService(
		orderRepo, historyRepo, actorRepo, permissions, stockRepo, notifier, log)
	approvalService := appprocurement.NewApprovalService(
		orderRepo, historyRepo, actorRepo, permissions,
		orderGenerator, backorderManager, notifier, calendar, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := buildEngine(cfg, log, jwtService)
	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db, version)).
		Register(handler.NewPurchaseOrderHandler(poService)).
		Register(handler.NewApprovalHandler(approvalService)).
		Register(handler.NewBackorderHandler(backorderManager)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

func buildEngine(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	return engine
}
