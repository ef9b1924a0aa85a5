package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/hoa/backend/internal/infrastructure/audit"
	"github.com/hoa/backend/internal/infrastructure/config"
	"github.com/hoa/backend/internal/infrastructure/event"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/hoa/backend/internal/infrastructure/logger"
	"github.com/hoa/backend/internal/infrastructure/persistence"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/hoa/backend/internal/interfaces/http/handler"
	"github.com/hoa/backend/internal/interfaces/http/middleware"
	"github.com/hoa/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting HOA billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
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
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.Enabled && cfg.Telemetry.TraceDB {
		if err := telemetry.RegisterDBTracing(db.DB, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Period locker: Redis-backed when enabled, otherwise in-process.
	var locker lock.PeriodLocker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = redisClient.Close()
		}()
		locker = lock.NewRedisPeriodLocker(redisClient, "billing:period_lock:")
		log.Info("Using Redis period locker", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = lock.NewInMemoryPeriodLocker()
		log.Info("Using in-memory period locker")
	}

	// Repositories
	periodRepo := persistence.NewGormBillingPeriodRepository(db.DB)
	accrualRepo := persistence.NewGormPeriodAccrualRepository(db.DB)
	plotRepo := persistence.NewGormPlotRepository(db.DB)
	tariffRepo := persistence.NewGormTariffRepository(db.DB)
	overrideRepo := persistence.NewGormTariffOverrideRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	planRepo := persistence.NewGormRepaymentPlanRepository(db.DB)

	txScope := persistence.NewGormTransactionScope(db.DB)
	auditRecorder := audit.NewZapRecorder(log)
	eventPublisher := event.NewZapEventPublisher(log)

	// Application services
	periodService := appbilling.NewPeriodService(txScope, periodRepo, locker, eventPublisher, auditRecorder)
	accrualService := appbilling.NewAccrualService(txScope, periodRepo, accrualRepo, plotRepo, tariffRepo, overrideRepo, locker, eventPublisher, auditRecorder)
	importService := appbilling.NewPaymentImportService(txScope, periodService, plotRepo, paymentRepo, locker, eventPublisher, auditRecorder)
	reconciliationService := appbilling.NewReconciliationService(periodRepo, plotRepo, accrualRepo, paymentRepo)
	planService := appbilling.NewRepaymentPlanService(planRepo, plotRepo, auditRecorder)
	tariffService := appbilling.NewTariffService(tariffRepo, auditRecorder)
	overrideService := appbilling.NewTariffOverrideService(overrideRepo, tariffRepo, plotRepo, auditRecorder)

	// HTTP layer
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Actor())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.RequestLogger(log))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	billingRoutes := router.NewBillingRoutes(
		handler.NewBillingPeriodHandler(periodService),
		handler.NewAccrualHandler(accrualService),
		handler.NewPaymentHandler(importService),
		handler.NewReconciliationHandler(reconciliationService),
		handler.NewRepaymentPlanHandler(planService),
		handler.NewTariffHandler(tariffService, overrideService),
	)
	systemHandler := handler.NewSystemHandler(db)

	r := router.NewRouter(engine)
	r.Register(billingRoutes).Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
