package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/parcelhub/backend/docs"
	eventapp "github.com/parcelhub/backend/internal/application/event"
	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/parcelhub/backend/internal/infrastructure/auth"
	"github.com/parcelhub/backend/internal/infrastructure/cache"
	"github.com/parcelhub/backend/internal/infrastructure/config"
	"github.com/parcelhub/backend/internal/infrastructure/event"
	"github.com/parcelhub/backend/internal/infrastructure/logger"
	"github.com/parcelhub/backend/internal/infrastructure/persistence"
	"github.com/parcelhub/backend/internal/infrastructure/printing"
	"github.com/parcelhub/backend/internal/infrastructure/scheduler"
	"github.com/parcelhub/backend/internal/infrastructure/storage"
	"github.com/parcelhub/backend/internal/infrastructure/telemetry"
	"github.com/parcelhub/backend/internal/interfaces/http/handler"
	"github.com/parcelhub/backend/internal/interfaces/http/middleware"
	"github.com/parcelhub/backend/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			ParcelHub Ledger API
//	@version		1.0
//	@description	Debt ledger and settlement engine for parcel branches, drivers and customers

//	@contact.name	ParcelHub Platform Team

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Service:    cfg.App.Name,
		Env:        cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logCfg := telCfg
	logCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogExportEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := telemetry.Bridge(baseLog, loggerProvider, cfg.Telemetry.ServiceName)
	// request handlers without a request logger fall back to this one
	undoGlobals := zap.ReplaceGlobals(log)
	defer undoGlobals()
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.InitProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting ParcelHub ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormOpts := []logger.GormLoggerOption{logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh)}
	if cfg.Telemetry.DBLogFullSQL {
		gormOpts = append(gormOpts, logger.WithMaxSQLLength(0))
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), gormOpts...)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("parcelhub/db"), cfg.Telemetry.DBSlowQueryThresh, 15*time.Second, log)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	if err := dbMetrics.Register(ctx, db.DB); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	defer dbMetrics.Stop()

	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:               meterProvider.Meter("parcelhub/ledger"),
		Logger:              log,
		OutstandingProvider: telemetry.NewGormOutstandingProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		ledgerMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
	}
	defer ledgerMetrics.Stop()

	// Redis is optional; every consumer has an in-memory fallback
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory caches", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	// Repositories
	debtRepo := persistence.NewGormDebtRepository(db.DB)
	cashRepo := persistence.NewGormCashTransactionRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	var branchCache cache.BranchCache
	if redisClient != nil {
		branchCache = cache.NewRedisBranchCache(redisClient, cfg.Redis.BranchCacheTTL)
	} else {
		branchCache = cache.NewInMemoryBranchCache(cfg.Redis.BranchCacheTTL)
	}
	branches := cache.NewCachedBranchDirectory(persistence.NewGormBranchDirectory(db.DB), branchCache, log)

	// Outbox: debt writes and their cash entry requests commit together
	serializer := event.NewLedgerSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer, cfg.Event.MaxRetries)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Application services
	debtService := ledgerapp.NewDebtService(txScope, debtRepo, branches,
		ledgerapp.WithMetrics(ledgerMetrics),
		ledgerapp.WithLogger(log.Named("debts")),
	)
	cashLedger := ledgerapp.NewCashLedgerService(cashRepo, ledgerMetrics, log.Named("cash"))

	renderer, reportStorage, devStorage := newExportBackends(ctx, cfg, log)
	var exportRenderer ledgerapp.ReportRenderer
	if renderer != nil {
		exportRenderer = renderer
		defer func() { _ = renderer.Close() }()
	}
	reportService := ledgerapp.NewReportService(debtService, debtRepo, cashRepo, branches,
		exportRenderer, reportStorage, cfg.Storage.LinkTTL, log.Named("reports"))
	deliveryService := eventapp.NewDeliveryService(outboxRepo, log.Named("outbox"))

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore := newIdempotencyStore(cfg, redisClient, log)
	defer func() { _ = idempotencyStore.Close() }()

	var cashHandler shared.EventHandler = ledgerapp.NewCashEntryHandler(cashLedger, log)
	if cfg.Event.IdempotencyEnabled {
		cashHandler = event.NewIdempotentHandler(cashHandler, idempotencyStore, log,
			event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Redis.IdempotencyTTL, Enabled: true}),
		)
	}
	eventBus.Subscribe(cashHandler)
	eventBus.Subscribe(ledgerapp.NewActivityHandler(ledgerMetrics, log.Named("activity")))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var outboxProcessor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		outboxProcessor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
			BatchSize:    cfg.Event.BatchSize,
			PollInterval: cfg.Event.PollInterval,
			RetryBackoff: cfg.Event.RetryBackoff,
		}, log.Named("outbox"))
		outboxProcessor.OnDead(func(ctx context.Context, entry *shared.OutboxEntry) {
			ledgerMetrics.RecordDeadLetter(ctx, entry.EventType)
		})
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	} else {
		log.Warn("Outbox processor disabled; cash entries will queue until it runs")
	}

	// Maintenance jobs
	var jobs handler.JobLister
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(cfg.Scheduler.JobTimeout, log.Named("scheduler"))
		if err := scheduler.RegisterOutboxMaintenance(sched, outboxRepo, scheduler.OutboxMaintenanceConfig{
			PurgeSchedule:     cfg.Scheduler.PurgeSchedule,
			RequeueSchedule:   cfg.Scheduler.RequeueSchedule,
			Retention:         cfg.Scheduler.Retention,
			RequeueEventTypes: []string{ledger.EventTypeCashEntryRequested},
		}, log); err != nil {
			log.Fatal("Failed to register maintenance jobs", zap.Error(err))
		}
		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		jobs = sched
	}

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	secCfg := middleware.DefaultSecurityConfig()
	secCfg.HSTSEnabled = cfg.App.Env == "production"

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log, "/health", "/ready"),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.HTTPMetrics(meterProvider, log),
		middleware.CORSWithConfig(corsCfg),
		middleware.SecureWithConfig(secCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()

	systemHandler := handler.NewSystemHandler(version, jobs, handler.ReadinessCheck{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	})
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, jwtMiddleware),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}
	if devStorage != nil {
		engine.GET("/dev/reports/*key", devReportDownload(devStorage))
	}

	r := router.NewRouter(engine, router.WithGroupMiddleware(
		jwtMiddleware,
		middleware.TracingAttributeInjector(),
		middleware.ProfilingWithConfig(profilingCfg),
		middleware.SpanErrorMarker(),
	))
	r.Register(
		handler.NewLedgerHandler(debtService, reportService, cashLedger),
		handler.NewOutboxHandler(deliveryService),
		systemHandler,
	)
	r.Setup()
	r.LogRoutes(log)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// Stop producers before the bus so in-flight deliveries finish
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Warn("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}
	if err := telemetry.ShutdownAll(shutdownCtx, tracerProvider, meterProvider, loggerProvider); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newExportBackends builds the report renderer and the storage exports go to.
// Without a bucket, development keeps exports in memory and other
// environments leave export disabled.
func newExportBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*printing.ReportRenderer, ledgerapp.ReportStorage, *storage.MemoryReportStorage) {
	renderer, err := printing.NewReportRendererFromConfig(cfg.Printing, log.Named("printing"))
	if err != nil {
		log.Warn("Report renderer unavailable, exports disabled", zap.Error(err))
		return nil, nil, nil
	}

	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ReportStorage(ctx, cfg.Storage,
			storage.WithLogger(log.Named("storage")),
			storage.WithLinkTTL(cfg.Storage.LinkTTL),
		)
		if err != nil {
			log.Fatal("Failed to create report storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Report bucket unavailable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		return renderer, s3Storage, nil
	}

	if cfg.App.Env == "development" {
		mem := storage.NewMemoryReportStorage("http://localhost:" + cfg.App.Port + "/dev/reports")
		log.Info("Report exports kept in memory")
		return renderer, mem, mem
	}
	return renderer, nil, nil
}

// newIdempotencyStore prefers Redis so every instance shares delivery history
func newIdempotencyStore(cfg *config.Config, client *redis.Client, log *zap.Logger) shared.IdempotencyStore {
	opts := []cache.IdempotencyStoreFactoryOption{cache.WithLogger(log)}
	if client != nil {
		opts = append(opts, cache.WithClient(client))
	}
	factory := cache.NewIdempotencyStoreFactory(cfg.Redis, opts...)
	if client == nil {
		return factory.CreateInMemoryStore()
	}
	store, err := factory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	return store
}

// devReportDownload serves exports held in memory during development
func devReportDownload(mem *storage.MemoryReportStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		obj, ok := mem.Get(key)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, obj.ContentType, obj.Body)
	}
}
