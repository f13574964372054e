package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingapp "github.com/freightcore/backend/internal/application/booking"
	eventapp "github.com/freightcore/backend/internal/application/event"
	identityapp "github.com/freightcore/backend/internal/application/identity"
	mdapp "github.com/freightcore/backend/internal/application/masterdata"
	rateapp "github.com/freightcore/backend/internal/application/rate"
	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/auth"
	"github.com/freightcore/backend/internal/infrastructure/cache"
	"github.com/freightcore/backend/internal/infrastructure/config"
	"github.com/freightcore/backend/internal/infrastructure/event"
	"github.com/freightcore/backend/internal/infrastructure/logger"
	"github.com/freightcore/backend/internal/infrastructure/persistence"
	"github.com/freightcore/backend/internal/infrastructure/scheduler"
	"github.com/freightcore/backend/internal/infrastructure/telemetry"
	"github.com/freightcore/backend/internal/interfaces/http/handler"
	"github.com/freightcore/backend/internal/interfaces/http/middleware"
	"github.com/freightcore/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freightcore/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Freight Booking API
//	@version		1.0
//	@description	Multi-tenant freight booking: rate contracts, tariff calculation and the booking lifecycle.

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

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
		Service:    cfg.App.Name,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry needs a logger, and the logger tees into the OTEL log bridge,
	// so the logger is built twice
	providers, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		ProfilingEnabled:  cfg.Telemetry.ProfilingEnabled,
		PyroscopeAddress:  cfg.Telemetry.PyroscopeAddress,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	if providers.Logs.IsEnabled() {
		level, _ := logger.ParseLevel(cfg.Log.Level)
		if log, err = logger.New(logCfg, providers.Logs.Core(cfg.Telemetry.ServiceName, level)); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting freight backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		LogFullSQL:    cfg.Telemetry.DBLogFullSQL,
		Tracing: &telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Events are written to the outbox inside each aggregate's transaction
	serializer := event.NewDomainEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer).WithMaxRetries(cfg.Event.MaxRetries)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	branchRepo := persistence.NewGormBranchRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	articleRepo := persistence.NewGormArticleRepository(db.DB)
	contractRepo := persistence.NewGormRateContractRepository(db.DB, outboxPublisher)
	bookingRepo := persistence.NewGormBookingRepository(db.DB, outboxPublisher, booking.NewLRNumberFormat(cfg.Booking.LRSequenceWidth))
	userRepo := persistence.NewGormUserRepository(db.DB, outboxPublisher)

	bookingMetrics, err := telemetry.NewBookingMetrics(providers.Meter.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create booking metrics", zap.Error(err))
	}

	policy, err := tariffPolicy(cfg.Tariff)
	if err != nil {
		log.Fatal("Invalid tariff configuration", zap.Error(err))
	}
	calculator, err := tariff.NewCalculator(policy)
	if err != nil {
		log.Fatal("Invalid tariff configuration", zap.Error(err))
	}

	guard := tenancy.NewGuard()
	jwtService := auth.NewJWTService(cfg.JWT)

	bookingService := bookingapp.NewBookingService(bookingapp.BookingServiceConfig{
		Bookings:   bookingRepo,
		Resolver:   rate.NewResolver(contractRepo),
		Calculator: calculator,
		Guard:      guard,
		Branches:   branchRepo,
		Customers:  customerRepo,
		Articles:   articleRepo,
		Metrics:    bookingMetrics,
		Logger:     log,
		Location:   cfg.Booking.Location(),
	})
	contractService := rateapp.NewContractService(contractRepo, customerRepo, articleRepo, guard, log)
	branchService := mdapp.NewBranchService(branchRepo, guard, log)
	customerService := mdapp.NewCustomerService(customerRepo, branchRepo, guard, log)
	articleService := mdapp.NewArticleService(articleRepo, branchRepo, guard, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, cfg.JWT, log)
	userService := identityapp.NewUserService(userRepo, branchRepo, guard, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, guard, log)

	// Event relay: outbox -> bus -> idempotent subscribers
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore, err := cache.NewIdempotencyStore(context.Background(), cfg.Redis, false, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	eventBus.Subscribe(event.NewIdempotentHandler(
		event.NewBookingMetricsHandler(bookingMetrics),
		idempotencyStore,
		shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true},
		log,
	))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  time.Hour,
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorConfig, bookingMetrics, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	if cfg.Scheduler.ContractExpiryEnabled {
		expiry, err := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			Name:          "contract-expiry",
			Hour:          cfg.Scheduler.ContractExpiryHour,
			Minute:        cfg.Scheduler.ContractExpiryMinute,
			Location:      cfg.Booking.Location(),
			CheckInterval: cfg.Scheduler.CheckInterval,
		}, contractService.ExpireEnded, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := expiry.Start(context.Background()); err != nil {
			log.Fatal("Failed to start contract expiry job", zap.Error(err))
		}
		defer func() {
			if err := expiry.Stop(context.Background()); err != nil {
				log.Error("Error stopping contract expiry job", zap.Error(err))
			}
		}()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			SkipPaths:   []string{"/health", "/api/v1/health"},
		},
		Metrics: middleware.HTTPMetricsConfig{
			MeterProvider: providers.Meter,
			Enabled:       cfg.Telemetry.Enabled,
		},
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})
	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.Telemetry.ProfilingEnabled

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	defer loginLimiter.Stop()

	systemHandler := handler.NewSystemHandler(sqlDB, outboxService, docs.SwaggerInfo.Version)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.APIGroups(router.Handlers{
			Auth:       handler.NewAuthHandler(authService),
			Booking:    handler.NewBookingHandler(bookingService),
			Contract:   handler.NewRateContractHandler(contractService),
			MasterData: handler.NewMasterDataHandler(branchService, customerService, articleService),
			User:       handler.NewUserHandler(userService),
			System:     systemHandler,
		}, router.Guards{
			Authenticated: []gin.HandlerFunc{jwtMiddleware, middleware.SpanAttributes(), middleware.Profiling(profiling)},
			Login:         []gin.HandlerFunc{middleware.RateLimit(loginLimiter)},
		})...).
		Setup()

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:     true,
				RequireAuth: cfg.App.Env == "production",
				AllowedIPs:  cfg.Swagger.AllowedIPs,
			}, jwtMiddleware),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
		log.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// tariffPolicy builds the pricing policy from configuration
func tariffPolicy(cfg config.TariffConfig) (tariff.Policy, error) {
	tiers, err := cfg.ParseBulkTiers()
	if err != nil {
		return tariff.Policy{}, err
	}
	policy := tariff.Policy{
		TaxPercentage:             cfg.TaxPercentage,
		SpecialHandlingMultiplier: cfg.SpecialHandlingMultiplier,
		VolumetricDivisor:         cfg.VolumetricDivisor,
		BulkTiers:                 make([]tariff.BulkTier, len(tiers)),
	}
	for i, t := range tiers {
		policy.BulkTiers[i] = tariff.BulkTier{MinQuantity: t.MinQuantity, Percentage: t.Percentage}
	}
	return policy, nil
}
