package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicbook/config"
	"clinicbook/cron"
	"clinicbook/database"
	catalogRepo "clinicbook/database/repository/catalog"
	ledgerRepo "clinicbook/database/repository/ledger"
	"clinicbook/handlers"
	"clinicbook/middleware"
	"clinicbook/routes"
	"clinicbook/services/availability"
	"clinicbook/services/booking"
	"clinicbook/services/catalog"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	shutdownTracing := utils.SetupTracing(cfg.ServiceName, cfg.OTLPEndpoint, cfg.OTLPInsecure)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// storage backends.
	var probes []utils.HealthProbe
	if cfg.CatalogBackend == "mongo" || cfg.LedgerBackend == "mongo" {
		if err := database.InitDB(); err != nil {
			logger.Fatal("main: mongo unavailable", zap.Error(err))
		}
		probes = append(probes, utils.HealthProbe{Name: "mongo", Check: func(ctx context.Context) error {
			return database.MongoClient.Ping(ctx, nil)
		}})
	}
	if cfg.LedgerBackend == "postgres" {
		if err := database.InitPostgres(context.Background()); err != nil {
			logger.Fatal("main: postgres unavailable", zap.Error(err))
		}
		probes = append(probes, utils.HealthProbe{Name: "postgres", Check: func(ctx context.Context) error {
			return database.PostgresPool.Ping(ctx)
		}})
	}
	if cfg.CatalogCacheEnabled {
		if err := utils.InitCache(); err != nil {
			logger.Warn("main: catalog cache disabled", zap.Error(err))
		}
	}
	if client := utils.GetCacheClient(); client != nil {
		probes = append(probes, utils.HealthProbe{Name: "redis", Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}

	// repositories.
	var catalogStore catalogRepo.CatalogRepository
	switch cfg.CatalogBackend {
	case "memory":
		catalogStore = catalogRepo.NewMemoryCatalog()
	default:
		store, err := catalogRepo.NewMongoCatalog(database.MongoDatabase(), cfg.StorageTimeout, cfg.StorageRetryBackoff)
		if err != nil {
			logger.Fatal("main: catalog store", zap.Error(err))
		}
		catalogStore = store
	}
	catalogStore = catalogRepo.NewCachedCatalog(catalogStore, utils.GetCacheClient(), cfg.CatalogCacheTTL, logger)

	var ledgerStore ledgerRepo.LedgerRepository
	switch cfg.LedgerBackend {
	case "memory":
		ledgerStore = ledgerRepo.NewMemoryLedger()
	case "postgres":
		store := ledgerRepo.NewPostgresLedger(database.PostgresPool, cfg.StorageTimeout, cfg.StorageRetryBackoff)
		if err := store.EnsureSchema(context.Background()); err != nil {
			logger.Fatal("main: ledger schema", zap.Error(err))
		}
		ledgerStore = store
	default:
		store, err := ledgerRepo.NewMongoLedger(database.MongoDatabase(), cfg.StorageTimeout, cfg.StorageRetryBackoff)
		if err != nil {
			logger.Fatal("main: ledger store", zap.Error(err))
		}
		ledgerStore = store
	}
	logger.Info("main: storage ready",
		zap.String("catalog", cfg.CatalogBackend),
		zap.String("ledger", cfg.LedgerBackend),
		zap.Bool("cache", utils.GetCacheClient() != nil))

	validator, err := utils.NewSessionValidator(utils.ValidatorConfig{
		Secret:   cfg.JWTSecret,
		JWKSURL:  cfg.JWTJWKSURL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   cfg.JWTLeeway,
	})
	if err != nil {
		logger.Fatal("main: session token validator", zap.Error(err))
	}
	defer validator.Close()

	// services.
	calculator := &availability.Calculator{
		Catalog:      catalogStore,
		Ledger:       ledgerStore,
		Stride:       cfg.SlotStride(),
		MaxRangeDays: cfg.MaxRangeDays,
		Now:          time.Now,
		Logger:       logger,
	}
	bookingService := &booking.DefaultBookingService{
		Catalog:      catalogStore,
		Ledger:       ledgerStore,
		Availability: calculator,
		Now:          time.Now,
		Logger:       logger,
	}
	catalogService := catalog.NewCatalogService(catalogStore, logger)

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService, logger),
		handlers.NewCatalogHandler(catalogService),
		&handlers.HealthHandler{Service: cfg.ServiceName},
	)

	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger, cfg.SlowRequestThreshold))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, cfg.RateLimitBurst))
	routes.RegisterRoutes(router, handlerBundle, validator, cfg.CORSAllowedOrigins)

	healthWorker, err := cron.InitHealthWorker(cfg.HealthCheckSchedule, probes, logger)
	if err != nil {
		logger.Fatal("main: invalid HEALTH_CHECK_SCHEDULE", zap.Error(err))
	}

	// Start the HTTP server.
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	healthWorker.Stop()
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("main: tracing shutdown", zap.Error(err))
	}
	database.Close(ctx)
	if client := utils.GetCacheClient(); client != nil {
		_ = client.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
