package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"receiptiq/internal/config"
	"receiptiq/internal/database"
	"receiptiq/internal/database/migration"
	handlers "receiptiq/internal/http/handler"
	"receiptiq/internal/http/middleware"
	"receiptiq/internal/lock"
	"receiptiq/internal/logging"
	"receiptiq/internal/otel"
	"receiptiq/internal/pdfcheck"
	"receiptiq/internal/pipeline"
	"receiptiq/internal/reconcile"
	"receiptiq/internal/repository/postgres"
	"receiptiq/internal/service"
	"receiptiq/internal/storage"
)

// @title Receipt API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()
	logger := logging.New(logging.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Location: cfg.Location(),
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Str("event", "config_invalid").Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	locker, closeLocker := newLocker(ctx, cfg.Redis, logger)
	defer closeLocker()

	pipeMetrics, err := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register pipeline metrics")
	}
	pipe, err := pipeline.Build(cfg, pipeMetrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build extraction pipeline")
	}

	fileRepo := postgres.NewReceiptFilePostgres(db)
	receiptRepo := postgres.NewReceiptPostgres(db)

	fileSvc := service.NewReceiptFileService(service.ReceiptFileDeps{
		Store:         objStore,
		Files:         fileRepo,
		Validator:     pdfcheck.NewValidator(logger),
		Pipeline:      pipe,
		Reconciler:    reconcile.NewReconciler(receiptRepo, logger),
		Locker:        locker,
		LockTTL:       cfg.Redis.LockTTL,
		PresignExpiry: cfg.MinIO.PresignExpiry,
		TempDir:       cfg.TempDir,
		Logger:        logger,
	})
	receiptSvc := service.NewReceiptService(receiptRepo)

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    20 * 1024 * 1024,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, prometheus.DefaultGatherer, handlers.Services{
		Files:    fileSvc,
		Receipts: receiptSvc,
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("event", "server_start").Str("addr", addr).Msg("listening")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

// newLocker picks the Redis lock when REDIS_URL is set and the in-process lock otherwise.
func newLocker(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (lock.Locker, func()) {
	if cfg.URL == "" {
		logger.Warn().Str("event", "lock_local").Msg("REDIS_URL not set, using in-process lock")
		return lock.NewLocal(), func() {}
	}

	r, err := lock.NewRedis(cfg.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure redis lock")
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to reach redis")
	}
	return r, func() { _ = r.Close() }
}
