package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hairult/hairstyle-service/internal/api/http"
	"github.com/hairult/hairstyle-service/internal/api/http/handlers"
	"github.com/hairult/hairstyle-service/internal/auth"
	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/events"
	"github.com/hairult/hairstyle-service/internal/generation"
	"github.com/hairult/hairstyle-service/internal/observability"
	"github.com/hairult/hairstyle-service/internal/persistence"
	"github.com/hairult/hairstyle-service/internal/repository"
	"github.com/hairult/hairstyle-service/internal/service"
	"github.com/hairult/hairstyle-service/internal/storage"
	"github.com/hairult/hairstyle-service/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.NewGateway(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}
	generator, err := generation.NewClient(ctx, cfg.Gemini, logger)
	if err != nil {
		logger.Fatal("failed to init generation client", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Fatal("failed to init kafka publisher", zap.Error(err))
		}
		defer publisher.Close() //nolint:errcheck
	}

	pool := pg.PoolHandle()
	guestRepo := repository.NewGuestRepository(pool)
	hairstyleRepo := repository.NewHairstyleRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	historyRepo := repository.NewSuggestionHistoryRepository(pool)

	worker.StartNotificationWorker(service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Publisher:  publisher,
		History:    historyRepo,
		Logger:     logger,
	}), logger)

	sweepDeps := service.SweepDependencies{
		SuggestionRepo: suggestionRepo,
		Store:          store,
		Generator:      generator,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		Sweep:          cfg.Sweep,
		Result:         cfg.Result,
	}
	if locker := persistence.NewRedisLocker(redis); locker != nil {
		sweepDeps.Locker = locker
	}
	sweepService, err := service.NewSweepService(sweepDeps)
	if err != nil {
		logger.Fatal("failed to init sweep service", zap.Error(err))
	}

	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		GuestRepo:      guestRepo,
		HairstyleRepo:  hairstyleRepo,
		SuggestionRepo: suggestionRepo,
		Store:          store,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Upload:         cfg.Upload,
	})
	resultsService := service.NewResultsService(service.ResultsDependencies{
		GuestRepo:      guestRepo,
		SuggestionRepo: suggestionRepo,
		HistoryRepo:    historyRepo,
		Store:          store,
	})
	catalogService := service.NewCatalogService(hairstyleRepo)

	tokens := auth.NewTokenManager(cfg.Auth.AdminJWTSecret, cfg.Auth.AdminTokenTTL())
	authService := service.NewAuthService(cfg.Auth, tokens, logger)

	checks := map[string]handlers.Pinger{"postgres": pg, "redis": nil}
	if redis.Enabled() {
		checks["redis"] = redis
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Submissions:     handlers.NewSubmissionHandler(submissionService, cfg.App.PublicBaseURL, cfg.Upload.MaxBytes),
		Results:         handlers.NewResultsHandler(resultsService),
		Hairstyles:      handlers.NewHairstylesHandler(catalogService),
		Sweep:           handlers.NewSweepHandler(sweepService, cfg.Sweep.LockTTL()),
		Admin:           handlers.NewAdminHandler(authService, resultsService, sweepService, metrics),
		AdminMiddleware: auth.NewAdminMiddleware(tokens),
		CronSecret:      cfg.Auth.CronSecret,
	})

	sweepDone := worker.StartSweepWorker(ctx, sweepService, cfg.Sweep.Interval(), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	<-sweepDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
