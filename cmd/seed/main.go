package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/catalog"
	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/observability"
	"github.com/hairult/hairstyle-service/internal/persistence"
	"github.com/hairult/hairstyle-service/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Gemini.APIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	classifier, err := catalog.NewGeminiClassifier(ctx, cfg.Gemini.APIKey, cfg.Gemini.TextModel)
	if err != nil {
		logger.Fatal("failed to init classifier", zap.Error(err))
	}
	defer classifier.Close() //nolint:errcheck

	seeder := catalog.NewSeeder(repository.NewHairstyleRepository(pg.PoolHandle()), classifier, logger)
	report, err := seeder.Run(ctx, catalog.DefaultStyles)
	if err != nil {
		logger.Fatal("seeding aborted", zap.Error(err),
			zap.Int("existing", report.Existing),
			zap.Int("created", report.Created),
			zap.Int("failed", report.Failed))
	}
	logger.Info("seeding finished",
		zap.Int("existing", report.Existing),
		zap.Int("created", report.Created),
		zap.Int("failed", report.Failed))
}
