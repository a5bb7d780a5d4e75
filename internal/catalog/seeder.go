package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// Store is the catalog persistence the seeder needs.
type Store interface {
	GetByName(ctx context.Context, name string) (*domain.Hairstyle, error)
	Create(ctx context.Context, h *domain.Hairstyle) error
}

// SeedReport counts seeding outcomes.
type SeedReport struct {
	Existing int
	Created  int
	Failed   int
}

// Seeder inserts classified styles that are not yet in the catalog.
type Seeder struct {
	store      Store
	classifier Classifier
	logger     *zap.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(store Store, classifier Classifier, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, classifier: classifier, logger: logger}
}

// Run seeds every style in order. A failed classification or insert is logged
// and counted; the run continues with the next style.
func (s *Seeder) Run(ctx context.Context, styles []SeedStyle) (SeedReport, error) {
	var report SeedReport
	for _, style := range styles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, err := s.store.GetByName(ctx, style.Name)
		if err == nil {
			report.Existing++
			s.logger.Info("hairstyle already exists", zap.String("name", style.Name))
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return report, err
		}

		h, err := s.classifier.Classify(ctx, style)
		if err != nil {
			report.Failed++
			s.logger.Warn("classification failed", zap.String("name", style.Name), zap.Error(err))
			continue
		}
		if err := s.store.Create(ctx, h); err != nil {
			report.Failed++
			s.logger.Warn("insert failed", zap.String("name", style.Name), zap.Error(err))
			continue
		}
		report.Created++
		s.logger.Info("hairstyle seeded",
			zap.String("name", h.Name),
			zap.String("id", h.ID),
			zap.String("hair_length", string(h.HairLength)))
	}
	return report, nil
}
