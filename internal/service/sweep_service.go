package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/events"
	"github.com/hairult/hairstyle-service/internal/generation"
	"github.com/hairult/hairstyle-service/internal/imagecodec"
	"github.com/hairult/hairstyle-service/internal/observability"
	"github.com/hairult/hairstyle-service/internal/persistence"
	"github.com/hairult/hairstyle-service/internal/repository"
	"github.com/hairult/hairstyle-service/internal/storage"
)

const sweepLockKey = "hairult:sweep:lock"

// Failure reasons recorded on FAILED rows.
const (
	reasonTimedOut       = "generation timed out"
	reasonNoImage        = "model returned no image"
	reasonUploadsFailed  = "all generated images failed to store"
	reasonPortraitFailed = "portrait unavailable"
)

// ObjectStore is the storage gateway used by services.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, fullPath string) ([]byte, error)
	PublicURL(fullPath string) string
}

// ImageGenerator renders a hairstyle onto a portrait.
type ImageGenerator interface {
	Generate(ctx context.Context, portrait generation.Image, descriptor domain.Hairstyle) ([]generation.Image, error)
}

// Locker hands out expiring exclusive locks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	LockSkipped bool `json:"lock_skipped"`
	Recovered   int  `json:"recovered"`
	Fetched     int  `json:"fetched"`
	Skipped     int  `json:"skipped"`
	Claimed     int  `json:"claimed"`
	Completed   int  `json:"completed"`
	Failed      int  `json:"failed"`
	Errored     int  `json:"errored"`
}

type sweepOutcome int

const (
	outcomeCompleted sweepOutcome = iota
	outcomeFailed
	outcomeErrored
)

// SweepService drains PENDING suggestions in bounded batches.
type SweepService struct {
	suggestions repository.SuggestionRepository
	store       ObjectStore
	generator   ImageGenerator
	locker      Locker
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger

	batchSize     int
	concurrency   int
	staleAfter    time.Duration
	lockTTL       time.Duration
	resultFormat  imagecodec.Format
	resultQuality int
	now           func() time.Time
}

// SweepDependencies bundles collaborators for the sweep.
type SweepDependencies struct {
	SuggestionRepo repository.SuggestionRepository
	Store          ObjectStore
	Generator      ImageGenerator
	// Locker may be nil; concurrent sweeps then rely on atomic claims alone.
	Locker     Locker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Sweep      config.SweepConfig
	Result     config.ResultConfig
}

// NewSweepService constructs the service.
func NewSweepService(deps SweepDependencies) (*SweepService, error) {
	format, err := imagecodec.ParseFormat(deps.Result.Format)
	if err != nil {
		return nil, err
	}
	if deps.Sweep.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid sweep batch size %d", deps.Sweep.BatchSize)
	}
	concurrency := deps.Sweep.Concurrency
	if concurrency <= 0 {
		concurrency = deps.Sweep.BatchSize
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{
		suggestions:   deps.SuggestionRepo,
		store:         deps.Store,
		generator:     deps.Generator,
		locker:        deps.Locker,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
		batchSize:     deps.Sweep.BatchSize,
		concurrency:   concurrency,
		staleAfter:    deps.Sweep.StaleAfter(),
		lockTTL:       deps.Sweep.LockTTL(),
		resultFormat:  format,
		resultQuality: deps.Result.Quality,
		now:           time.Now,
	}, nil
}

// Sweep runs one pass: recover stale rows, select the oldest PENDING batch,
// claim what can be claimed and generate those in parallel. Every claimed row
// has reached COMPLETED or FAILED, or was left GENERATING by a database error,
// by the time Sweep returns.
func (s *SweepService) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, sweepLockKey, s.lockTTL)
		if errors.Is(err, persistence.ErrLockHeld) {
			report.LockSkipped = true
			s.logger.Info("sweep already running elsewhere")
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("acquire sweep lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	if s.staleAfter > 0 {
		n, err := s.suggestions.FailStale(ctx, s.now().Add(-s.staleAfter), reasonTimedOut)
		if err != nil {
			return report, fmt.Errorf("recover stale suggestions: %w", err)
		}
		report.Recovered = int(n)
		if n > 0 {
			s.logger.Warn("failed stale generating suggestions", zap.Int64("count", n))
		}
	}

	pending, err := s.suggestions.ListPending(ctx, s.batchSize)
	if err != nil {
		return report, fmt.Errorf("list pending suggestions: %w", err)
	}
	report.Fetched = len(pending)

	claimed := make([]domain.PendingSuggestion, 0, len(pending))
	for _, p := range pending {
		if !p.Guest.HasPortrait() {
			report.Skipped++
			s.logger.Debug("skipping suggestion without portrait",
				zap.String("suggestion_id", p.Suggestion.ID),
				zap.String("guest_id", p.Guest.ID))
			continue
		}
		ok, err := s.suggestions.Claim(ctx, p.Suggestion.ID)
		if err != nil {
			report.Skipped++
			s.logger.Error("claim failed", zap.String("suggestion_id", p.Suggestion.ID), zap.Error(err))
			continue
		}
		if !ok {
			report.Skipped++
			s.logger.Info("suggestion claimed by another sweep", zap.String("suggestion_id", p.Suggestion.ID))
			continue
		}
		p.Suggestion.Status = domain.SuggestionStatusGenerating
		claimed = append(claimed, p)
		s.publish(ctx, s.statusEvent(events.EventSuggestionClaimed, p, "", ""))
	}
	report.Claimed = len(claimed)

	outcomes := make([]sweepOutcome, len(claimed))
	portraits := newPortraitLoader(s.store)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range claimed {
		g.Go(func() error {
			outcomes[i] = s.process(ctx, portraits, claimed[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch o {
		case outcomeCompleted:
			report.Completed++
		case outcomeFailed:
			report.Failed++
		default:
			report.Errored++
		}
	}

	s.metrics.RecordSweepOutcome("recovered", report.Recovered)
	s.metrics.RecordSweepOutcome("skipped", report.Skipped)
	s.metrics.RecordSweepOutcome("completed", report.Completed)
	s.metrics.RecordSweepOutcome("failed", report.Failed)
	s.metrics.RecordSweepOutcome("errored", report.Errored)

	s.logger.Info("sweep finished",
		zap.Int("recovered", report.Recovered),
		zap.Int("fetched", report.Fetched),
		zap.Int("skipped", report.Skipped),
		zap.Int("claimed", report.Claimed),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Int("errored", report.Errored))
	return report, nil
}

func (s *SweepService) process(ctx context.Context, portraits *portraitLoader, p domain.PendingSuggestion) sweepOutcome {
	log := s.logger.With(
		zap.String("suggestion_id", p.Suggestion.ID),
		zap.String("guest_id", p.Guest.ID),
		zap.String("hairstyle", p.Hairstyle.Name))

	portrait, err := portraits.load(ctx, *p.Guest.PortraitImagePath)
	if err != nil {
		log.Error("portrait download failed", zap.Error(err))
		return s.fail(ctx, log, p, fmt.Sprintf("%s: %v", reasonPortraitFailed, err))
	}

	images, err := s.generator.Generate(ctx, portrait, p.Hairstyle)
	if err != nil {
		log.Error("generation failed", zap.Error(err))
		return s.fail(ctx, log, p, err.Error())
	}
	if len(images) == 0 {
		log.Warn("generation returned no image")
		return s.fail(ctx, log, p, reasonNoImage)
	}

	for idx, img := range images {
		data, contentType, ext, err := imagecodec.EncodeResult(img.Data, s.resultFormat, s.resultQuality)
		if err != nil {
			log.Warn("result encoding failed", zap.Int("image", idx), zap.Error(err))
			continue
		}
		fullPath, err := s.store.Upload(ctx, storage.ResultPath(p.Guest.ID, ext), data, contentType)
		if err != nil {
			log.Warn("result upload failed", zap.Int("image", idx), zap.Error(err))
			continue
		}

		// Terminal writes outlive the sweep budget.
		ok, err := s.suggestions.Complete(context.WithoutCancel(ctx), p.Suggestion.ID, fullPath)
		if err != nil {
			log.Error("failed to record completion", zap.String("image_path", fullPath), zap.Error(err))
			return outcomeErrored
		}
		if !ok {
			log.Warn("suggestion left GENERATING before completion", zap.String("image_path", fullPath))
			return outcomeErrored
		}
		log.Info("suggestion completed", zap.String("image_path", fullPath))
		s.publish(ctx, s.statusEvent(events.EventSuggestionCompleted, p, fullPath, ""))
		return outcomeCompleted
	}

	return s.fail(ctx, log, p, reasonUploadsFailed)
}

func (s *SweepService) fail(ctx context.Context, log *zap.Logger, p domain.PendingSuggestion, reason string) sweepOutcome {
	ok, err := s.suggestions.Fail(context.WithoutCancel(ctx), p.Suggestion.ID, reason)
	if err != nil {
		log.Error("failed to record failure", zap.String("reason", reason), zap.Error(err))
		return outcomeErrored
	}
	if !ok {
		log.Warn("suggestion left GENERATING before failure", zap.String("reason", reason))
		return outcomeErrored
	}
	s.publish(ctx, s.statusEvent(events.EventSuggestionFailed, p, "", reason))
	return outcomeFailed
}

func (s *SweepService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (s *SweepService) statusEvent(t events.EventType, p domain.PendingSuggestion, imagePath, reason string) events.Event {
	status := domain.SuggestionStatusGenerating
	switch t {
	case events.EventSuggestionCompleted:
		status = domain.SuggestionStatusCompleted
	case events.EventSuggestionFailed:
		status = domain.SuggestionStatusFailed
	}
	return events.Event{
		ID:           uuid.NewString(),
		Type:         t,
		GuestID:      p.Guest.ID,
		SuggestionID: p.Suggestion.ID,
		Timestamp:    s.now().UTC(),
		Payload: events.SuggestionStatusPayload{
			HairstyleID: p.Hairstyle.ID,
			Status:      status,
			ImagePath:   imagePath,
			Reason:      reason,
		},
	}
}

// portraitLoader downloads each portrait at most once per sweep.
type portraitLoader struct {
	store ObjectStore
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]generation.Image
}

func newPortraitLoader(store ObjectStore) *portraitLoader {
	return &portraitLoader{store: store, cache: make(map[string]generation.Image)}
}

func (l *portraitLoader) load(ctx context.Context, fullPath string) (generation.Image, error) {
	l.mu.Lock()
	img, ok := l.cache[fullPath]
	l.mu.Unlock()
	if ok {
		return img, nil
	}

	v, err, _ := l.group.Do(fullPath, func() (interface{}, error) {
		l.mu.Lock()
		img, ok := l.cache[fullPath]
		l.mu.Unlock()
		if ok {
			return img, nil
		}
		data, err := l.store.Download(ctx, fullPath)
		if err != nil {
			return generation.Image{}, err
		}
		mime := "image/jpeg"
		if format, err := imagecodec.Detect(data); err == nil {
			mime = imagecodec.ContentType(format)
		}
		img = generation.Image{Data: data, MIMEType: mime}
		l.mu.Lock()
		l.cache[fullPath] = img
		l.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return generation.Image{}, err
	}
	return v.(generation.Image), nil
}

// RecoverStale fails GENERATING rows untouched for longer than olderThan.
// A non-positive olderThan uses the configured stale window.
func (s *SweepService) RecoverStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = s.staleAfter
	}
	if olderThan <= 0 {
		return 0, nil
	}
	n, err := s.suggestions.FailStale(ctx, s.now().Add(-olderThan), reasonTimedOut)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordSweepOutcome("recovered", int(n))
	s.logger.Info("stale suggestions recovered", zap.Int64("count", n), zap.Duration("older_than", olderThan))
	return n, nil
}
