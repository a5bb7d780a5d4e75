package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/events"
	"github.com/hairult/hairstyle-service/internal/imagecodec"
	"github.com/hairult/hairstyle-service/internal/repository"
	"github.com/hairult/hairstyle-service/internal/storage"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

const maxEmailLength = 256

// SubmissionService accepts portraits and queues one suggestion per chosen hairstyle.
type SubmissionService struct {
	guests      repository.GuestRepository
	hairstyles  repository.HairstyleRepository
	suggestions repository.SuggestionRepository
	store       ObjectStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	upload      config.UploadConfig
}

// SubmissionDependencies bundles collaborators for submissions.
type SubmissionDependencies struct {
	GuestRepo      repository.GuestRepository
	HairstyleRepo  repository.HairstyleRepository
	SuggestionRepo repository.SuggestionRepository
	Store          ObjectStore
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Upload         config.UploadConfig
}

// SubmissionInput is a raw submission from a client.
type SubmissionInput struct {
	Email        string
	HairstyleIDs []string
	Image        []byte
}

// Submission is the persisted result of Submit.
type Submission struct {
	Guest       domain.Guest
	Suggestions []domain.HairstyleSuggestion
}

// NewSubmissionService constructs the service.
func NewSubmissionService(deps SubmissionDependencies) *SubmissionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		guests:      deps.GuestRepo,
		hairstyles:  deps.HairstyleRepo,
		suggestions: deps.SuggestionRepo,
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		upload:      deps.Upload,
	}
}

// Submit validates the input, stores the portrait and creates the guest with
// its PENDING suggestions. Validation and duplicate checks happen before any
// side effect.
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (*Submission, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	ids, err := normalizeHairstyleIDs(input.HairstyleIDs)
	if err != nil {
		return nil, err
	}
	if _, err := imagecodec.Validate(input.Image, s.upload.MaxBytes); err != nil {
		return nil, apperrors.NewValidationError("invalid image", map[string]any{"image": err.Error()})
	}
	if err := s.ensureHairstylesExist(ctx, ids); err != nil {
		return nil, err
	}

	exists, err := s.guests.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if exists {
		return nil, apperrors.NewDuplicateEmail(email)
	}

	portrait, format, err := imagecodec.CompressToBudget(input.Image, imagecodec.CompressOptions{
		BudgetBytes:  s.upload.TargetBytes,
		MaxDimension: s.upload.MaxDimension,
	})
	if err != nil {
		return nil, apperrors.NewValidationError("image could not be decoded", map[string]any{"image": err.Error()})
	}

	guestID := uuid.NewString()
	portraitPath, err := s.store.Upload(ctx, storage.PortraitPath(guestID, imagecodec.Extension(format)), portrait, imagecodec.ContentType(format))
	if err != nil {
		s.logger.Error("portrait upload failed", zap.String("guest_id", guestID), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	guest := &domain.Guest{ID: guestID, Email: email, PortraitImagePath: &portraitPath}
	suggestions, err := s.suggestions.CreateSubmission(ctx, guest, ids)
	if err != nil {
		s.logger.Warn("submission not persisted; portrait orphaned",
			zap.String("guest_id", guestID),
			zap.String("portrait_path", portraitPath),
			zap.Error(err))
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(email)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("submission received",
		zap.String("guest_id", guest.ID),
		zap.Int("suggestions", len(suggestions)),
		zap.Int("portrait_bytes", len(portrait)))
	s.publish(ctx, guest.ID, suggestions)

	return &Submission{Guest: *guest, Suggestions: suggestions}, nil
}

func (s *SubmissionService) ensureHairstylesExist(ctx context.Context, ids []string) error {
	found, err := s.hairstyles.ListByIDs(ctx, ids)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if len(found) == len(ids) {
		return nil
	}
	known := make(map[string]struct{}, len(found))
	for _, h := range found {
		known[h.ID] = struct{}{}
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return apperrors.NewValidationError("unknown hairstyle", map[string]any{"hairstyle_ids": unknown})
}

func (s *SubmissionService) publish(ctx context.Context, guestID string, suggestions []domain.HairstyleSuggestion) {
	if s.dispatcher == nil {
		return
	}
	payload := events.SubmissionReceivedPayload{}
	for _, sg := range suggestions {
		payload.SuggestionIDs = append(payload.SuggestionIDs, sg.ID)
		payload.HairstyleIDs = append(payload.HairstyleIDs, sg.HairstyleID)
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSubmissionReceived,
		GuestID:   guestID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventSubmissionReceived)), zap.Error(err))
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.NewValidationError("email required", nil)
	}
	if len(email) > maxEmailLength {
		return "", apperrors.NewValidationError("email too long", map[string]any{"max": maxEmailLength})
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"email": raw})
	}
	return email, nil
}

// normalizeHairstyleIDs drops duplicates, keeping the first occurrence order.
func normalizeHairstyleIDs(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		id := strings.ToLower(strings.TrimSpace(r))
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.NewValidationError("invalid hairstyle id", map[string]any{"hairstyle_id": r})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("at least one hairstyle required", nil)
	}
	return ids, nil
}
