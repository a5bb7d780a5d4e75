package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/repository"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

const (
	defaultAdminListLimit = 50
	maxAdminListLimit     = 500
)

// ResultsService builds the per-guest results view.
type ResultsService struct {
	guests      repository.GuestRepository
	suggestions repository.SuggestionRepository
	history     repository.SuggestionHistoryRepository
	store       ObjectStore
}

// ResultsDependencies bundles collaborators for results.
type ResultsDependencies struct {
	GuestRepo      repository.GuestRepository
	SuggestionRepo repository.SuggestionRepository
	HistoryRepo    repository.SuggestionHistoryRepository
	Store          ObjectStore
}

// Results is everything a guest sees about their submission.
type Results struct {
	Guest       domain.Guest
	PortraitURL string
	Suggestions []SuggestionResult
}

// SuggestionResult is one suggestion with its resolved image URL.
type SuggestionResult struct {
	ID            string
	HairstyleID   string
	HairstyleName string
	Status        domain.SuggestionStatus
	ImageURL      string
	Error         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewResultsService constructs the service.
func NewResultsService(deps ResultsDependencies) *ResultsService {
	return &ResultsService{
		guests:      deps.GuestRepo,
		suggestions: deps.SuggestionRepo,
		history:     deps.HistoryRepo,
		store:       deps.Store,
	}
}

// GetResults returns the guest and every suggestion in creation order. Image
// URLs are set only on COMPLETED rows and error text only on FAILED rows.
func (s *ResultsService) GetResults(ctx context.Context, guestID string) (*Results, error) {
	if _, err := uuid.Parse(guestID); err != nil {
		return nil, apperrors.NewNotFound("guest", map[string]any{"id": guestID})
	}
	guest, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("guest", map[string]any{"id": guestID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	views, err := s.suggestions.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	res := &Results{Guest: *guest, Suggestions: make([]SuggestionResult, 0, len(views))}
	if guest.HasPortrait() {
		res.PortraitURL = s.store.PublicURL(*guest.PortraitImagePath)
	}
	for _, v := range views {
		item := SuggestionResult{
			ID:            v.ID,
			HairstyleID:   v.HairstyleID,
			HairstyleName: v.HairstyleName,
			Status:        v.Status,
			CreatedAt:     v.CreatedAt,
			UpdatedAt:     v.UpdatedAt,
		}
		if v.Status == domain.SuggestionStatusCompleted && v.ImagePath != nil {
			item.ImageURL = s.store.PublicURL(*v.ImagePath)
		}
		if v.Status == domain.SuggestionStatusFailed && v.ErrorMessage != nil {
			item.Error = *v.ErrorMessage
		}
		res.Suggestions = append(res.Suggestions, item)
	}
	return res, nil
}

// ListSuggestions returns suggestions in one status for operators.
func (s *ResultsService) ListSuggestions(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.HairstyleSuggestion, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	if limit <= 0 {
		limit = defaultAdminListLimit
	}
	if limit > maxAdminListLimit {
		limit = maxAdminListLimit
	}
	items, err := s.suggestions.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// SuggestionHistory returns the recorded transitions of one suggestion, oldest first.
func (s *ResultsService) SuggestionHistory(ctx context.Context, suggestionID string) ([]domain.SuggestionHistory, error) {
	if _, err := uuid.Parse(suggestionID); err != nil {
		return nil, apperrors.NewNotFound("suggestion", map[string]any{"id": suggestionID})
	}
	if s.history == nil {
		return []domain.SuggestionHistory{}, nil
	}
	entries, err := s.history.ListBySuggestion(ctx, suggestionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if entries == nil {
		entries = []domain.SuggestionHistory{}
	}
	return entries, nil
}
