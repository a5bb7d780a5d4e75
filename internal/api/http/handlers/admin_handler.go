package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hairult/hairstyle-service/internal/api/dto"
	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/observability"
	"github.com/hairult/hairstyle-service/internal/service"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

// SuggestionQueries reads suggestion state for operators.
type SuggestionQueries interface {
	ListSuggestions(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.HairstyleSuggestion, error)
	SuggestionHistory(ctx context.Context, suggestionID string) ([]domain.SuggestionHistory, error)
}

// StaleRecoverer fails suggestions stuck in GENERATING.
type StaleRecoverer interface {
	RecoverStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Authenticator exchanges operator credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.AdminToken, error)
}

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	auth        Authenticator
	suggestions SuggestionQueries
	recoverer   StaleRecoverer
	metrics     *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(auth Authenticator, suggestions SuggestionQueries, recoverer StaleRecoverer, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{auth: auth, suggestions: suggestions, recoverer: recoverer, metrics: metrics}
}

// Login POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tok, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		ExpiresAt:   tok.ExpiresAt,
		Role:        string(tok.Role),
	}})
}

// ListSuggestions GET /admin/suggestions?status=&limit=.
func (h *AdminHandler) ListSuggestions(c *fiber.Ctx) error {
	status := domain.SuggestionStatus(strings.ToUpper(c.Query("status", string(domain.SuggestionStatusPending))))
	limit := c.QueryInt("limit", 0)
	items, err := h.suggestions.ListSuggestions(c.UserContext(), status, limit)
	if err != nil {
		return err
	}
	out := make([]dto.SuggestionSummary, 0, len(items))
	for i := range items {
		out = append(out, suggestionSummary(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// History GET /admin/suggestions/:id/history.
func (h *AdminHandler) History(c *fiber.Ctx) error {
	entries, err := h.suggestions.SuggestionHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntry{
			ID:        e.ID,
			EventType: e.EventType,
			Status:    e.Status,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// Recover POST /admin/suggestions/recover.
func (h *AdminHandler) Recover(c *fiber.Ctx) error {
	var req dto.RecoverRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.OlderThanMinutes < 0 {
		return apperrors.NewValidationError("older_than_minutes must not be negative", nil)
	}
	n, err := h.recoverer.RecoverStale(c.UserContext(), time.Duration(req.OlderThanMinutes)*time.Minute)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.RecoverResponse{Recovered: n}})
}

// Metrics GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
