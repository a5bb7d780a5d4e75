package dto

import (
	"time"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a signed operator token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// RecoverRequest tunes a manual stale recovery. Zero uses the configured window.
type RecoverRequest struct {
	OlderThanMinutes int `json:"older_than_minutes"`
}

// RecoverResponse reports how many rows were failed.
type RecoverResponse struct {
	Recovered int64 `json:"recovered"`
}

// HistoryEntry is one recorded suggestion transition.
type HistoryEntry struct {
	ID        string                  `json:"id"`
	EventType string                  `json:"event_type"`
	Status    domain.SuggestionStatus `json:"status"`
	Detail    map[string]any          `json:"detail,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}
