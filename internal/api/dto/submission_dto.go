package dto

import (
	"time"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// SubmissionRequest is the JSON submission payload. Image is base64, with or
// without a data URL prefix.
type SubmissionRequest struct {
	Email        string   `json:"email" form:"email"`
	HairstyleIDs []string `json:"hairstyle_ids" form:"hairstyle_ids"`
	Image        string   `json:"image" form:"-"`
}

// SubmissionResponse acknowledges a queued submission.
type SubmissionResponse struct {
	GuestID     string              `json:"guest_id"`
	ResultsURL  string              `json:"results_url"`
	Suggestions []SuggestionSummary `json:"suggestions"`
}

// SuggestionSummary is a suggestion without its joined data.
type SuggestionSummary struct {
	ID          string                  `json:"id"`
	GuestID     string                  `json:"guest_id"`
	HairstyleID string                  `json:"hairstyle_id"`
	Status      domain.SuggestionStatus `json:"status"`
	ImagePath   *string                 `json:"image_path,omitempty"`
	Error       *string                 `json:"error,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ResultsResponse is the per-guest results view.
type ResultsResponse struct {
	GuestID     string             `json:"guest_id"`
	Email       string             `json:"email"`
	PortraitURL string             `json:"portrait_url,omitempty"`
	Suggestions []SuggestionResult `json:"suggestions"`
}

// SuggestionResult is one row of the results view.
type SuggestionResult struct {
	ID            string                  `json:"id"`
	HairstyleID   string                  `json:"hairstyle_id"`
	HairstyleName string                  `json:"hairstyle_name"`
	Status        domain.SuggestionStatus `json:"status"`
	ImageURL      string                  `json:"image_url,omitempty"`
	Error         string                  `json:"error,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}
