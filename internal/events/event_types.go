package events

import (
	"time"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionReceived  EventType = "submission_received"
	EventSuggestionClaimed   EventType = "suggestion_claimed"
	EventSuggestionCompleted EventType = "suggestion_completed"
	EventSuggestionFailed    EventType = "suggestion_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	GuestID      string      `json:"guest_id"`
	SuggestionID string      `json:"suggestion_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload,omitempty"`
}

// Key returns the partitioning key for the event: the suggestion when set, else the guest.
func (e Event) Key() string {
	if e.SuggestionID != "" {
		return e.SuggestionID
	}
	return e.GuestID
}

// SubmissionReceivedPayload payload.
type SubmissionReceivedPayload struct {
	SuggestionIDs []string `json:"suggestion_ids"`
	HairstyleIDs  []string `json:"hairstyle_ids"`
}

// SuggestionStatusPayload is shared by claim, completion and failure events.
type SuggestionStatusPayload struct {
	HairstyleID string                  `json:"hairstyle_id"`
	Status      domain.SuggestionStatus `json:"status"`
	ImagePath   string                  `json:"image_path,omitempty"`
	Reason      string                  `json:"reason,omitempty"`
}
