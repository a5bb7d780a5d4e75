package domain

import "time"

// SuggestionHistory is an immutable audit entry for one suggestion transition.
type SuggestionHistory struct {
	ID           string
	SuggestionID string
	GuestID      string
	EventType    string
	Status       SuggestionStatus
	Detail       map[string]any
	CreatedAt    time.Time
}
