package domain

import "time"

// SuggestionStatus enumerates lifecycle states for hairstyle suggestions.
type SuggestionStatus string

const (
	SuggestionStatusPending    SuggestionStatus = "PENDING"
	SuggestionStatusGenerating SuggestionStatus = "GENERATING"
	SuggestionStatusCompleted  SuggestionStatus = "COMPLETED"
	SuggestionStatusFailed     SuggestionStatus = "FAILED"
)

var suggestionTransitions = map[SuggestionStatus][]SuggestionStatus{
	SuggestionStatusPending:    {SuggestionStatusGenerating},
	SuggestionStatusGenerating: {SuggestionStatusCompleted, SuggestionStatusFailed},
}

// Valid reports whether s is a known status.
func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionStatusPending, SuggestionStatusGenerating, SuggestionStatusCompleted, SuggestionStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s SuggestionStatus) Terminal() bool {
	return s == SuggestionStatusCompleted || s == SuggestionStatusFailed
}

// CanTransition reports whether moving from s to next is allowed.
// Statuses only move forward; nothing returns to PENDING.
func (s SuggestionStatus) CanTransition(next SuggestionStatus) bool {
	for _, allowed := range suggestionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HairstyleSuggestion is a request to render one hairstyle onto one guest's portrait.
type HairstyleSuggestion struct {
	ID           string
	GuestID      string
	HairstyleID  string
	ImagePath    *string
	Status       SuggestionStatus
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingSuggestion bundles a queued suggestion with its owner and target style.
type PendingSuggestion struct {
	Suggestion HairstyleSuggestion
	Guest      Guest
	Hairstyle  Hairstyle
}

// SuggestionView is a suggestion joined with the hairstyle name for display.
type SuggestionView struct {
	HairstyleSuggestion
	HairstyleName string
}
