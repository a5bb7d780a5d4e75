package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls int
	boom := errors.New("boom")
	d.Subscribe(EventSuggestionFailed, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventSuggestionFailed, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventSuggestionCompleted, func(context.Context, Event) error {
		t.Fatal("handler for another type must not run")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSuggestionFailed})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
}

func TestEventKey(t *testing.T) {
	if got := (Event{GuestID: "g", SuggestionID: "s"}).Key(); got != "s" {
		t.Fatalf("expected suggestion key, got %q", got)
	}
	if got := (Event{GuestID: "g"}).Key(); got != "g" {
		t.Fatalf("expected guest key, got %q", got)
	}
}
