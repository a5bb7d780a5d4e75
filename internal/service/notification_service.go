package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/events"
	"github.com/hairult/hairstyle-service/internal/repository"
)

// NotificationService logs lifecycle events, records suggestion history and
// forwards events to an external sink.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  events.Publisher
	history    repository.SuggestionHistoryRepository
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators. Publisher and History may be nil.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Publisher  events.Publisher
	History    repository.SuggestionHistoryRepository
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		publisher:  deps.Publisher,
		history:    deps.History,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to submission and status events and returns the
// subscribed types.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	n.dispatcher.Subscribe(events.EventSubmissionReceived, n.handleSubmissionReceived)
	statusTypes := []events.EventType{
		events.EventSuggestionClaimed,
		events.EventSuggestionCompleted,
		events.EventSuggestionFailed,
	}
	for _, t := range statusTypes {
		n.dispatcher.Subscribe(t, n.handleSuggestionStatus)
	}
	return append([]events.EventType{events.EventSubmissionReceived}, statusTypes...)
}

// Forwarding reports whether events are also sent to Kafka.
func (n *NotificationService) Forwarding() bool {
	return n.publisher != nil
}

func (n *NotificationService) handleSubmissionReceived(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionReceived", zap.String("guest_id", event.GuestID), zap.Any("payload", event.Payload))

	var errs []error
	if payload, ok := event.Payload.(events.SubmissionReceivedPayload); ok {
		for i, id := range payload.SuggestionIDs {
			detail := map[string]any{}
			if i < len(payload.HairstyleIDs) {
				detail["hairstyle_id"] = payload.HairstyleIDs[i]
			}
			errs = append(errs, n.record(ctx, &domain.SuggestionHistory{
				SuggestionID: id,
				GuestID:      event.GuestID,
				EventType:    string(event.Type),
				Status:       domain.SuggestionStatusPending,
				Detail:       detail,
			}))
		}
	}
	errs = append(errs, n.forward(ctx, event))
	return errors.Join(errs...)
}

func (n *NotificationService) handleSuggestionStatus(ctx context.Context, event events.Event) error {
	n.logger.Info("SuggestionStatusChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("suggestion_id", event.SuggestionID),
		zap.String("guest_id", event.GuestID),
		zap.Any("payload", event.Payload))

	var errs []error
	if payload, ok := event.Payload.(events.SuggestionStatusPayload); ok && event.SuggestionID != "" {
		detail := map[string]any{"hairstyle_id": payload.HairstyleID}
		if payload.ImagePath != "" {
			detail["image_path"] = payload.ImagePath
		}
		if payload.Reason != "" {
			detail["reason"] = payload.Reason
		}
		errs = append(errs, n.record(ctx, &domain.SuggestionHistory{
			SuggestionID: event.SuggestionID,
			GuestID:      event.GuestID,
			EventType:    string(event.Type),
			Status:       payload.Status,
			Detail:       detail,
		}))
	}
	errs = append(errs, n.forward(ctx, event))
	return errors.Join(errs...)
}

func (n *NotificationService) record(ctx context.Context, entry *domain.SuggestionHistory) error {
	if n.history == nil {
		return nil
	}
	// History must not be lost because the request that caused it was cancelled.
	if err := n.history.Create(context.WithoutCancel(ctx), entry); err != nil {
		n.logger.Warn("failed to record suggestion history",
			zap.String("suggestion_id", entry.SuggestionID),
			zap.String("event_type", entry.EventType),
			zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil {
		return nil
	}
	if err := n.publisher.Send(ctx, event); err != nil {
		n.logger.Warn("failed to forward event",
			zap.String("event_type", string(event.Type)),
			zap.String("key", event.Key()),
			zap.Error(err))
		return err
	}
	return nil
}
