package worker

import (
	"go.uber.org/zap"

	"github.com/hairult/hairstyle-service/internal/events"
	"github.com/hairult/hairstyle-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to suggestion
// events and returns the subscribed types.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) []events.EventType {
	if notifications == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	subscribed := notifications.RegisterHandlers()
	names := make([]string, 0, len(subscribed))
	for _, t := range subscribed {
		names = append(names, string(t))
	}
	logger.Info("notification worker subscribed",
		zap.Strings("event_types", names),
		zap.Bool("kafka_forwarding", notifications.Forwarding()))
	return subscribed
}
