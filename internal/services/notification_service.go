package services

import (
	"context"
	"encoding/json"
	"log"

	"resto-backend/internal/cache"
	"resto-backend/internal/models"
)

// NotificationService fans order lifecycle events out over Redis pub/sub.
// The websocket order board subscribes to the same channel. Events are
// best-effort; a dead Redis drops them without affecting order flow.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (s *NotificationService) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Notify] Failed to marshal order event: %v", err)
		return
	}
	if err := cache.Publish(ctx, cache.OrderEventsChannel, payload); err != nil {
		log.Printf("[Notify] Failed to publish order event for order %d: %v", event.OrderID, err)
	}
}
