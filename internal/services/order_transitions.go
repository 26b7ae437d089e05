package services

import (
	"fmt"

	"resto-backend/internal/models"
)

// validOrderTransitions is the authoritative order state machine. Completed
// and cancelled are terminal.
var validOrderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusActive:  {models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusPending: {models.OrderStatusActive, models.OrderStatusCompleted, models.OrderStatusCancelled},
}

// CanTransitionOrder checks whether an order may move between two states
func CanTransitionOrder(from, to models.OrderStatus) error {
	for _, next := range validOrderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid order transition: %s -> %s", from, to)
}

// orderMutable reports whether items may still be added or changed
func orderMutable(order *models.Order) bool {
	if order.PaymentStatus == models.PaymentStatusPaid {
		return false
	}
	return order.Status == models.OrderStatusActive || order.Status == models.OrderStatusPending
}
