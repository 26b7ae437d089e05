package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a table's tab
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusPending   OrderStatus = "pending" // sent to kitchen, awaiting preparation
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks how far an order is from being settled
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Order is a single table's open tab
type Order struct {
	ID             int             `json:"id"`
	RestaurantID   int             `json:"restaurant_id"`
	TableID        int             `json:"table_id"`
	CustomerName   string          `json:"customer_name,omitempty"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CashRegisterID *int            `json:"cash_register_id,omitempty"` // bound at payment completion
	Items          []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateOrderRequest opens a tab for a table
type CreateOrderRequest struct {
	TableID      int    `json:"table_id"`
	CustomerName string `json:"customer_name"`
}

// OrderEvent is published whenever an order changes status or is paid.
// The kitchen order board consumes these over the event channel.
type OrderEvent struct {
	OrderID      int         `json:"order_id"`
	TableID      int         `json:"table_id"`
	RestaurantID int         `json:"restaurant_id"`
	Kind         string      `json:"kind"` // created, items_changed, status_changed, paid, cancelled
	Status       OrderStatus `json:"status"`
	At           time.Time   `json:"at"`
}
