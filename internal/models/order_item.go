package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one line in an order. Name, unit price and extras are
// snapshotted at add time so historical orders survive catalog changes.
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   *int            `json:"product_id,omitempty"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // base price + per-unit extras
	Quantity    int             `json:"quantity"`
	Observation string          `json:"observation,omitempty"` // e.g. "sem cebola"
	Extras      []ItemExtra     `json:"extras,omitempty"`
	PrintedAt   *time.Time      `json:"printed_at,omitempty"` // kitchen ticket dispatched
	CreatedAt   time.Time       `json:"created_at"`
}

// ItemExtra is a snapshotted add-on selection on an order line
type ItemExtra struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// LineTotal returns unit price times quantity
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItemRequest represents the request body for adding a line to an order
type AddItemRequest struct {
	ProductID   int    `json:"product_id"`
	Quantity    int    `json:"quantity"`
	Observation string `json:"observation"`
	ExtraIDs    []int  `json:"extra_ids"`
}

// ChangeQuantityRequest updates a line's quantity; zero or less removes the line
type ChangeQuantityRequest struct {
	Quantity int `json:"quantity"`
}
