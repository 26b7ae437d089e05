package models

import "time"

// PaymentMethod is a way a customer can settle an order (cash, credit card,
// debit card, pix, online link...). The cash method is the only one whose
// till transactions count toward the physical drawer balance.
type PaymentMethod struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	Name         string    `json:"name"`
	IsCash       bool      `json:"is_cash"`
	IsOnline     bool      `json:"is_online"` // settled through the payment-link gateway
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
