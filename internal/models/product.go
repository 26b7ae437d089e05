package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int             `json:"id"`
	RestaurantID int             `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	BasePrice    decimal.Decimal `json:"base_price"`
	IsActive     bool            `json:"is_active"`
	Extras       []ProductExtra  `json:"extras,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductExtra is an optional add-on offered for a product (e.g. extra cheese).
type ProductExtra struct {
	ID        int             `json:"id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	BasePrice   decimal.Decimal      `json:"base_price"`
	Extras      []CreateExtraRequest `json:"extras"`
}

type CreateExtraRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
