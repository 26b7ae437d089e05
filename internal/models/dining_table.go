package models

import "time"

type DiningTable struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	Number       int       `json:"number"`
	Name         string    `json:"name"` // e.g. "Varanda 3"
	Seats        int       `json:"seats"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateTableRequest represents the request body for registering a dining table
type CreateTableRequest struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Seats  int    `json:"seats"`
}
