package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-backend/internal/models"
)

type PaymentMethodRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentMethodRepository(db *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{DB: db}
}

// Get returns one payment method, or nil
func (r *PaymentMethodRepository) Get(ctx context.Context, id int) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.DB.QueryRow(ctx, `
		SELECT id, restaurant_id, name, is_cash, is_online, is_active, created_at
		FROM payment_methods
		WHERE id = $1`, id,
	).Scan(&m.ID, &m.RestaurantID, &m.Name, &m.IsCash, &m.IsOnline, &m.IsActive, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// List returns a restaurant's active payment methods
func (r *PaymentMethodRepository) List(ctx context.Context, restaurantID int) ([]models.PaymentMethod, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, restaurant_id, name, is_cash, is_online, is_active, created_at
		FROM payment_methods
		WHERE restaurant_id = $1 AND is_active = true
		ORDER BY id ASC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.IsCash, &m.IsOnline, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// GetCash returns the restaurant's cash method, or nil
func (r *PaymentMethodRepository) GetCash(ctx context.Context, restaurantID int) (*models.PaymentMethod, error) {
	return r.getFlagged(ctx, restaurantID, "is_cash")
}

// GetOnline returns the restaurant's payment-link method, or nil
func (r *PaymentMethodRepository) GetOnline(ctx context.Context, restaurantID int) (*models.PaymentMethod, error) {
	return r.getFlagged(ctx, restaurantID, "is_online")
}

func (r *PaymentMethodRepository) getFlagged(ctx context.Context, restaurantID int, flag string) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.DB.QueryRow(ctx, `
		SELECT id, restaurant_id, name, is_cash, is_online, is_active, created_at
		FROM payment_methods
		WHERE restaurant_id = $1 AND `+flag+` = true AND is_active = true
		LIMIT 1`, restaurantID,
	).Scan(&m.ID, &m.RestaurantID, &m.Name, &m.IsCash, &m.IsOnline, &m.IsActive, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
