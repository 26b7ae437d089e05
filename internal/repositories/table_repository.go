package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-backend/internal/models"
)

type TableRepository struct {
	DB *pgxpool.Pool
}

func NewTableRepository(db *pgxpool.Pool) *TableRepository {
	return &TableRepository{DB: db}
}

func (r *TableRepository) Create(ctx context.Context, restaurantID int, req *models.CreateTableRequest) (*models.DiningTable, error) {
	table := &models.DiningTable{
		RestaurantID: restaurantID,
		Number:       req.Number,
		Name:         req.Name,
		Seats:        req.Seats,
		IsActive:     true,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO dining_tables (restaurant_id, number, name, seats, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, created_at`,
		restaurantID, req.Number, req.Name, req.Seats,
	).Scan(&table.ID, &table.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create dining table: %w", err)
	}
	return table, nil
}

func (r *TableRepository) Get(ctx context.Context, id int) (*models.DiningTable, error) {
	var t models.DiningTable
	err := r.DB.QueryRow(ctx, `
		SELECT id, restaurant_id, number, COALESCE(name, ''), seats, is_active, created_at
		FROM dining_tables
		WHERE id = $1`, id,
	).Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Name, &t.Seats, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TableRepository) List(ctx context.Context, restaurantID int) ([]models.DiningTable, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, restaurant_id, number, COALESCE(name, ''), seats, is_active, created_at
		FROM dining_tables
		WHERE restaurant_id = $1 AND is_active = true
		ORDER BY number ASC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.DiningTable
	for rows.Next() {
		var t models.DiningTable
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Name, &t.Seats, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}
