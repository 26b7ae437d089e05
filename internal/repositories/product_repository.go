package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-backend/internal/models"
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

// Create inserts a product with its extras
func (r *ProductRepository) Create(ctx context.Context, restaurantID int, req *models.CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		BasePrice:    req.BasePrice.Round(2),
		IsActive:     true,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (restaurant_id, name, description, category, base_price, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, created_at, updated_at`,
		restaurantID, req.Name, req.Description, req.Category, product.BasePrice,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	for _, x := range req.Extras {
		extra := models.ProductExtra{ProductID: product.ID, Name: x.Name, Price: x.Price.Round(2)}
		err := r.DB.QueryRow(ctx, `
			INSERT INTO product_extras (product_id, name, price)
			VALUES ($1, $2, $3)
			RETURNING id`,
			product.ID, extra.Name, extra.Price,
		).Scan(&extra.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create product extra: %w", err)
		}
		product.Extras = append(product.Extras, extra)
	}
	return product, nil
}

// Get returns a product with its extras, or nil
func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, restaurant_id, name, COALESCE(description, ''), COALESCE(category, ''),
			base_price, is_active, created_at, updated_at
		FROM products
		WHERE id = $1`, id,
	).Scan(&p.ID, &p.RestaurantID, &p.Name, &p.Description, &p.Category,
		&p.BasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.Extras, err = r.listExtras(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns a restaurant's active products
func (r *ProductRepository) List(ctx context.Context, restaurantID int) ([]models.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, restaurant_id, name, COALESCE(description, ''), COALESCE(category, ''),
			base_price, is_active, created_at, updated_at
		FROM products
		WHERE restaurant_id = $1 AND is_active = true
		ORDER BY category, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.RestaurantID, &p.Name, &p.Description, &p.Category,
			&p.BasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Extras, err = r.listExtras(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return products, nil
}

// Deactivate soft-deletes a product; historical order lines keep their snapshot
func (r *ProductRepository) Deactivate(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	return nil
}

func (r *ProductRepository) listExtras(ctx context.Context, productID int) ([]models.ProductExtra, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, name, price
		FROM product_extras
		WHERE product_id = $1
		ORDER BY id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []models.ProductExtra
	for rows.Next() {
		var x models.ProductExtra
		if err := rows.Scan(&x.ID, &x.ProductID, &x.Name, &x.Price); err != nil {
			return nil, err
		}
		extras = append(extras, x)
	}
	return extras, rows.Err()
}
