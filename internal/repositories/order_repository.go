package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// Create opens a new tab
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (restaurant_id, table_id, customer_name, status, payment_status,
			subtotal, service_fee, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0, $6, $6)
		RETURNING id
	`
	err := r.DB.QueryRow(ctx, query,
		order.RestaurantID,
		order.TableID,
		order.CustomerName,
		order.Status,
		order.PaymentStatus,
		order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

const orderColumns = `
	id, restaurant_id, table_id, COALESCE(customer_name, '') AS customer_name,
	status, payment_status, subtotal, service_fee, total_amount,
	cash_register_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.TableID, &o.CustomerName,
		&o.Status, &o.PaymentStatus, &o.Subtotal, &o.ServiceFee, &o.TotalAmount,
		&o.CashRegisterID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Get loads an order with its lines, or nil
func (r *OrderRepository) Get(ctx context.Context, id int) (*models.Order, error) {
	order, err := scanOrder(r.DB.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil || order == nil {
		return order, err
	}
	order.Items, err = r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetActiveByTable returns the table's unfinished tab, or nil
func (r *OrderRepository) GetActiveByTable(ctx context.Context, restaurantID, tableID int) (*models.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE restaurant_id = $1 AND table_id = $2 AND status IN ('active', 'pending')
		ORDER BY id DESC
		LIMIT 1`
	order, err := scanOrder(r.DB.QueryRow(ctx, query, restaurantID, tableID))
	if err != nil || order == nil {
		return order, err
	}
	order.Items, err = r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListActive lists a restaurant's open tabs with their lines
func (r *OrderRepository) ListActive(ctx context.Context, restaurantID int) ([]models.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE restaurant_id = $1 AND status IN ('active', 'pending')
		ORDER BY created_at ASC`

	rows, err := r.DB.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.TableID, &o.CustomerName,
			&o.Status, &o.PaymentStatus, &o.Subtotal, &o.ServiceFee, &o.TotalAmount,
			&o.CashRegisterID, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items, err = r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateTotals writes the recomputed subtotal, service fee and total
func (r *OrderRepository) UpdateTotals(ctx context.Context, orderID int, subtotal, serviceFee, total decimal.Decimal) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET subtotal = $1, service_fee = $2, total_amount = $3, updated_at = NOW()
		WHERE id = $4`,
		subtotal, serviceFee, total, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	return nil
}

// UpdateStatus moves an order to a new state
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// MarkPaidTx finalizes an order inside a settlement transaction: paid,
// completed, bound to the register, with the effective fee and total.
func (r *OrderRepository) MarkPaidTx(ctx context.Context, tx pgx.Tx, orderID, registerID int, serviceFee, total decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'paid', status = 'completed', cash_register_id = $1,
			service_fee = $2, total_amount = $3, updated_at = NOW()
		WHERE id = $4`,
		registerID, serviceFee, total, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}

// CreateItem inserts a new order line with its snapshotted extras
func (r *OrderRepository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	extras, err := json.Marshal(item.Extras)
	if err != nil {
		return fmt.Errorf("failed to encode extras: %w", err)
	}
	query := `
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, observation, extras, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = r.DB.QueryRow(ctx, query,
		item.OrderID,
		item.ProductID,
		item.Name,
		item.UnitPrice,
		item.Quantity,
		item.Observation,
		extras,
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// UpdateItemQuantity changes a line's quantity in place
func (r *OrderRepository) UpdateItemQuantity(ctx context.Context, itemID, quantity int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE order_items SET quantity = $1 WHERE id = $2`,
		quantity, itemID)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	return nil
}

// DeleteItem removes a line from an order
func (r *OrderRepository) DeleteItem(ctx context.Context, orderID, itemID int) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM order_items WHERE id = $1 AND order_id = $2`,
		itemID, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found on order %d", itemID, orderID)
	}
	return nil
}

// MarkItemsPrinted stamps lines as dispatched to the kitchen
func (r *OrderRepository) MarkItemsPrinted(ctx context.Context, itemIDs []int) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE order_items SET printed_at = NOW() WHERE id = ANY($1)`,
		itemIDs)
	if err != nil {
		return fmt.Errorf("failed to mark items printed: %w", err)
	}
	return nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, unit_price, quantity,
			COALESCE(observation, '') AS observation, COALESCE(extras, '[]') AS extras,
			printed_at, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := r.DB.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var rawExtras []byte
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity,
			&item.Observation, &rawExtras, &item.PrintedAt, &item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		// A malformed extras payload must not make a historical order
		// unreadable; it degrades to "no extras".
		if len(rawExtras) > 0 {
			if err := json.Unmarshal(rawExtras, &item.Extras); err != nil {
				log.Printf("[Order] Item %d: malformed extras payload, ignoring: %v", item.ID, err)
				item.Extras = nil
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
