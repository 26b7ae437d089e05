package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-backend/internal/models"
)

type OrderPaymentRepository struct {
	DB *pgxpool.Pool
}

func NewOrderPaymentRepository(db *pgxpool.Pool) *OrderPaymentRepository {
	return &OrderPaymentRepository{DB: db}
}

// CreateTx inserts an allocation inside a settlement transaction
func (r *OrderPaymentRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *models.OrderPayment) error {
	query := `
		INSERT INTO order_payments (order_id, payment_method_id, amount, include_service_fee, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := tx.QueryRow(ctx, query,
		p.OrderID,
		p.PaymentMethodID,
		p.Amount,
		p.IncludeServiceFee,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create order payment: %w", err)
	}
	return nil
}

// SetTransactionTx binds the allocation to its till transaction. The column
// is unique, so a replayed settlement cannot double-bind.
func (r *OrderPaymentRepository) SetTransactionTx(ctx context.Context, tx pgx.Tx, paymentID, transactionID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE order_payments SET cash_register_transaction_id = $1 WHERE id = $2`,
		transactionID, paymentID)
	if err != nil {
		return fmt.Errorf("failed to bind order payment to transaction: %w", err)
	}
	return nil
}

// ListByOrder returns an order's allocations in creation order
func (r *OrderPaymentRepository) ListByOrder(ctx context.Context, orderID int) ([]models.OrderPayment, error) {
	query := `
		SELECT p.id, p.order_id, p.payment_method_id, COALESCE(m.name, '') AS payment_method_name,
			p.amount, p.include_service_fee, p.cash_register_transaction_id, p.created_at
		FROM order_payments p
		LEFT JOIN payment_methods m ON m.id = p.payment_method_id
		WHERE p.order_id = $1
		ORDER BY p.id ASC
	`
	rows, err := r.DB.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.OrderPayment
	for rows.Next() {
		var p models.OrderPayment
		err := rows.Scan(
			&p.ID, &p.OrderID, &p.PaymentMethodID, &p.PaymentMethodName,
			&p.Amount, &p.IncludeServiceFee, &p.TransactionID, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
