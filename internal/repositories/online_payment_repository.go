package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-backend/internal/models"
)

type OnlinePaymentRepository struct {
	DB *pgxpool.Pool
}

func NewOnlinePaymentRepository(db *pgxpool.Pool) *OnlinePaymentRepository {
	return &OnlinePaymentRepository{DB: db}
}

func (r *OnlinePaymentRepository) Create(ctx context.Context, p *models.OnlinePayment) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO online_payments (order_id, razorpay_order_id, amount, include_service_fee, status)
		VALUES ($1, $2, $3, $4, 'created')
		RETURNING id, created_at, updated_at`,
		p.OrderID, p.RazorpayOrderID, p.Amount, p.IncludeServiceFee,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create online payment: %w", err)
	}
	p.Status = models.OnlinePaymentCreated
	return nil
}

func (r *OnlinePaymentRepository) GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.OnlinePayment, error) {
	var p models.OnlinePayment
	err := r.DB.QueryRow(ctx, `
		SELECT id, order_id, razorpay_order_id, COALESCE(razorpay_payment_id, ''),
		       amount, include_service_fee, status, COALESCE(method, ''),
		       COALESCE(failure_reason, ''), created_at, updated_at
		FROM online_payments
		WHERE razorpay_order_id = $1`, razorpayOrderID,
	).Scan(&p.ID, &p.OrderID, &p.RazorpayOrderID, &p.RazorpayPaymentID,
		&p.Amount, &p.IncludeServiceFee, &p.Status, &p.Method,
		&p.FailureReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// MarkSuccess records the gateway confirmation. Returns false when the row
// was already marked successful, so webhook replays settle nothing twice.
func (r *OnlinePaymentRepository) MarkSuccess(ctx context.Context, razorpayOrderID, razorpayPaymentID, method string) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE online_payments
		SET status = 'success', razorpay_payment_id = $2, method = $3, updated_at = NOW()
		WHERE razorpay_order_id = $1 AND status <> 'success'`,
		razorpayOrderID, razorpayPaymentID, method)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OnlinePaymentRepository) MarkFailed(ctx context.Context, razorpayOrderID, reason string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE online_payments
		SET status = 'failed', failure_reason = $2, updated_at = NOW()
		WHERE razorpay_order_id = $1 AND status <> 'success'`,
		razorpayOrderID, reason)
	return err
}

func (r *OnlinePaymentRepository) ListByOrder(ctx context.Context, orderID int) ([]models.OnlinePayment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, razorpay_order_id, COALESCE(razorpay_payment_id, ''),
		       amount, include_service_fee, status, COALESCE(method, ''),
		       COALESCE(failure_reason, ''), created_at, updated_at
		FROM online_payments
		WHERE order_id = $1
		ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.OnlinePayment
	for rows.Next() {
		var p models.OnlinePayment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.RazorpayOrderID, &p.RazorpayPaymentID,
			&p.Amount, &p.IncludeServiceFee, &p.Status, &p.Method,
			&p.FailureReason, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
