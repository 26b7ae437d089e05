package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-backend/internal/models"
	"resto-backend/internal/tillcore"
)

// RegisterRepository persists cash registers and their append-only
// transaction ledger. It implements services.TillStore.
type RegisterRepository struct {
	DB *pgxpool.Pool
}

func NewRegisterRepository(db *pgxpool.Pool) *RegisterRepository {
	return &RegisterRepository{DB: db}
}

const registerColumns = `
	r.id, r.restaurant_id, r.opened_by_user_id, COALESCE(u.name, '') AS opened_by_name,
	r.opening_balance, COALESCE(r.opening_notes, '') AS opening_notes, r.opened_at, r.status,
	r.closed_by_user_id, COALESCE(c.name, '') AS closed_by_name,
	r.closing_balance, COALESCE(r.closing_notes, '') AS closing_notes, r.closed_at`

const registerJoins = `
	FROM cash_registers r
	LEFT JOIN users u ON u.id = r.opened_by_user_id
	LEFT JOIN users c ON c.id = r.closed_by_user_id`

func scanRegister(row pgx.Row) (*models.CashRegister, error) {
	var r models.CashRegister
	err := row.Scan(
		&r.ID, &r.RestaurantID, &r.OpenedByUserID, &r.OpenedByName,
		&r.OpeningBalance, &r.OpeningNotes, &r.OpenedAt, &r.Status,
		&r.ClosedByUserID, &r.ClosedByName,
		&r.ClosingBalance, &r.ClosingNotes, &r.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// CurrentOpenRegister returns the restaurant's single open register, or nil
func (r *RegisterRepository) CurrentOpenRegister(ctx context.Context, restaurantID int) (*models.CashRegister, error) {
	query := `SELECT` + registerColumns + registerJoins + `
		WHERE r.restaurant_id = $1 AND r.status = 'open'`
	return scanRegister(r.DB.QueryRow(ctx, query, restaurantID))
}

// GetRegister returns one register by id, or nil
func (r *RegisterRepository) GetRegister(ctx context.Context, id int) (*models.CashRegister, error) {
	query := `SELECT` + registerColumns + registerJoins + ` WHERE r.id = $1`
	return scanRegister(r.DB.QueryRow(ctx, query, id))
}

// CreateRegister inserts a new open register. The partial unique index on
// (restaurant_id) WHERE status = 'open' turns a concurrent double-open into
// tillcore.ErrRegisterAlreadyOpen instead of a second open row.
func (r *RegisterRepository) CreateRegister(ctx context.Context, register *models.CashRegister) error {
	query := `
		INSERT INTO cash_registers (restaurant_id, opened_by_user_id, opening_balance, opening_notes, opened_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRow(ctx, query,
		register.RestaurantID,
		register.OpenedByUserID,
		register.OpeningBalance,
		register.OpeningNotes,
		register.OpenedAt,
		register.Status,
	).Scan(&register.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return tillcore.ErrRegisterAlreadyOpen
		}
		return fmt.Errorf("failed to create cash register: %w", err)
	}
	return nil
}

// CloseRegister persists the one-time close mutation
func (r *RegisterRepository) CloseRegister(ctx context.Context, register *models.CashRegister) error {
	query := `
		UPDATE cash_registers
		SET status = $1, closed_by_user_id = $2, closing_balance = $3, closing_notes = $4, closed_at = $5
		WHERE id = $6 AND status = 'open'
	`
	tag, err := r.DB.Exec(ctx, query,
		register.Status,
		register.ClosedByUserID,
		register.ClosingBalance,
		register.ClosingNotes,
		register.ClosedAt,
		register.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close cash register: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tillcore.ErrRegisterNotOpen
	}
	return nil
}

// ListRegisters returns a restaurant's registers, newest first
func (r *RegisterRepository) ListRegisters(ctx context.Context, restaurantID int, limit int) ([]models.CashRegister, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT` + registerColumns + registerJoins + `
		WHERE r.restaurant_id = $1
		ORDER BY r.opened_at DESC, r.id DESC
		LIMIT $2`

	rows, err := r.DB.Query(ctx, query, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registers []models.CashRegister
	for rows.Next() {
		var reg models.CashRegister
		err := rows.Scan(
			&reg.ID, &reg.RestaurantID, &reg.OpenedByUserID, &reg.OpenedByName,
			&reg.OpeningBalance, &reg.OpeningNotes, &reg.OpenedAt, &reg.Status,
			&reg.ClosedByUserID, &reg.ClosedByName,
			&reg.ClosingBalance, &reg.ClosingNotes, &reg.ClosedAt,
		)
		if err != nil {
			return nil, err
		}
		registers = append(registers, reg)
	}
	return registers, rows.Err()
}

const transactionColumns = `
	t.id, t.cash_register_id, t.order_id, t.order_payment_id, t.type, t.amount, t.balance,
	t.payment_method_id, COALESCE(m.name, '') AS payment_method_name,
	COALESCE(t.notes, '') AS notes, t.created_at`

const transactionJoins = `
	FROM cash_register_transactions t
	LEFT JOIN payment_methods m ON m.id = t.payment_method_id`

func scanTransaction(row pgx.Row) (*models.TillTransaction, error) {
	var t models.TillTransaction
	err := row.Scan(
		&t.ID, &t.CashRegisterID, &t.OrderID, &t.OrderPaymentID, &t.Type, &t.Amount, &t.Balance,
		&t.PaymentMethodID, &t.PaymentMethodName, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// LatestTransaction returns the register's most recent movement, or nil.
// The running balance is derived from this snapshot.
func (r *RegisterRepository) LatestTransaction(ctx context.Context, registerID int) (*models.TillTransaction, error) {
	query := `SELECT` + transactionColumns + transactionJoins + `
		WHERE t.cash_register_id = $1
		ORDER BY t.id DESC
		LIMIT 1`
	return scanTransaction(r.DB.QueryRow(ctx, query, registerID))
}

// CreateTransaction appends one movement. Entries are immutable afterwards;
// there is no update or delete statement in this repository on purpose.
func (r *RegisterRepository) CreateTransaction(ctx context.Context, t *models.TillTransaction) error {
	return createTransaction(ctx, r.DB, t)
}

// ListTransactions returns a register's ledger in creation order
func (r *RegisterRepository) ListTransactions(ctx context.Context, registerID int) ([]models.TillTransaction, error) {
	query := `SELECT` + transactionColumns + transactionJoins + `
		WHERE t.cash_register_id = $1
		ORDER BY t.id ASC`

	rows, err := r.DB.Query(ctx, query, registerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TillTransaction
	for rows.Next() {
		var t models.TillTransaction
		err := rows.Scan(
			&t.ID, &t.CashRegisterID, &t.OrderID, &t.OrderPaymentID, &t.Type, &t.Amount, &t.Balance,
			&t.PaymentMethodID, &t.PaymentMethodName, &t.Notes, &t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

// GetRegisterForUpdateTx re-reads a register under a row lock inside a
// settlement transaction.
func (r *RegisterRepository) GetRegisterForUpdateTx(ctx context.Context, tx pgx.Tx, id int) (*models.CashRegister, error) {
	var reg models.CashRegister
	err := tx.QueryRow(ctx, `
		SELECT id, restaurant_id, opened_by_user_id, opening_balance,
			COALESCE(opening_notes, ''), opened_at, status
		FROM cash_registers
		WHERE id = $1
		FOR UPDATE`, id,
	).Scan(&reg.ID, &reg.RestaurantID, &reg.OpenedByUserID, &reg.OpeningBalance,
		&reg.OpeningNotes, &reg.OpenedAt, &reg.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// LatestTransactionTx reads the latest movement inside a settlement transaction
func (r *RegisterRepository) LatestTransactionTx(ctx context.Context, tx pgx.Tx, registerID int) (*models.TillTransaction, error) {
	query := `SELECT` + transactionColumns + transactionJoins + `
		WHERE t.cash_register_id = $1
		ORDER BY t.id DESC
		LIMIT 1`
	return scanTransaction(tx.QueryRow(ctx, query, registerID))
}

// CreateTransactionTx appends a movement inside a settlement transaction
func (r *RegisterRepository) CreateTransactionTx(ctx context.Context, tx pgx.Tx, t *models.TillTransaction) error {
	return createTransaction(ctx, tx, t)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func createTransaction(ctx context.Context, q execQuerier, t *models.TillTransaction) error {
	query := `
		INSERT INTO cash_register_transactions
			(cash_register_id, order_id, order_payment_id, type, amount, balance, payment_method_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := q.QueryRow(ctx, query,
		t.CashRegisterID,
		t.OrderID,
		t.OrderPaymentID,
		t.Type,
		t.Amount,
		t.Balance,
		t.PaymentMethodID,
		t.Notes,
		t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to append till transaction: %w", err)
	}
	return nil
}
