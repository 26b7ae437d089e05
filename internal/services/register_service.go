package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"resto-backend/internal/metrics"
	"resto-backend/internal/models"
	"resto-backend/internal/tillcore"
	"resto-backend/internal/timeutil"
)

// TillStore is the persistence surface the register service needs. The pgx
// repository implements it for production; tests use an in-memory store.
// Implementations must return (nil, nil) for "not found" lookups.
type TillStore interface {
	CurrentOpenRegister(ctx context.Context, restaurantID int) (*models.CashRegister, error)
	GetRegister(ctx context.Context, id int) (*models.CashRegister, error)
	CreateRegister(ctx context.Context, register *models.CashRegister) error
	CloseRegister(ctx context.Context, register *models.CashRegister) error
	ListRegisters(ctx context.Context, restaurantID int, limit int) ([]models.CashRegister, error)
	LatestTransaction(ctx context.Context, registerID int) (*models.TillTransaction, error)
	CreateTransaction(ctx context.Context, tx *models.TillTransaction) error
	ListTransactions(ctx context.Context, registerID int) ([]models.TillTransaction, error)
}

// BalanceCache is an explicitly-invalidated read-through cache for expected
// balances, keyed by register id. A nil cache disables caching.
type BalanceCache interface {
	GetBalance(ctx context.Context, registerID int) (decimal.Decimal, bool)
	SetBalance(ctx context.Context, registerID int, balance decimal.Decimal)
	InvalidateBalance(ctx context.Context, registerID int)
}

// AppendContext carries the optional references a till transaction may bind
type AppendContext struct {
	OrderID           *int
	OrderPaymentID    *int
	PaymentMethodID   *int // nil means cash
	PaymentMethodName string
	Notes             string
}

type RegisterService struct {
	store                TillStore
	cache                BalanceCache
	discrepancyThreshold decimal.Decimal
}

func NewRegisterService(store TillStore, cache BalanceCache, discrepancyThreshold decimal.Decimal) *RegisterService {
	return &RegisterService{
		store:                store,
		cache:                cache,
		discrepancyThreshold: discrepancyThreshold,
	}
}

// Store exposes the underlying till store for collaborators that share it
func (s *RegisterService) Store() TillStore {
	return s.store
}

// Open starts a new till session. Fails when the restaurant already has an
// open register; the schema's partial unique index backs this check against
// concurrent opens.
func (s *RegisterService) Open(ctx context.Context, restaurantID, userID int, req *models.OpenRegisterRequest) (*models.CashRegister, error) {
	if req.OpeningBalance.IsNegative() {
		return nil, tillcore.ErrInvalidAmount
	}

	existing, err := s.store.CurrentOpenRegister(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open register: %w", err)
	}
	if existing != nil {
		return nil, tillcore.ErrRegisterAlreadyOpen
	}

	register := &models.CashRegister{
		RestaurantID:   restaurantID,
		OpenedByUserID: userID,
		OpeningBalance: req.OpeningBalance.Round(2),
		OpeningNotes:   req.Notes,
		OpenedAt:       timeutil.Now(),
		Status:         models.RegisterStatusOpen,
	}
	if err := s.store.CreateRegister(ctx, register); err != nil {
		return nil, err
	}

	metrics.RegistersOpened.Inc()
	metrics.TillBalance.Set(toFloat(register.OpeningBalance))
	log.Printf("[Till] Register %d opened with %s by user %d", register.ID, register.OpeningBalance, userID)
	return register, nil
}

// CurrentOpen returns the restaurant's single open register, or nil
func (s *RegisterService) CurrentOpen(ctx context.Context, restaurantID int) (*models.CashRegister, error) {
	return s.store.CurrentOpenRegister(ctx, restaurantID)
}

// Get returns one register by id
func (s *RegisterService) Get(ctx context.Context, id int) (*models.CashRegister, error) {
	return s.store.GetRegister(ctx, id)
}

// History lists a restaurant's registers, newest first
func (s *RegisterService) History(ctx context.Context, restaurantID, limit int) ([]models.CashRegister, error) {
	return s.store.ListRegisters(ctx, restaurantID, limit)
}

// Transactions lists a register's ledger in creation order
func (s *RegisterService) Transactions(ctx context.Context, registerID int) ([]models.TillTransaction, error) {
	return s.store.ListTransactions(ctx, registerID)
}

// Append records one immutable movement against an open register. The
// running balance is derived from the latest snapshot (or the opening
// balance), never from a counter. A failed append leaves no trace.
func (s *RegisterService) Append(ctx context.Context, registerID int, txType models.TransactionType, amount decimal.Decimal, ac AppendContext) (*models.TillTransaction, error) {
	register, err := s.store.GetRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, fmt.Errorf("register %d not found", registerID)
	}
	if register.Status != models.RegisterStatusOpen {
		return nil, tillcore.ErrRegisterClosed
	}

	latest, err := s.store.LatestTransaction(ctx, registerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest transaction: %w", err)
	}
	running := tillcore.RunningBalance(register.OpeningBalance, latest)
	balance, err := tillcore.NextBalance(running, txType, amount)
	if err != nil {
		return nil, err
	}

	tx := &models.TillTransaction{
		CashRegisterID:    registerID,
		OrderID:           ac.OrderID,
		OrderPaymentID:    ac.OrderPaymentID,
		Type:              txType,
		Amount:            amount.Round(2),
		Balance:           balance.Round(2),
		PaymentMethodID:   ac.PaymentMethodID,
		PaymentMethodName: ac.PaymentMethodName,
		Notes:             ac.Notes,
		CreatedAt:         timeutil.Now(),
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateBalance(ctx, registerID)
	}
	metrics.TillTransactions.WithLabelValues(string(txType)).Inc()
	metrics.TillBalance.Set(toFloat(tx.Balance))
	return tx, nil
}

// Withdraw takes cash out of the restaurant's open till (sangria)
func (s *RegisterService) Withdraw(ctx context.Context, restaurantID int, req *models.MovementRequest) (*models.TillTransaction, error) {
	return s.movement(ctx, restaurantID, models.TransactionTypeWithdrawal, req)
}

// Deposit puts cash into the restaurant's open till (suprimento)
func (s *RegisterService) Deposit(ctx context.Context, restaurantID int, req *models.MovementRequest) (*models.TillTransaction, error) {
	return s.movement(ctx, restaurantID, models.TransactionTypeDeposit, req)
}

func (s *RegisterService) movement(ctx context.Context, restaurantID int, txType models.TransactionType, req *models.MovementRequest) (*models.TillTransaction, error) {
	register, err := s.store.CurrentOpenRegister(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, tillcore.ErrNoOpenRegister
	}
	return s.Append(ctx, register.ID, txType, req.Amount, AppendContext{Notes: req.Notes})
}

// ExpectedBalance is the ledger-derived balance, read through the cache.
// The summation is checked against the latest snapshot; drift is logged and
// the summation wins, since snapshots are the derived figure.
func (s *RegisterService) ExpectedBalance(ctx context.Context, registerID int) (decimal.Decimal, error) {
	if s.cache != nil {
		if balance, ok := s.cache.GetBalance(ctx, registerID); ok {
			return balance, nil
		}
	}

	register, err := s.store.GetRegister(ctx, registerID)
	if err != nil {
		return decimal.Zero, err
	}
	if register == nil {
		return decimal.Zero, fmt.Errorf("register %d not found", registerID)
	}
	entries, err := s.store.ListTransactions(ctx, registerID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tillcore.CheckAgainstSnapshot(register, entries); err != nil {
		log.Printf("[Till] Register %d: %v", registerID, err)
	}
	expected := tillcore.ExpectedBalance(register, entries)

	if s.cache != nil {
		s.cache.SetBalance(ctx, registerID, expected)
	}
	return expected, nil
}

// Summary aggregates a register's ledger into the closing/inspection view
func (s *RegisterService) Summary(ctx context.Context, registerID int) (*models.RegisterSummary, error) {
	register, err := s.store.GetRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, fmt.Errorf("register %d not found", registerID)
	}
	entries, err := s.store.ListTransactions(ctx, registerID)
	if err != nil {
		return nil, err
	}
	return tillcore.Summarize(register, entries), nil
}

// Close ends a till session. The counted balance is compared against the
// ledger-derived expected balance; any difference above the configured
// threshold is flagged to the caller but never blocks the close. Historical
// transactions stay attached to the closed register permanently.
func (s *RegisterService) Close(ctx context.Context, registerID, userID int, req *models.CloseRegisterRequest) (*models.CloseRegisterResult, error) {
	register, err := s.store.GetRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, fmt.Errorf("register %d not found", registerID)
	}
	if register.Status != models.RegisterStatusOpen {
		return nil, tillcore.ErrRegisterNotOpen
	}

	entries, err := s.store.ListTransactions(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if err := tillcore.CheckAgainstSnapshot(register, entries); err != nil {
		log.Printf("[Till] Register %d closing with drift: %v", registerID, err)
	}
	expected := tillcore.ExpectedBalance(register, entries)

	counted := req.CountedBalance.Round(2)
	difference := counted.Sub(expected)
	flagged := difference.Abs().GreaterThan(s.discrepancyThreshold)

	now := timeutil.Now()
	register.Status = models.RegisterStatusClosed
	register.ClosedByUserID = &userID
	register.ClosingBalance = &counted
	register.ClosingNotes = req.Notes
	register.ClosedAt = &now
	if err := s.store.CloseRegister(ctx, register); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateBalance(ctx, registerID)
	}
	metrics.RegistersClosed.Inc()
	if flagged {
		log.Printf("[Till] Register %d closed with discrepancy %s (expected %s, counted %s)",
			registerID, difference, expected, counted)
	} else {
		log.Printf("[Till] Register %d closed, balance reconciled at %s", registerID, counted)
	}

	return &models.CloseRegisterResult{
		Register:           register,
		ExpectedBalance:    expected,
		CountedBalance:     counted,
		Difference:         difference,
		DiscrepancyFlagged: flagged,
	}, nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
