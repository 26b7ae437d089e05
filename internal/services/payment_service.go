package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"resto-backend/internal/metrics"
	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
	"resto-backend/internal/tillcore"
	"resto-backend/internal/timeutil"
)

// PaymentService runs split-payment sessions: allocations collect in memory
// and nothing touches storage until Complete, which materializes the order
// payments and till transactions inside one database transaction. A crash
// mid-completion therefore leaves no partial ledger state.
type PaymentService struct {
	pool      *pgxpool.Pool
	orders    *repositories.OrderRepository
	methods   *repositories.PaymentMethodRepository
	payments  *repositories.OrderPaymentRepository
	tills     *repositories.RegisterRepository
	registers *RegisterService
	cache     BalanceCache
	notifier  OrderNotifier

	mu       sync.Mutex
	sessions map[string]*tillcore.SplitSession
}

// CompletionResult is returned after a successful settlement
type CompletionResult struct {
	Order        *models.Order            `json:"order"`
	RegisterID   int                      `json:"cash_register_id"`
	Payments     []models.OrderPayment    `json:"payments"`
	Transactions []models.TillTransaction `json:"transactions"`
	ChangeDue    decimal.Decimal          `json:"change_due"`
}

func NewPaymentService(
	pool *pgxpool.Pool,
	orders *repositories.OrderRepository,
	methods *repositories.PaymentMethodRepository,
	payments *repositories.OrderPaymentRepository,
	tills *repositories.RegisterRepository,
	registers *RegisterService,
) *PaymentService {
	return &PaymentService{
		pool:      pool,
		orders:    orders,
		methods:   methods,
		payments:  payments,
		tills:     tills,
		registers: registers,
		sessions:  make(map[string]*tillcore.SplitSession),
	}
}

// SetCache wires the expected-balance cache for invalidation on completion
func (s *PaymentService) SetCache(cache BalanceCache) {
	s.cache = cache
}

// SetNotifier wires the order-event publisher
func (s *PaymentService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// StartSession opens a collecting session against an order's payable total
func (s *PaymentService) StartSession(ctx context.Context, orderID int, includeServiceFee bool) (*tillcore.SplitSession, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if order.PaymentStatus == models.PaymentStatusPaid ||
		order.Status == models.OrderStatusCancelled ||
		order.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, tillcore.ErrOrderNotPayable
	}

	session := tillcore.NewSplitSession(order, includeServiceFee)
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session, nil
}

// Session returns an in-progress session
func (s *PaymentService) Session(sessionID string) (*tillcore.SplitSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("payment session %s not found", sessionID)
	}
	return session, nil
}

// AddAllocation records a method's contribution; for cash, amount is the
// tendered amount and the returned change is surfaced to the operator.
func (s *PaymentService) AddAllocation(ctx context.Context, sessionID string, methodID int, amount decimal.Decimal) (*tillcore.SplitSession, decimal.Decimal, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	method, err := s.methods.Get(ctx, methodID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if method == nil || !method.IsActive {
		return nil, decimal.Zero, fmt.Errorf("payment method %d not available", methodID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := session.AddAllocation(method, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return session, change, nil
}

// RemoveAllocation drops a method's contribution from the session
func (s *PaymentService) RemoveAllocation(sessionID string, methodID int) (*tillcore.SplitSession, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !session.RemoveAllocation(methodID) {
		return nil, fmt.Errorf("no allocation for method %d", methodID)
	}
	return session, nil
}

// Abandon discards a session without side effects
func (s *PaymentService) Abandon(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.State = tillcore.SessionAbandoned
		delete(s.sessions, sessionID)
	}
}

// Complete settles a fully-covered session: for every allocation it creates
// an order payment plus a till transaction bound both ways, then marks the
// order paid and binds it to the open register. All writes share one
// database transaction; the unique constraint on order_payment_id makes a
// replay unable to double-insert.
func (s *PaymentService) Complete(ctx context.Context, sessionID string) (*CompletionResult, error) {
	// Snapshot the session under the lock; AddAllocation and RemoveAllocation
	// mutate it under the same lock.
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("payment session %s not found", sessionID)
	}
	if !session.FullyCovered() {
		s.mu.Unlock()
		return nil, tillcore.ErrIncompletePayment
	}
	allocations := make([]tillcore.Allocation, len(session.Allocations))
	copy(allocations, session.Allocations)
	changeDue := session.ChangeDue
	payableTotal := session.PayableTotal
	includeServiceFee := session.IncludeServiceFee
	orderID := session.OrderID
	restaurantID := session.RestaurantID
	s.mu.Unlock()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.PaymentStatus == models.PaymentStatusPaid {
		return nil, tillcore.ErrOrderNotPayable
	}

	register, err := s.registers.CurrentOpen(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, tillcore.ErrNoOpenRegister
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer tx.Rollback(ctx)

	// Re-read under the row lock so a concurrent close cannot slip between
	// the guard above and the ledger writes below.
	locked, err := s.tills.GetRegisterForUpdateTx(ctx, tx, register.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil || locked.Status != models.RegisterStatusOpen {
		return nil, tillcore.ErrNoOpenRegister
	}

	latest, err := s.tills.LatestTransactionTx(ctx, tx, locked.ID)
	if err != nil {
		return nil, err
	}
	running := tillcore.RunningBalance(locked.OpeningBalance, latest)

	result := &CompletionResult{
		RegisterID: locked.ID,
		ChangeDue:  changeDue,
	}
	for _, alloc := range allocations {
		payment := &models.OrderPayment{
			OrderID:           order.ID,
			PaymentMethodID:   alloc.MethodID,
			PaymentMethodName: alloc.MethodName,
			Amount:            alloc.Amount.Round(2),
			IncludeServiceFee: includeServiceFee,
			CreatedAt:         timeutil.Now(),
		}
		if err := s.payments.CreateTx(ctx, tx, payment); err != nil {
			return nil, err
		}

		balance, err := tillcore.NextBalance(running, models.TransactionTypePayment, payment.Amount)
		if err != nil {
			return nil, err
		}
		var methodRef *int
		if !alloc.IsCash {
			methodID := alloc.MethodID
			methodRef = &methodID
		}
		movement := &models.TillTransaction{
			CashRegisterID:    locked.ID,
			OrderID:           &order.ID,
			OrderPaymentID:    &payment.ID,
			Type:              models.TransactionTypePayment,
			Amount:            payment.Amount,
			Balance:           balance.Round(2),
			PaymentMethodID:   methodRef,
			PaymentMethodName: alloc.MethodName,
			Notes:             fmt.Sprintf("order #%d", order.ID),
			CreatedAt:         timeutil.Now(),
		}
		if err := s.tills.CreateTransactionTx(ctx, tx, movement); err != nil {
			return nil, err
		}
		if err := s.payments.SetTransactionTx(ctx, tx, payment.ID, movement.ID); err != nil {
			return nil, err
		}
		payment.TransactionID = &movement.ID

		running = balance
		result.Payments = append(result.Payments, *payment)
		result.Transactions = append(result.Transactions, *movement)
	}

	serviceFee := order.ServiceFee
	total := order.TotalAmount
	if !includeServiceFee {
		// waived fee: the order settles at its subtotal
		serviceFee = decimal.Zero
		total = order.Subtotal
	}
	if err := s.orders.MarkPaidTx(ctx, tx, order.ID, locked.ID, serviceFee, total); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	s.mu.Lock()
	session.State = tillcore.SessionCompleted
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.InvalidateBalance(ctx, locked.ID)
	}
	metrics.PaymentsCompleted.Inc()
	metrics.PaymentAmount.Add(toFloat(payableTotal))
	metrics.TillBalance.Set(toFloat(running))

	order.PaymentStatus = models.PaymentStatusPaid
	order.Status = models.OrderStatusCompleted
	order.CashRegisterID = &locked.ID
	order.ServiceFee = serviceFee
	order.TotalAmount = total
	result.Order = order

	if s.notifier != nil {
		s.notifier.PublishOrderEvent(ctx, &models.OrderEvent{
			OrderID:      order.ID,
			TableID:      order.TableID,
			RestaurantID: order.RestaurantID,
			Kind:         "paid",
			Status:       order.Status,
			At:           timeutil.Now(),
		})
	}
	log.Printf("[Payment] Order %d settled with %d allocation(s) on register %d",
		order.ID, len(allocations), locked.ID)
	return result, nil
}

// PaymentsForOrder lists an order's recorded allocations
func (s *PaymentService) PaymentsForOrder(ctx context.Context, orderID int) ([]models.OrderPayment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}
