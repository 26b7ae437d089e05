package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
	"resto-backend/internal/tillcore"
)

// fakeTillStore is an in-memory TillStore for exercising the register
// lifecycle without a database.
type fakeTillStore struct {
	registers    map[int]*models.CashRegister
	transactions map[int][]models.TillTransaction
	nextReg      int
	nextTx       int
}

func newFakeTillStore() *fakeTillStore {
	return &fakeTillStore{
		registers:    make(map[int]*models.CashRegister),
		transactions: make(map[int][]models.TillTransaction),
		nextReg:      1,
		nextTx:       1,
	}
}

func (f *fakeTillStore) CurrentOpenRegister(_ context.Context, restaurantID int) (*models.CashRegister, error) {
	for _, r := range f.registers {
		if r.RestaurantID == restaurantID && r.Status == models.RegisterStatusOpen {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTillStore) GetRegister(_ context.Context, id int) (*models.CashRegister, error) {
	r, ok := f.registers[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeTillStore) CreateRegister(_ context.Context, register *models.CashRegister) error {
	for _, r := range f.registers {
		if r.RestaurantID == register.RestaurantID && r.Status == models.RegisterStatusOpen {
			return tillcore.ErrRegisterAlreadyOpen
		}
	}
	register.ID = f.nextReg
	f.nextReg++
	copied := *register
	f.registers[register.ID] = &copied
	return nil
}

func (f *fakeTillStore) CloseRegister(_ context.Context, register *models.CashRegister) error {
	copied := *register
	f.registers[register.ID] = &copied
	return nil
}

func (f *fakeTillStore) ListRegisters(_ context.Context, restaurantID int, limit int) ([]models.CashRegister, error) {
	var out []models.CashRegister
	for _, r := range f.registers {
		if r.RestaurantID == restaurantID {
			out = append(out, *r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTillStore) LatestTransaction(_ context.Context, registerID int) (*models.TillTransaction, error) {
	entries := f.transactions[registerID]
	if len(entries) == 0 {
		return nil, nil
	}
	latest := entries[len(entries)-1]
	return &latest, nil
}

func (f *fakeTillStore) CreateTransaction(_ context.Context, tx *models.TillTransaction) error {
	tx.ID = f.nextTx
	f.nextTx++
	f.transactions[tx.CashRegisterID] = append(f.transactions[tx.CashRegisterID], *tx)
	return nil
}

func (f *fakeTillStore) ListTransactions(_ context.Context, registerID int) ([]models.TillTransaction, error) {
	return append([]models.TillTransaction(nil), f.transactions[registerID]...), nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService() (*RegisterService, *fakeTillStore) {
	store := newFakeTillStore()
	return NewRegisterService(store, nil, dec("1.00")), store
}

func openRegister(t *testing.T, s *RegisterService, opening string) *models.CashRegister {
	t.Helper()
	register, err := s.Open(context.Background(), 1, 7, &models.OpenRegisterRequest{OpeningBalance: dec(opening)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return register
}

func TestOpenRejectsSecondRegister(t *testing.T) {
	s, _ := newTestService()
	openRegister(t, s, "100.00")

	_, err := s.Open(context.Background(), 1, 7, &models.OpenRegisterRequest{OpeningBalance: dec("50.00")})
	if !errors.Is(err, tillcore.ErrRegisterAlreadyOpen) {
		t.Fatalf("expected ErrRegisterAlreadyOpen, got %v", err)
	}

	// A different restaurant is unaffected
	if _, err := s.Open(context.Background(), 2, 7, &models.OpenRegisterRequest{OpeningBalance: dec("50.00")}); err != nil {
		t.Fatalf("open for second restaurant: %v", err)
	}
}

func TestOpenRejectsNegativeFloat(t *testing.T) {
	s, _ := newTestService()
	_, err := s.Open(context.Background(), 1, 7, &models.OpenRegisterRequest{OpeningBalance: dec("-5.00")})
	if !errors.Is(err, tillcore.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAppendChainsRunningBalance(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")
	ctx := context.Background()

	steps := []struct {
		txType  models.TransactionType
		amount  string
		balance string
	}{
		{models.TransactionTypePayment, "50.00", "150.00"},
		{models.TransactionTypeWithdrawal, "20.00", "130.00"},
		{models.TransactionTypeDeposit, "36.00", "166.00"},
	}
	for _, step := range steps {
		tx, err := s.Append(ctx, register.ID, step.txType, dec(step.amount), AppendContext{})
		if err != nil {
			t.Fatalf("Append %s %s: %v", step.txType, step.amount, err)
		}
		if !tx.Balance.Equal(dec(step.balance)) {
			t.Fatalf("after %s %s: balance = %s, want %s", step.txType, step.amount, tx.Balance, step.balance)
		}
	}

	expected, err := s.ExpectedBalance(ctx, register.ID)
	if err != nil {
		t.Fatalf("ExpectedBalance: %v", err)
	}
	if !expected.Equal(dec("166.00")) {
		t.Fatalf("expected balance = %s, want 166.00", expected)
	}
}

func TestAppendRejectsInvalidMovements(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "10.00")
	ctx := context.Background()

	if _, err := s.Append(ctx, register.ID, models.TransactionTypePayment, dec("0"), AppendContext{}); !errors.Is(err, tillcore.ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := s.Append(ctx, register.ID, models.TransactionType("refund"), dec("5.00"), AppendContext{}); !errors.Is(err, tillcore.ErrInvalidType) {
		t.Fatalf("unknown type: got %v, want ErrInvalidType", err)
	}
}

func TestAppendRejectsClosedRegister(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")
	ctx := context.Background()

	if _, err := s.Close(ctx, register.ID, 7, &models.CloseRegisterRequest{CountedBalance: dec("100.00")}); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err := s.Append(ctx, register.ID, models.TransactionTypePayment, dec("10.00"), AppendContext{})
	if !errors.Is(err, tillcore.ErrRegisterClosed) {
		t.Fatalf("expected ErrRegisterClosed, got %v", err)
	}
}

func TestMovementRequiresOpenRegister(t *testing.T) {
	s, _ := newTestService()
	_, err := s.Withdraw(context.Background(), 1, &models.MovementRequest{Amount: dec("10.00")})
	if !errors.Is(err, tillcore.ErrNoOpenRegister) {
		t.Fatalf("expected ErrNoOpenRegister, got %v", err)
	}
}

func TestCloseReconcilesCleanly(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")
	ctx := context.Background()

	if _, err := s.Append(ctx, register.ID, models.TransactionTypePayment, dec("66.00"), AppendContext{}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	result, err := s.Close(ctx, register.ID, 9, &models.CloseRegisterRequest{CountedBalance: dec("166.00")})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !result.ExpectedBalance.Equal(dec("166.00")) {
		t.Errorf("expected balance = %s, want 166.00", result.ExpectedBalance)
	}
	if !result.Difference.IsZero() {
		t.Errorf("difference = %s, want 0", result.Difference)
	}
	if result.DiscrepancyFlagged {
		t.Error("clean close should not be flagged")
	}
	if result.Register.Status != models.RegisterStatusClosed {
		t.Errorf("status = %s, want closed", result.Register.Status)
	}
	if result.Register.ClosedByUserID == nil || *result.Register.ClosedByUserID != 9 {
		t.Error("closed_by_user_id not recorded")
	}
}

func TestCloseFlagsDiscrepancyAboveThreshold(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")
	ctx := context.Background()

	// Drawer is short by 6.00, well past the 1.00 threshold
	result, err := s.Close(ctx, register.ID, 7, &models.CloseRegisterRequest{CountedBalance: dec("94.00")})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !result.DiscrepancyFlagged {
		t.Error("expected discrepancy to be flagged")
	}
	if !result.Difference.Equal(dec("-6.00")) {
		t.Errorf("difference = %s, want -6.00", result.Difference)
	}
}

func TestCloseWithinThresholdNotFlagged(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")

	result, err := s.Close(context.Background(), register.ID, 7, &models.CloseRegisterRequest{CountedBalance: dec("99.50")})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if result.DiscrepancyFlagged {
		t.Errorf("difference %s is within threshold, should not flag", result.Difference)
	}
}

func TestCloseTwiceFails(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")
	ctx := context.Background()

	if _, err := s.Close(ctx, register.ID, 7, &models.CloseRegisterRequest{CountedBalance: dec("100.00")}); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	_, err := s.Close(ctx, register.ID, 7, &models.CloseRegisterRequest{CountedBalance: dec("100.00")})
	if !errors.Is(err, tillcore.ErrRegisterNotOpen) {
		t.Fatalf("expected ErrRegisterNotOpen, got %v", err)
	}
}

func TestSummaryAggregatesByMethod(t *testing.T) {
	s, _ := newTestService()
	register := openRegister(t, s, "100.00")
	ctx := context.Background()

	cardID := 3
	if _, err := s.Append(ctx, register.ID, models.TransactionTypePayment, dec("40.00"), AppendContext{}); err != nil {
		t.Fatalf("cash payment: %v", err)
	}
	if _, err := s.Append(ctx, register.ID, models.TransactionTypePayment, dec("25.00"), AppendContext{PaymentMethodID: &cardID, PaymentMethodName: "Credit Card"}); err != nil {
		t.Fatalf("card payment: %v", err)
	}
	if _, err := s.Append(ctx, register.ID, models.TransactionTypeWithdrawal, dec("15.00"), AppendContext{Notes: "sangria"}); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	summary, err := s.Summary(ctx, register.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.IncomeTotal.Equal(dec("65.00")) {
		t.Errorf("income = %s, want 65.00", summary.IncomeTotal)
	}
	if !summary.ExpenseTotal.Equal(dec("15.00")) {
		t.Errorf("expense = %s, want 15.00", summary.ExpenseTotal)
	}
	// Cash drawer: 100 opening + 40 cash - 15 withdrawal
	if !summary.CashOnlyBalance.Equal(dec("125.00")) {
		t.Errorf("cash-only = %s, want 125.00", summary.CashOnlyBalance)
	}
	if !summary.GrandTotalBalance.Equal(dec("150.00")) {
		t.Errorf("grand total = %s, want 150.00", summary.GrandTotalBalance)
	}
	if got := summary.ByMethod["Credit Card"]; !got.Equal(dec("25.00")) {
		t.Errorf("by_method[Credit Card] = %s, want 25.00", got)
	}
}
