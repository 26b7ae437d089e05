package tillcore

import (
	"errors"
	"testing"

	"resto-backend/internal/models"
)

func TestNextBalance(t *testing.T) {
	tests := []struct {
		name    string
		current string
		txType  models.TransactionType
		amount  string
		want    string
		wantErr error
	}{
		{"payment adds", "100.00", models.TransactionTypePayment, "66.00", "166.00", nil},
		{"deposit adds", "50.00", models.TransactionTypeDeposit, "20.00", "70.00", nil},
		{"withdrawal subtracts", "80.00", models.TransactionTypeWithdrawal, "30.00", "50.00", nil},
		{"zero amount rejected", "10.00", models.TransactionTypePayment, "0", "", ErrInvalidAmount},
		{"negative amount rejected", "10.00", models.TransactionTypeDeposit, "-1.00", "", ErrInvalidAmount},
		{"unknown type rejected", "10.00", models.TransactionType("refund"), "5.00", "", ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBalance(d(tt.current), tt.txType, d(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !got.Equal(d(tt.want)) {
				t.Fatalf("balance = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunningBalanceDerived(t *testing.T) {
	if got := RunningBalance(d("100.00"), nil); !got.Equal(d("100.00")) {
		t.Fatalf("empty ledger: balance = %s, want opening 100.00", got)
	}
	latest := &models.TillTransaction{Balance: d("166.00")}
	if got := RunningBalance(d("100.00"), latest); !got.Equal(d("166.00")) {
		t.Fatalf("balance = %s, want latest snapshot 166.00", got)
	}
}

func ledgerFixture() (*models.CashRegister, []models.TillTransaction) {
	method := 2
	register := &models.CashRegister{ID: 1, OpeningBalance: d("100.00"), Status: models.RegisterStatusOpen}
	entries := []models.TillTransaction{
		{ID: 1, Type: models.TransactionTypePayment, Amount: d("66.00"), Balance: d("166.00")},                          // cash
		{ID: 2, Type: models.TransactionTypePayment, Amount: d("40.00"), Balance: d("206.00"), PaymentMethodID: &method, PaymentMethodName: "credit"},
		{ID: 3, Type: models.TransactionTypeWithdrawal, Amount: d("50.00"), Balance: d("156.00"), Notes: "sangria"},
		{ID: 4, Type: models.TransactionTypeDeposit, Amount: d("10.00"), Balance: d("166.00"), Notes: "troco"},
	}
	return register, entries
}

func TestVerifyReplay(t *testing.T) {
	register, entries := ledgerFixture()
	if err := VerifyReplay(register.OpeningBalance, entries); err != nil {
		t.Fatalf("consistent ledger failed replay: %v", err)
	}

	corrupted := make([]models.TillTransaction, len(entries))
	copy(corrupted, entries)
	corrupted[2].Balance = d("155.00")
	err := VerifyReplay(register.OpeningBalance, corrupted)
	if !errors.Is(err, ErrLedgerDrift) {
		t.Fatalf("err = %v, want ErrLedgerDrift", err)
	}
}

func TestExpectedBalanceAgreesWithSnapshot(t *testing.T) {
	register, entries := ledgerFixture()

	expected := ExpectedBalance(register, entries)
	if !expected.Equal(d("166.00")) {
		t.Fatalf("expected balance = %s, want 166.00", expected)
	}
	if !expected.Equal(entries[len(entries)-1].Balance) {
		t.Fatal("summed balance disagrees with latest snapshot")
	}
	if err := CheckAgainstSnapshot(register, entries); err != nil {
		t.Fatalf("consistency check failed: %v", err)
	}

	drifted := make([]models.TillTransaction, len(entries))
	copy(drifted, entries)
	drifted[len(drifted)-1].Balance = d("170.00")
	if err := CheckAgainstSnapshot(register, drifted); !errors.Is(err, ErrLedgerDrift) {
		t.Fatalf("err = %v, want ErrLedgerDrift", err)
	}
}

func TestCashOnlyBalance(t *testing.T) {
	register, entries := ledgerFixture()
	// opening 100 + cash payment 66 - withdrawal 50 + deposit 10; the credit
	// payment never touches the drawer.
	if got := CashOnlyBalance(register, entries); !got.Equal(d("126.00")) {
		t.Fatalf("cash-only balance = %s, want 126.00", got)
	}
}

func TestTotalsByMethod(t *testing.T) {
	_, entries := ledgerFixture()
	totals := TotalsByMethod(entries)
	if !totals[CashBucket].Equal(d("66.00")) {
		t.Errorf("cash bucket = %s, want 66.00", totals[CashBucket])
	}
	if !totals["credit"].Equal(d("40.00")) {
		t.Errorf("credit bucket = %s, want 40.00", totals["credit"])
	}
	if len(totals) != 2 {
		t.Errorf("got %d buckets, want 2 (withdrawals and deposits excluded)", len(totals))
	}
}

func TestSummarize(t *testing.T) {
	register, entries := ledgerFixture()
	s := Summarize(register, entries)

	if !s.OpeningBalance.Equal(d("100.00")) {
		t.Errorf("opening = %s", s.OpeningBalance)
	}
	if !s.IncomeTotal.Equal(d("116.00")) {
		t.Errorf("income = %s, want 116.00", s.IncomeTotal)
	}
	if !s.ExpenseTotal.Equal(d("50.00")) {
		t.Errorf("expense = %s, want 50.00", s.ExpenseTotal)
	}
	if !s.GrandTotalBalance.Equal(d("166.00")) {
		t.Errorf("grand total = %s, want 166.00", s.GrandTotalBalance)
	}
	if !s.CashOnlyBalance.Equal(d("126.00")) {
		t.Errorf("cash only = %s, want 126.00", s.CashOnlyBalance)
	}
}
