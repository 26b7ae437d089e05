package tillcore

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

var (
	cashMethod   = &models.PaymentMethod{ID: 1, Name: "cash", IsCash: true}
	creditMethod = &models.PaymentMethod{ID: 2, Name: "credit"}
	pixMethod    = &models.PaymentMethod{ID: 3, Name: "pix"}
)

func paidOrder(total, fee string) *models.Order {
	return &models.Order{
		ID:           10,
		RestaurantID: 1,
		TotalAmount:  d(total),
		ServiceFee:   d(fee),
	}
}

func TestPayableTotal(t *testing.T) {
	order := paidOrder("66.00", "6.00")
	if got := PayableTotal(order, true); !got.Equal(d("66.00")) {
		t.Errorf("with fee = %s, want 66.00", got)
	}
	if got := PayableTotal(order, false); !got.Equal(d("60.00")) {
		t.Errorf("without fee = %s, want 60.00", got)
	}
}

func TestSplitPaymentCompleteness(t *testing.T) {
	s := NewSplitSession(paidOrder("100.00", "0"), true)

	if _, err := s.AddAllocation(creditMethod, d("60.00")); err != nil {
		t.Fatalf("credit allocation: %v", err)
	}
	if got := s.Remaining(); !got.Equal(d("40.00")) {
		t.Fatalf("remaining after credit = %s, want 40.00", got)
	}

	change, err := s.AddAllocation(cashMethod, d("50.00"))
	if err != nil {
		t.Fatalf("cash allocation: %v", err)
	}
	if !change.Equal(d("10.00")) {
		t.Fatalf("change = %s, want 10.00", change)
	}
	if !s.FullyCovered() {
		t.Fatalf("remaining = %s, want 0", s.Remaining())
	}

	allocated := decimal.Zero
	for _, a := range s.Allocations {
		allocated = allocated.Add(a.Amount)
	}
	if !allocated.Equal(d("100.00")) {
		t.Fatalf("allocations sum to %s, want 100.00 (change must not be a ledger amount)", allocated)
	}
}

func TestOverpayRejected(t *testing.T) {
	s := NewSplitSession(paidOrder("20.00", "0"), true)

	_, err := s.AddAllocation(pixMethod, d("25.00"))
	if !errors.Is(err, ErrExceedsRemaining) {
		t.Fatalf("err = %v, want ErrExceedsRemaining", err)
	}
	if got := s.Remaining(); !got.Equal(d("20.00")) {
		t.Fatalf("remaining changed to %s after rejected allocation", got)
	}
	if len(s.Allocations) != 0 {
		t.Fatalf("rejected allocation was recorded")
	}
}

func TestAllocationMergesSameMethod(t *testing.T) {
	s := NewSplitSession(paidOrder("90.00", "0"), true)

	if _, err := s.AddAllocation(creditMethod, d("30.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAllocation(creditMethod, d("20.00")); err != nil {
		t.Fatal(err)
	}
	if len(s.Allocations) != 1 {
		t.Fatalf("got %d allocation rows, want 1 merged", len(s.Allocations))
	}
	if !s.Allocations[0].Amount.Equal(d("50.00")) {
		t.Fatalf("merged amount = %s, want 50.00", s.Allocations[0].Amount)
	}
}

func TestRemoveAllocation(t *testing.T) {
	s := NewSplitSession(paidOrder("50.00", "0"), true)
	if _, err := s.AddAllocation(creditMethod, d("30.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAllocation(cashMethod, d("25.00")); err != nil {
		t.Fatal(err)
	}
	if !s.FullyCovered() {
		t.Fatalf("remaining = %s, want 0", s.Remaining())
	}

	if !s.RemoveAllocation(cashMethod.ID) {
		t.Fatal("cash allocation not found")
	}
	if got := s.Remaining(); !got.Equal(d("20.00")) {
		t.Fatalf("remaining after removal = %s, want 20.00", got)
	}
	if !s.ChangeDue.IsZero() {
		t.Fatalf("change due = %s after cash removal, want 0", s.ChangeDue)
	}
	if s.RemoveAllocation(99) {
		t.Fatal("removing an unknown method reported success")
	}
}

func TestInvalidAllocationAmount(t *testing.T) {
	s := NewSplitSession(paidOrder("10.00", "0"), true)
	for _, amount := range []string{"0", "-5.00"} {
		if _, err := s.AddAllocation(cashMethod, d(amount)); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %s: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestAllocationRejectedWhenFullyCovered(t *testing.T) {
	s := NewSplitSession(paidOrder("100.00", "0"), true)
	if _, err := s.AddAllocation(creditMethod, d("100.00")); err != nil {
		t.Fatal(err)
	}
	if !s.FullyCovered() {
		t.Fatalf("remaining = %s, want 0", s.Remaining())
	}

	// Cash tendered against a covered session must not record a zero-amount
	// allocation the ledger would later refuse.
	change, err := s.AddAllocation(cashMethod, d("10.00"))
	if !errors.Is(err, ErrExceedsRemaining) {
		t.Fatalf("err = %v, want ErrExceedsRemaining", err)
	}
	if !change.IsZero() {
		t.Fatalf("change = %s, want 0", change)
	}
	if len(s.Allocations) != 1 {
		t.Fatalf("got %d allocation rows, want 1", len(s.Allocations))
	}
	if !s.ChangeDue.IsZero() {
		t.Fatalf("change due = %s, want 0", s.ChangeDue)
	}
}

func TestCashExactTenderNoChange(t *testing.T) {
	s := NewSplitSession(paidOrder("44.00", "4.00"), false)
	change, err := s.AddAllocation(cashMethod, d("40.00"))
	if err != nil {
		t.Fatal(err)
	}
	if !change.IsZero() {
		t.Fatalf("change = %s, want 0", change)
	}
	if !s.FullyCovered() {
		t.Fatalf("remaining = %s, want 0", s.Remaining())
	}
}
