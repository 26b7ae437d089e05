package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates till movements. Payments and deposits add to
// the drawer balance, withdrawals subtract from it.
type TransactionType string

const (
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDeposit    TransactionType = "deposit"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeWithdrawal, TransactionTypeDeposit:
		return true
	}
	return false
}

// TillTransaction is an immutable, append-only movement against a register's
// balance. Balance is the running balance snapshot computed once at insertion
// and never recomputed; corrections are made with new offsetting entries.
// A nil PaymentMethodID means cash.
type TillTransaction struct {
	ID                int             `json:"id"`
	CashRegisterID    int             `json:"cash_register_id"`
	OrderID           *int            `json:"order_id,omitempty"`
	OrderPaymentID    *int            `json:"order_payment_id,omitempty"`
	Type              TransactionType `json:"type"`
	Amount            decimal.Decimal `json:"amount"` // always positive; sign comes from Type
	Balance           decimal.Decimal `json:"balance"`
	PaymentMethodID   *int            `json:"payment_method_id,omitempty"`
	PaymentMethodName string          `json:"payment_method_name,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// MovementRequest represents the request body for a manual withdrawal or
// deposit against the open till (sangria / suprimento).
type MovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}
