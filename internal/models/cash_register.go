package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterStatus is the lifecycle state of a till session
type RegisterStatus string

const (
	RegisterStatusOpen   RegisterStatus = "open"
	RegisterStatusClosed RegisterStatus = "closed"
)

// CashRegister is one bounded session of cash-drawer custody, from open to
// close. A closed register is a permanent historical record; its transactions
// are never reassigned. At most one register per restaurant may be open,
// enforced by a partial unique index in the schema.
type CashRegister struct {
	ID             int              `json:"id"`
	RestaurantID   int              `json:"restaurant_id"`
	OpenedByUserID int              `json:"opened_by_user_id"`
	OpenedByName   string           `json:"opened_by_name,omitempty"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	OpeningNotes   string           `json:"opening_notes,omitempty"`
	OpenedAt       time.Time        `json:"opened_at"`
	Status         RegisterStatus   `json:"status"`
	ClosedByUserID *int             `json:"closed_by_user_id,omitempty"`
	ClosedByName   string           `json:"closed_by_name,omitempty"`
	ClosingBalance *decimal.Decimal `json:"closing_balance,omitempty"`
	ClosingNotes   string           `json:"closing_notes,omitempty"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

// OpenRegisterRequest represents the request body for opening a till
type OpenRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes"`
}

// CloseRegisterRequest represents the request body for closing a till.
// CountedBalance is the physically counted cash supplied by the operator.
type CloseRegisterRequest struct {
	CountedBalance decimal.Decimal `json:"counted_balance"`
	Notes          string          `json:"notes"`
}

// CloseRegisterResult is returned after a close. Difference is
// counted - expected; a non-zero difference never blocks the close, it is
// surfaced for the operator to act on.
type CloseRegisterResult struct {
	Register            *CashRegister   `json:"register"`
	ExpectedBalance     decimal.Decimal `json:"expected_balance"`
	CountedBalance      decimal.Decimal `json:"counted_balance"`
	Difference          decimal.Decimal `json:"difference"`
	DiscrepancyFlagged  bool            `json:"discrepancy_flagged"`
}

// RegisterSummary is the reconciliation view rendered both by the
// close-confirmation screen and the historical register screen.
type RegisterSummary struct {
	RegisterID        int                        `json:"register_id"`
	OpeningBalance    decimal.Decimal            `json:"opening_balance"`
	IncomeTotal       decimal.Decimal            `json:"income_total"`
	ExpenseTotal      decimal.Decimal            `json:"expense_total"`
	CashOnlyBalance   decimal.Decimal            `json:"cash_only_balance"`
	GrandTotalBalance decimal.Decimal            `json:"grand_total_balance"`
	ByMethod          map[string]decimal.Decimal `json:"by_method"`
}
