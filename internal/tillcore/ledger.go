// Package tillcore holds the arithmetic heart of the till: running-balance
// ledger rules, order pricing, split-payment sessions and register
// reconciliation. Everything here is pure computation over model values so
// the invariants can be tested without a database.
package tillcore

import (
	"fmt"

	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

// NextBalance applies one signed movement to a running balance. Payments and
// deposits add, withdrawals subtract.
func NextBalance(current decimal.Decimal, txType models.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	switch txType {
	case models.TransactionTypePayment, models.TransactionTypeDeposit:
		return current.Add(amount), nil
	case models.TransactionTypeWithdrawal:
		return current.Sub(amount), nil
	default:
		return decimal.Zero, ErrInvalidType
	}
}

// RunningBalance derives a register's current balance: the latest entry's
// snapshot, or the opening balance when no entries exist. The balance is
// never kept as a second counter field.
func RunningBalance(openingBalance decimal.Decimal, latest *models.TillTransaction) decimal.Decimal {
	if latest == nil {
		return openingBalance
	}
	return latest.Balance
}

// VerifyReplay recomputes every balance snapshot from the opening balance and
// the entries in creation order, and fails on the first entry whose stored
// snapshot disagrees.
func VerifyReplay(openingBalance decimal.Decimal, entries []models.TillTransaction) error {
	balance := openingBalance
	for i, e := range entries {
		next, err := NextBalance(balance, e.Type, e.Amount)
		if err != nil {
			return fmt.Errorf("entry %d (id=%d): %w", i, e.ID, err)
		}
		if !next.Equal(e.Balance) {
			return fmt.Errorf("entry %d (id=%d): stored balance %s, replayed %s: %w",
				i, e.ID, e.Balance.String(), next.String(), ErrLedgerDrift)
		}
		balance = next
	}
	return nil
}
