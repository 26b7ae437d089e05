package tillcore

import (
	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

// CashBucket is the by-method bucket for transactions without a payment
// method reference.
const CashBucket = "cash"

// ExpectedBalance sums a register's ledger from its opening balance:
// opening + payments + deposits - withdrawals.
func ExpectedBalance(register *models.CashRegister, entries []models.TillTransaction) decimal.Decimal {
	balance := register.OpeningBalance
	for _, e := range entries {
		switch e.Type {
		case models.TransactionTypePayment, models.TransactionTypeDeposit:
			balance = balance.Add(e.Amount)
		case models.TransactionTypeWithdrawal:
			balance = balance.Sub(e.Amount)
		}
	}
	return balance
}

// CheckAgainstSnapshot verifies that the summed expected balance agrees with
// the latest entry's stored snapshot. Called before trusting either figure.
func CheckAgainstSnapshot(register *models.CashRegister, entries []models.TillTransaction) error {
	if len(entries) == 0 {
		return nil
	}
	expected := ExpectedBalance(register, entries)
	last := entries[len(entries)-1]
	if !expected.Equal(last.Balance) {
		return ErrLedgerDrift
	}
	return nil
}

// CashOnlyBalance restricts the expected-balance formula to physical cash:
// method-less payments plus all deposits and withdrawals, which are cash by
// definition in this model.
func CashOnlyBalance(register *models.CashRegister, entries []models.TillTransaction) decimal.Decimal {
	balance := register.OpeningBalance
	for _, e := range entries {
		switch e.Type {
		case models.TransactionTypePayment:
			if e.PaymentMethodID == nil {
				balance = balance.Add(e.Amount)
			}
		case models.TransactionTypeDeposit:
			balance = balance.Add(e.Amount)
		case models.TransactionTypeWithdrawal:
			balance = balance.Sub(e.Amount)
		}
	}
	return balance
}

// TotalsByMethod groups payment entries by payment-method name, bucketing
// method-less entries as cash.
func TotalsByMethod(entries []models.TillTransaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.Type != models.TransactionTypePayment {
			continue
		}
		bucket := CashBucket
		if e.PaymentMethodID != nil && e.PaymentMethodName != "" {
			bucket = e.PaymentMethodName
		}
		totals[bucket] = totals[bucket].Add(e.Amount)
	}
	return totals
}

// Summarize aggregates a register's ledger into the closing/inspection view.
func Summarize(register *models.CashRegister, entries []models.TillTransaction) *models.RegisterSummary {
	income := decimal.Zero
	expense := decimal.Zero
	for _, e := range entries {
		switch e.Type {
		case models.TransactionTypePayment, models.TransactionTypeDeposit:
			income = income.Add(e.Amount)
		case models.TransactionTypeWithdrawal:
			expense = expense.Add(e.Amount)
		}
	}

	return &models.RegisterSummary{
		RegisterID:        register.ID,
		OpeningBalance:    register.OpeningBalance,
		IncomeTotal:       income,
		ExpenseTotal:      expense,
		CashOnlyBalance:   CashOnlyBalance(register, entries),
		GrandTotalBalance: register.OpeningBalance.Add(income).Sub(expense),
		ByMethod:          TotalsByMethod(entries),
	}
}
