package tillcore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

// SessionState tracks a split-payment session through its life
type SessionState string

const (
	SessionCollecting SessionState = "collecting"
	SessionCompleted  SessionState = "completed"
	SessionAbandoned  SessionState = "abandoned"
)

// Allocation is one payment-method contribution toward covering the payable
// total. Allocations for the same method accumulate instead of duplicating.
type Allocation struct {
	MethodID   int             `json:"payment_method_id"`
	MethodName string          `json:"payment_method_name"`
	IsCash     bool            `json:"is_cash"`
	Amount     decimal.Decimal `json:"amount"`
}

// SplitSession collects allocations against an order's payable total. It
// lives in memory only; nothing is persisted until Complete materializes the
// order payments and till transactions.
type SplitSession struct {
	ID                string          `json:"id"`
	OrderID           int             `json:"order_id"`
	RestaurantID      int             `json:"restaurant_id"`
	IncludeServiceFee bool            `json:"include_service_fee"`
	PayableTotal      decimal.Decimal `json:"payable_total"`
	Allocations       []Allocation    `json:"allocations"`
	ChangeDue         decimal.Decimal `json:"change_due"` // cash tendered beyond remaining
	State             SessionState    `json:"state"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PayableTotal is the amount a settlement must cover: the order total, minus
// the service fee when the operator waives it.
func PayableTotal(order *models.Order, includeServiceFee bool) decimal.Decimal {
	if includeServiceFee {
		return order.TotalAmount
	}
	return order.TotalAmount.Sub(order.ServiceFee)
}

// NewSplitSession starts a collecting session for an order
func NewSplitSession(order *models.Order, includeServiceFee bool) *SplitSession {
	return &SplitSession{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		RestaurantID:      order.RestaurantID,
		IncludeServiceFee: includeServiceFee,
		PayableTotal:      PayableTotal(order, includeServiceFee),
		State:             SessionCollecting,
		CreatedAt:         time.Now(),
	}
}

// Remaining is the payable total minus everything allocated so far
func (s *SplitSession) Remaining() decimal.Decimal {
	allocated := decimal.Zero
	for _, a := range s.Allocations {
		allocated = allocated.Add(a.Amount)
	}
	return s.PayableTotal.Sub(allocated)
}

// FullyCovered reports whether the allocations cover the payable total
func (s *SplitSession) FullyCovered() bool {
	return s.Remaining().IsZero()
}

// AddAllocation records a payment-method contribution. For cash, amount is
// the tendered amount: the recorded allocation is capped at the remaining
// total and the excess is returned as change (change is never a ledger
// amount). Non-cash methods must not overpay; an amount above the remaining
// total fails with ErrExceedsRemaining and leaves the session untouched.
// Once the session is fully covered, any further tender fails the same way
// rather than recording a zero-amount allocation.
func (s *SplitSession) AddAllocation(method *models.PaymentMethod, amount decimal.Decimal) (change decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	remaining := s.Remaining()
	if !remaining.IsPositive() {
		return decimal.Zero, ErrExceedsRemaining
	}
	recorded := amount
	if method.IsCash {
		if amount.GreaterThan(remaining) {
			change = amount.Sub(remaining)
			recorded = remaining
		}
	} else if amount.GreaterThan(remaining) {
		return decimal.Zero, ErrExceedsRemaining
	}

	for i := range s.Allocations {
		if s.Allocations[i].MethodID == method.ID {
			s.Allocations[i].Amount = s.Allocations[i].Amount.Add(recorded)
			s.ChangeDue = s.ChangeDue.Add(change)
			return change, nil
		}
	}

	s.Allocations = append(s.Allocations, Allocation{
		MethodID:   method.ID,
		MethodName: method.Name,
		IsCash:     method.IsCash,
		Amount:     recorded,
	})
	s.ChangeDue = s.ChangeDue.Add(change)
	return change, nil
}

// RemoveAllocation drops a method's contribution and its share of change
func (s *SplitSession) RemoveAllocation(methodID int) bool {
	for i := range s.Allocations {
		if s.Allocations[i].MethodID == methodID {
			if s.Allocations[i].IsCash {
				s.ChangeDue = decimal.Zero
			}
			s.Allocations = append(s.Allocations[:i], s.Allocations[i+1:]...)
			return true
		}
	}
	return false
}
