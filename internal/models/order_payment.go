package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPayment is one payment-method allocation toward an order's total.
// TransactionID is set once the matching till transaction is created.
type OrderPayment struct {
	ID                int             `json:"id"`
	OrderID           int             `json:"order_id"`
	PaymentMethodID   int             `json:"payment_method_id"`
	PaymentMethodName string          `json:"payment_method_name,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	IncludeServiceFee bool            `json:"include_service_fee"`
	TransactionID     *int            `json:"cash_register_transaction_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
