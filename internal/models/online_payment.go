package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OnlinePaymentStatus tracks a gateway payment attempt
type OnlinePaymentStatus string

const (
	OnlinePaymentCreated OnlinePaymentStatus = "created"
	OnlinePaymentSuccess OnlinePaymentStatus = "success"
	OnlinePaymentFailed  OnlinePaymentStatus = "failed"
)

// OnlinePayment records one Razorpay payment attempt against an order. A
// successful attempt settles the whole payable total through the online
// payment method; partial online payments are not supported.
type OnlinePayment struct {
	ID                int                 `json:"id"`
	OrderID           int                 `json:"order_id"`
	RazorpayOrderID   string              `json:"razorpay_order_id"`
	RazorpayPaymentID string              `json:"razorpay_payment_id,omitempty"`
	Amount            decimal.Decimal     `json:"amount"`
	IncludeServiceFee bool                `json:"include_service_fee"`
	Status            OnlinePaymentStatus `json:"status"`
	Method            string              `json:"method,omitempty"` // upi, card, netbanking...
	FailureReason     string              `json:"failure_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// CreateOnlinePaymentRequest starts a gateway payment for an order
type CreateOnlinePaymentRequest struct {
	OrderID           int  `json:"order_id"`
	IncludeServiceFee bool `json:"include_service_fee"`
}

// CreateOnlinePaymentResponse carries what the frontend checkout needs
type CreateOnlinePaymentResponse struct {
	RazorpayOrderID string `json:"razorpay_order_id"`
	AmountPaise     int    `json:"amount_paise"`
	Currency        string `json:"currency"`
	KeyID           string `json:"key_id"`
}

// VerifyOnlinePaymentRequest completes a checkout after the gateway redirect
type VerifyOnlinePaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
