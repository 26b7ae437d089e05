package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
	"resto-backend/internal/tillcore"
)

// RazorpayService lets a customer pay a table's bill through a payment
// link instead of at the counter. A confirmed gateway payment settles the
// order through a one-allocation split session on the online method, so it
// lands in the till ledger exactly like a counter payment.
type RazorpayService struct {
	keyID         string
	keySecret     string
	webhookSecret string

	orders         *repositories.OrderRepository
	methods        *repositories.PaymentMethodRepository
	onlinePayments *repositories.OnlinePaymentRepository
	payments       *PaymentService
}

func NewRazorpayService(
	keyID, keySecret, webhookSecret string,
	orders *repositories.OrderRepository,
	methods *repositories.PaymentMethodRepository,
	onlinePayments *repositories.OnlinePaymentRepository,
	payments *PaymentService,
) *RazorpayService {
	return &RazorpayService{
		keyID:          keyID,
		keySecret:      keySecret,
		webhookSecret:  webhookSecret,
		orders:         orders,
		methods:        methods,
		onlinePayments: onlinePayments,
		payments:       payments,
	}
}

// IsEnabled reports whether gateway credentials are configured
func (s *RazorpayService) IsEnabled() bool {
	return s.keyID != "" && s.keySecret != ""
}

func (s *RazorpayService) client() *razorpay.Client {
	if !s.IsEnabled() {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// CreateOrder creates a Razorpay order for an unpaid POS order's payable
// total and records the attempt
func (s *RazorpayService) CreateOrder(ctx context.Context, req *models.CreateOnlinePaymentRequest) (*models.CreateOnlinePaymentResponse, error) {
	client := s.client()
	if client == nil {
		return nil, fmt.Errorf("online payments are not configured")
	}

	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", req.OrderID)
	}
	if order.PaymentStatus == models.PaymentStatusPaid ||
		order.Status == models.OrderStatusCancelled ||
		order.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, tillcore.ErrOrderNotPayable
	}

	payable := tillcore.PayableTotal(order, req.IncludeServiceFee)
	amountPaise := int(payable.Shift(2).IntPart())

	orderData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "BRL",
		"receipt":  fmt.Sprintf("order_%d_%d", order.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"order_id": order.ID,
			"table_id": order.TableID,
		},
	}

	gatewayOrder, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	razorpayOrderID := gatewayOrder["id"].(string)

	record := &models.OnlinePayment{
		OrderID:           order.ID,
		RazorpayOrderID:   razorpayOrderID,
		Amount:            payable,
		IncludeServiceFee: req.IncludeServiceFee,
	}
	if err := s.onlinePayments.Create(ctx, record); err != nil {
		return nil, err
	}

	return &models.CreateOnlinePaymentResponse{
		RazorpayOrderID: razorpayOrderID,
		AmountPaise:     amountPaise,
		Currency:        "BRL",
		KeyID:           s.keyID,
	}, nil
}

// VerifyPayment validates the checkout signature and settles the order
func (s *RazorpayService) VerifyPayment(ctx context.Context, req *models.VerifyOnlinePaymentRequest) (*CompletionResult, error) {
	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		_ = s.onlinePayments.MarkFailed(ctx, req.RazorpayOrderID, "invalid signature")
		return nil, fmt.Errorf("invalid payment signature")
	}
	return s.settle(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, "")
}

// settle marks the gateway attempt successful and pushes the amount through
// the split-payment machinery as a single online allocation. MarkSuccess
// returning false means another delivery already settled this attempt.
func (s *RazorpayService) settle(ctx context.Context, razorpayOrderID, razorpayPaymentID, method string) (*CompletionResult, error) {
	record, err := s.onlinePayments.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("unknown razorpay order %s", razorpayOrderID)
	}

	first, err := s.onlinePayments.MarkSuccess(ctx, razorpayOrderID, razorpayPaymentID, method)
	if err != nil {
		return nil, err
	}
	if !first {
		log.Printf("[Razorpay] Payment %s already settled, skipping", razorpayOrderID)
		return nil, nil
	}

	order, err := s.orders.Get(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", record.OrderID)
	}
	onlineMethod, err := s.methods.GetOnline(ctx, order.RestaurantID)
	if err != nil {
		return nil, err
	}
	if onlineMethod == nil {
		return nil, fmt.Errorf("restaurant %d has no online payment method", order.RestaurantID)
	}

	session, err := s.payments.StartSession(ctx, record.OrderID, record.IncludeServiceFee)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.payments.AddAllocation(ctx, session.ID, onlineMethod.ID, record.Amount); err != nil {
		s.payments.Abandon(session.ID)
		return nil, err
	}
	result, err := s.payments.Complete(ctx, session.ID)
	if err != nil {
		s.payments.Abandon(session.ID)
		return nil, fmt.Errorf("gateway payment confirmed but settlement failed: %w", err)
	}
	log.Printf("[Razorpay] Order %d settled online for %s", record.OrderID, record.Amount)
	return result, nil
}

// verifySignature verifies the Razorpay payment signature
func (s *RazorpayService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(data))
	expectedSignature := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expectedSignature), []byte(signature))
}

// VerifyWebhookSignature verifies the webhook signature
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return true // Skip verification if not configured
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expectedSignature := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expectedSignature), []byte(signature))
}

// ProcessWebhook processes Razorpay webhook events
func (s *RazorpayService) ProcessWebhook(ctx context.Context, event string, paymentData map[string]interface{}) error {
	switch event {
	case "payment.captured":
		return s.handlePaymentCaptured(ctx, paymentData)
	case "payment.failed":
		return s.handlePaymentFailed(ctx, paymentData)
	default:
		log.Printf("[Razorpay] Unhandled webhook event: %s", event)
		return nil
	}
}

func (s *RazorpayService) handlePaymentCaptured(ctx context.Context, paymentData map[string]interface{}) error {
	entity := webhookEntity(paymentData)
	orderID, _ := entity["order_id"].(string)
	paymentID, _ := entity["id"].(string)
	method, _ := entity["method"].(string)
	if orderID == "" {
		return fmt.Errorf("missing order_id in webhook")
	}
	_, err := s.settle(ctx, orderID, paymentID, method)
	return err
}

func (s *RazorpayService) handlePaymentFailed(ctx context.Context, paymentData map[string]interface{}) error {
	entity := webhookEntity(paymentData)
	orderID, _ := entity["order_id"].(string)
	reason := "Payment failed"
	if errorData, ok := entity["error_description"].(string); ok {
		reason = errorData
	}
	if orderID != "" {
		return s.onlinePayments.MarkFailed(ctx, orderID, reason)
	}
	return nil
}

// AttemptsForOrder lists an order's gateway payment attempts
func (s *RazorpayService) AttemptsForOrder(ctx context.Context, orderID int) ([]models.OnlinePayment, error) {
	return s.onlinePayments.ListByOrder(ctx, orderID)
}

func webhookEntity(paymentData map[string]interface{}) map[string]interface{} {
	paymentEntity, ok := paymentData["payment"].(map[string]interface{})
	if !ok {
		paymentEntity = paymentData
	}
	entity, ok := paymentEntity["entity"].(map[string]interface{})
	if !ok {
		entity = paymentEntity
	}
	return entity
}
