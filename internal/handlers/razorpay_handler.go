package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"resto-backend/internal/models"
	"resto-backend/internal/services"
)

type RazorpayHandler struct {
	Service *services.RazorpayService
}

func NewRazorpayHandler(service *services.RazorpayService) *RazorpayHandler {
	return &RazorpayHandler{Service: service}
}

// Status reports whether online payments are configured.
// GET /api/online-payments/status
func (h *RazorpayHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": h.Service.IsEnabled()})
}

// CreateOrder creates a Razorpay order for an unpaid tab.
// POST /api/online-payments/create-order
func (h *RazorpayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.Service.IsEnabled() {
		http.Error(w, "Online payments are not configured", http.StatusServiceUnavailable)
		return
	}

	var req models.CreateOnlinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OrderID <= 0 {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	response, err := h.Service.CreateOrder(r.Context(), &req)
	if err != nil {
		log.Printf("[Razorpay] CreateOrder error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// VerifyPayment verifies the checkout callback signature and settles the tab.
// POST /api/online-payments/verify
func (h *RazorpayHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOnlinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	result, err := h.Service.VerifyPayment(r.Context(), &req)
	if err != nil {
		log.Printf("[Razorpay] VerifyPayment error for order %s: %v", req.RazorpayOrderID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"message":    "Payment verified successfully",
		"settlement": result,
	})
}

// AttemptsForOrder returns the online payment attempts recorded for an order.
// GET /api/orders/{id}/online-payments
func (h *RazorpayHandler) AttemptsForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	attempts, err := h.Service.AttemptsForOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, "Failed to list online payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(attempts)
}

// HandleWebhook processes Razorpay webhook events
// POST /webhooks/razorpay
func (h *RazorpayHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[Razorpay] Failed to read webhook body: %v", err)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.Service.VerifyWebhookSignature(body, signature) {
		log.Printf("[Razorpay] Invalid webhook signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Razorpay] Failed to parse webhook: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	event, _ := payload["event"].(string)
	payloadData, _ := payload["payload"].(map[string]interface{})

	log.Printf("[Razorpay] Received webhook: %s", event)

	if err := h.Service.ProcessWebhook(r.Context(), event, payloadData); err != nil {
		log.Printf("[Razorpay] Webhook processing error: %v", err)
		// Return 200 anyway to prevent retries for known errors
	}

	// Always return 200 to acknowledge receipt
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
