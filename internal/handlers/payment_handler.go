package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"resto-backend/internal/services"
	"resto-backend/internal/tillcore"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(s *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: s}
}

func paymentErrorStatus(err error) int {
	switch {
	case errors.Is(err, tillcore.ErrIncompletePayment),
		errors.Is(err, tillcore.ErrOrderNotPayable),
		errors.Is(err, tillcore.ErrNoOpenRegister):
		return http.StatusConflict
	case errors.Is(err, tillcore.ErrExceedsRemaining),
		errors.Is(err, tillcore.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// StartSession opens a split-payment session for an order.
func (h *PaymentHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID           int  `json:"order_id"`
		IncludeServiceFee bool `json:"include_service_fee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OrderID <= 0 {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	session, err := h.Service.StartSession(r.Context(), req.OrderID, req.IncludeServiceFee)
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func (h *PaymentHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Session(mux.Vars(r)["sessionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// AddAllocation assigns part of the bill to a payment method. For cash the
// response includes any change due.
func (h *PaymentHandler) AddAllocation(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req struct {
		PaymentMethodID int    `json:"payment_method_id"`
		Amount          string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	session, change, err := h.Service.AddAllocation(r.Context(), sessionID, req.PaymentMethodID, amount)
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session":    session,
		"change_due": change.StringFixed(2),
	})
}

func (h *PaymentHandler) RemoveAllocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	methodID, err := strconv.Atoi(vars["methodId"])
	if err != nil {
		http.Error(w, "Invalid payment method ID", http.StatusBadRequest)
		return
	}

	session, err := h.Service.RemoveAllocation(vars["sessionId"], methodID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (h *PaymentHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	h.Service.Abandon(mux.Vars(r)["sessionId"])
	w.WriteHeader(http.StatusNoContent)
}

// Complete settles the session: every allocation becomes an order payment and
// a till transaction in one database transaction.
func (h *PaymentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Complete(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		http.Error(w, err.Error(), paymentErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *PaymentHandler) ListForOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	payments, err := h.Service.PaymentsForOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, "Failed to list payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}
