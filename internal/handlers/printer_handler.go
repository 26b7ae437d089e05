package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"resto-backend/internal/repositories"
	"resto-backend/internal/services"
)

type PrinterHandler struct {
	Printer  *services.PrinterService
	Orders   *services.OrderService
	Tables   *repositories.TableRepository
	Payments *services.PaymentService
}

func NewPrinterHandler(printer *services.PrinterService, orders *services.OrderService, tables *repositories.TableRepository, payments *services.PaymentService) *PrinterHandler {
	return &PrinterHandler{
		Printer:  printer,
		Orders:   orders,
		Tables:   tables,
		Payments: payments,
	}
}

func (h *PrinterHandler) loadOrder(w http.ResponseWriter, r *http.Request) (orderID int, ok bool) {
	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return 0, false
	}
	return orderID, true
}

// KitchenTicket sends the order's unprinted items to the kitchen printer.
// Items already sent stay out, so firing twice only prints new dishes.
func (h *PrinterHandler) KitchenTicket(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	order, err := h.Orders.Get(r.Context(), orderID)
	if err != nil {
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	table, err := h.Tables.Get(r.Context(), order.TableID)
	if err != nil {
		http.Error(w, "Failed to fetch table", http.StatusInternalServerError)
		return
	}

	if err := h.Printer.PrintKitchenTicket(r.Context(), order, table); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "printed"})
}

// Receipt sends the customer receipt to the counter printer.
func (h *PrinterHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	var req struct {
		ChangeDue string `json:"change_due"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	order, err := h.Orders.Get(r.Context(), orderID)
	if err != nil {
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	table, err := h.Tables.Get(r.Context(), order.TableID)
	if err != nil {
		http.Error(w, "Failed to fetch table", http.StatusInternalServerError)
		return
	}

	payments, err := h.Payments.PaymentsForOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, "Failed to fetch payments", http.StatusInternalServerError)
		return
	}

	if err := h.Printer.PrintReceipt(r.Context(), order, table, payments, req.ChangeDue); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "printed"})
}
