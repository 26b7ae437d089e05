package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"resto-backend/internal/middleware"
	"resto-backend/internal/models"
	"resto-backend/internal/services"
	"resto-backend/internal/tillcore"
	"resto-backend/internal/timeutil"
)

type RegisterHandler struct {
	Service *services.RegisterService
	Reports *services.ReportService
}

func NewRegisterHandler(s *services.RegisterService, reports *services.ReportService) *RegisterHandler {
	return &RegisterHandler{Service: s, Reports: reports}
}

func registerErrorStatus(err error) int {
	switch {
	case errors.Is(err, tillcore.ErrRegisterAlreadyOpen):
		return http.StatusConflict
	case errors.Is(err, tillcore.ErrRegisterClosed), errors.Is(err, tillcore.ErrRegisterNotOpen):
		return http.StatusConflict
	case errors.Is(err, tillcore.ErrNoOpenRegister):
		return http.StatusNotFound
	case errors.Is(err, tillcore.ErrInvalidAmount), errors.Is(err, tillcore.ErrInvalidType):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// Open starts a till session with an opening float.
func (h *RegisterHandler) Open(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.OpenRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	register, err := h.Service.Open(r.Context(), restaurantID, userID, &req)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(register)
}

// Current returns the restaurant's open register, if any.
func (h *RegisterHandler) Current(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	register, err := h.Service.CurrentOpen(r.Context(), restaurantID)
	if err != nil {
		http.Error(w, "Failed to fetch register", http.StatusInternalServerError)
		return
	}
	if register == nil {
		http.Error(w, "No open register", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(register)
}

func (h *RegisterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}

	register, err := h.Service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to fetch register", http.StatusInternalServerError)
		return
	}
	if register == nil {
		http.Error(w, "Register not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(register)
}

// History lists past sessions, newest first. Accepts a ?limit= query.
func (h *RegisterHandler) History(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	registers, err := h.Service.History(r.Context(), restaurantID, limit)
	if err != nil {
		http.Error(w, "Failed to list registers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registers)
}

// Transactions returns the session's full movement ledger in order.
func (h *RegisterHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}

	transactions, err := h.Service.Transactions(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// ExpectedBalance returns the replay-derived running balance.
func (h *RegisterHandler) ExpectedBalance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}

	balance, err := h.Service.ExpectedBalance(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"expected_balance": balance.StringFixed(2)})
}

// Summary returns income, expense and per-method totals for the session.
func (h *RegisterHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}

	summary, err := h.Service.Summary(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// Withdraw records a cash removal (sangria) against the open register.
func (h *RegisterHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.Service.Withdraw)
}

// Deposit records a cash top-up (suprimento) against the open register.
func (h *RegisterHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.Service.Deposit)
}

func (h *RegisterHandler) movement(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, restaurantID int, req *models.MovementRequest) (*models.TillTransaction, error)) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	transaction, err := fn(r.Context(), restaurantID, &req)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
}

// Close ends the session, reconciling the counted drawer against the ledger.
func (h *RegisterHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CloseRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.Close(r.Context(), id, userID, &req)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ClosingReport streams the session's closing report as a PDF download.
func (h *RegisterHandler) ClosingReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}

	report, err := h.Reports.GenerateClosingReport(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	filename := fmt.Sprintf("register_%d_%s.pdf", id, timeutil.Now().Format(timeutil.DateLayout))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(report)
}

// ArchiveClosingReport generates the PDF and uploads it to object storage.
func (h *RegisterHandler) ArchiveClosingReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid register ID", http.StatusBadRequest)
		return
	}

	report, err := h.Reports.GenerateClosingReport(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), registerErrorStatus(err))
		return
	}

	key, err := h.Reports.ArchiveClosingReport(r.Context(), id, report)
	if err != nil {
		http.Error(w, "Failed to archive report", http.StatusBadGateway)
		return
	}
	if key == "" {
		http.Error(w, "Archiving is not configured", http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"archived_as": key})
}
