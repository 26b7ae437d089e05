package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"resto-backend/internal/middleware"
	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
)

type TableHandler struct {
	Repo *repositories.TableRepository
}

func NewTableHandler(repo *repositories.TableRepository) *TableHandler {
	return &TableHandler{Repo: repo}
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Number <= 0 {
		http.Error(w, "Table number must be positive", http.StatusBadRequest)
		return
	}

	table, err := h.Repo.Create(r.Context(), restaurantID, &req)
	if err != nil {
		http.Error(w, "Failed to create table", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(table)
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tables, err := h.Repo.List(r.Context(), restaurantID)
	if err != nil {
		http.Error(w, "Failed to list tables", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tables)
}

func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid table ID", http.StatusBadRequest)
		return
	}

	table, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to fetch table", http.StatusInternalServerError)
		return
	}
	if table == nil {
		http.Error(w, "Table not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(table)
}
