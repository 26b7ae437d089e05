package handlers

import (
	"net/http"

	"resto-backend/internal/middleware"
	"resto-backend/internal/repositories"
	"resto-backend/pkg/utils"
)

type PaymentMethodHandler struct {
	Repo *repositories.PaymentMethodRepository
}

func NewPaymentMethodHandler(repo *repositories.PaymentMethodRepository) *PaymentMethodHandler {
	return &PaymentMethodHandler{Repo: repo}
}

// List returns the active payment methods for the restaurant. Methods are
// seeded by migration and toggled in the database, so there is no create
// endpoint.
func (h *PaymentMethodHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	methods, err := h.Repo.List(r.Context(), restaurantID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve payment methods")
		return
	}

	utils.RespondJSON(w, http.StatusOK, methods)
}
