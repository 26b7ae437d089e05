package handlers

import (
	"encoding/json"
	"net/http"

	"resto-backend/internal/middleware"
	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
	"resto-backend/internal/services"
)

type TOTPHandler struct {
	TOTPService *services.TOTPService
	UserRepo    *repositories.UserRepository
}

func NewTOTPHandler(totpService *services.TOTPService, userRepo *repositories.UserRepository) *TOTPHandler {
	return &TOTPHandler{
		TOTPService: totpService,
		UserRepo:    userRepo,
	}
}

// Setup initiates 2FA setup, returning the secret and a QR code.
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Only admins carry 2FA; waiters log in from shared tablets.
	if role, _ := middleware.GetRoleFromContext(r.Context()); role != "admin" {
		http.Error(w, "Only admin users can enable 2FA", http.StatusForbidden)
		return
	}

	user, err := h.UserRepo.Get(r.Context(), userID)
	if err != nil || user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if user.TOTPEnabled {
		http.Error(w, "2FA is already enabled", http.StatusBadRequest)
		return
	}

	response, err := h.TOTPService.GenerateSetup(r.Context(), user)
	if err != nil {
		http.Error(w, "Failed to generate 2FA setup", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Enable verifies the first code and switches 2FA on.
func (h *TOTPHandler) Enable(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.VerifyTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "Verification code is required", http.StatusBadRequest)
		return
	}

	if err := h.TOTPService.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		if _, ok := err.(*services.TOTPError); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to enable 2FA", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": true})
}

// Disable switches 2FA off after re-authenticating with password and code.
func (h *TOTPHandler) Disable(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.VerifyTOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.TOTPService.Disable(r.Context(), userID, req.Password, req.Code); err != nil {
		if _, ok := err.(*services.TOTPError); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to disable 2FA", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": false})
}

// Status reports whether the user has 2FA enabled.
func (h *TOTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.TOTPService.GetStatus(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch 2FA status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
