package handlers

import (
	"encoding/json"
	"net/http"

	"resto-backend/internal/auth"
	"resto-backend/internal/middleware"
	"resto-backend/internal/models"
	"resto-backend/internal/services"
)

type AuthHandler struct {
	Users      *services.UserService
	TOTP       *services.TOTPService
	JWTManager *auth.JWTManager
}

func NewAuthHandler(users *services.UserService, totp *services.TOTPService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		Users:      users,
		TOTP:       totp,
		JWTManager: jwtManager,
	}
}

// Login handles user authentication. Accounts with 2FA enabled get a
// short-lived temp token instead of a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authResp, pending, err := h.Users.Login(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if pending != nil {
		json.NewEncoder(w).Encode(pending)
		return
	}
	json.NewEncoder(w).Encode(authResp)
}

// Verify2FA exchanges a temp token plus a TOTP code for a full session token.
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req models.Verify2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claims, err := h.JWTManager.ValidateTempToken(req.TempToken)
	if err != nil {
		http.Error(w, "Invalid or expired temp token", http.StatusUnauthorized)
		return
	}

	ok, err := h.TOTP.Verify(r.Context(), claims.UserID, req.Code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "Invalid verification code", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetUser(r.Context(), claims.UserID)
	if err != nil || user == nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	authResp, err := h.Users.IssueToken(user)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResp)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
