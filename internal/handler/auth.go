package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tazwar/feedpost/internal/service"
)

// AuthHandler exposes the registration/login/logout endpoints. It
// parses and validates JSON shapes, delegates to AuthService, and
// serializes responses — no business rules live here.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /auth/register
// Body: {"username","email","password"}
// 201 {id,username,email} | 400 missing field | 409 duplicate | 500
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON payload",
		})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	// The response echoes the public fields only — never the hash.
	writeJSON(w, http.StatusCreated, registerResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID string `json:"session_id"`
	UserID    int64  `json:"user_id"`
}

// HandleLogin verifies credentials and issues a session.
//
// HTTP: POST /auth/login
// Body: {"username","password"}
// 200 {session_id,user_id} | 400 | 401 | 500
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON payload",
		})
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
	})
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

// HandleLogout revokes a session.
//
// HTTP: POST /auth/logout
// Body: {"session_id"}
// 200 {message} | 400 | 404 already gone | 500
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON payload",
		})
		return
	}

	if err := h.auth.Logout(r.Context(), req.SessionID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}
