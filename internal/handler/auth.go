package handler

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/sakif/rulesmith/internal/auth"
	"github.com/sakif/rulesmith/internal/service"
)

// tokenCookieMaxAge matches the 7-day token lifetime.
const tokenCookieMaxAge = 7 * 24 * 60 * 60

// AuthHandler manages registration, login, logout, and identity checks.
//
//	POST /api/auth/register → create account, issue token
//	POST /api/auth/login    → verify credentials, issue token
//	POST /api/auth/logout   → clear the token cookie
//	GET  /api/auth/me       → return the authenticated user's profile
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authData is the payload of successful register/login responses.
type authData struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// Body: {"username": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	result, err := h.authSvc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeSuccess(w, http.StatusCreated, "registered", authData{
		Token: result.Token,
		User:  result.User,
	})
}

// HandleLogin verifies credentials and issues a token.
//
// HTTP: POST /api/auth/login
// Body: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeSuccess(w, http.StatusOK, "logged in", authData{
		Token: result.Token,
		User:  result.User,
	})
}

// HandleLogout clears the token cookie.
//
// HTTP: POST /api/auth/logout
//
// Stateless tokens can't be revoked server-side — logout just deletes the
// client's copy. The token stays technically valid until expiry.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, "logged out", nil)
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/auth/me
// Auth: required (RequireAuth sets userID in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeJSON(w, http.StatusUnauthorized, envelope{
			Success: false, Error: "unauthorized", Message: "valid authentication required",
		})
		return
	}

	user, err := h.authSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", user)
}

// setTokenCookie stores the JWT in an HttpOnly cookie. HttpOnly keeps the
// token out of reach of page JavaScript; SameSite=Lax blocks it on
// cross-site POSTs.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   tokenCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable in production behind HTTPS
	})
}
