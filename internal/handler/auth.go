package handler

import (
	"net/http"
	"time"

	"omegavideos/internal/httputil"
	"omegavideos/internal/model"
	"omegavideos/internal/service"
	"omegavideos/internal/transport/http/middleware"
	"omegavideos/internal/validation"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService  *service.UserService
	authService  *service.AuthService
	secureCookie bool
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	h.writeSession(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	h.writeSession(w, r, http.StatusOK, user)
}

// Me returns the currently authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// writeSession issues a token, sets it as a cookie for browsers and
// returns it in the body for other clients.
func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	maxAge := h.authService.MaxAge()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, status, model.LoginResponse{
		Token:     token,
		ExpiresIn: maxAge,
		User:      user,
	})
}
