package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/respond"
	"github.com/sakif/recipe-share/internal/service"
)

// Authenticator is the part of service.AuthService the handler needs.
// Tests substitute a stub.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// AuthHandler serves registration and login.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account, return a token
//   - HandleLogin    → check credentials, return a token and the user
//
// Both routes are public and rate limited per client IP (see server.go).
type AuthHandler struct {
	auth     Authenticator
	maxBytes int64
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. maxBytes caps the request body.
func NewAuthHandler(auth Authenticator, maxBytes int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, maxBytes: maxBytes, logger: logger}
}

// TokenResponse is the body of a successful registration.
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /register
// REQUEST BODY: {"name": "Ana", "email": "ana@example.com", "password": "..."}
// RESPONSE: 201 {"token": "<jwt>"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, h.maxBytes)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	result, err := h.auth.Register(r.Context(),
		form.get(fieldName),
		form.get(fieldEmail),
		form.get(fieldPassword),
	)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, TokenResponse{Token: result.Token})
}

// HandleLogin exchanges email + password for a token.
//
// HTTP: POST /login
// REQUEST BODY: {"email": "ana@example.com", "password": "..."}
// RESPONSE: 200 {"token": "<jwt>", "user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, h.maxBytes)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	result, err := h.auth.Login(r.Context(), form.get(fieldEmail), form.get(fieldPassword))
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, LoginResponse{Token: result.Token, User: result.User})
}
