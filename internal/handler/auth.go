package handler

import (
	"context"
	"net/http"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/auth"
	"github.com/sakif/my-applications/internal/service"
)

// Authenticator is the part of service.AuthService the HTTP layer uses.
type Authenticator interface {
	Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// AuthHandler serves signup, login and the current-user endpoints.
//
//   - HandleSignup   → POST   /auth/signup
//   - HandleLogin    → POST   /auth/login
//   - HandleMe       → GET    /auth/me   (bearer)
//   - HandleDeleteMe → DELETE /auth/me   (bearer)
type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// HandleSignup registers an account.
//
// REQUEST BODY:  {"name": "Alice", "email": "a@x.com", "password": "secret1"}
// RESPONSE:      {"access_token": "...", "token_type": "bearer", "user": {"id", "name", "email"}}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleLogin exchanges credentials for a token. Same response as signup.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleMe returns the profile resolved by auth.RequireUser.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("Could not validate credentials"))
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

// HandleDeleteMe deletes the caller's account and all of its data.
func (h *AuthHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("Could not validate credentials"))
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
