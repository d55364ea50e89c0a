package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/auth"
	"github.com/sakif/my-applications/internal/handler"
	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/service"
)

// MockAuth records the inputs it was called with and returns canned results.
type MockAuth struct {
	SignupIn  service.SignupInput
	LoginIn   service.LoginInput
	DeletedID string

	ReturnRes *service.AuthResult
	ReturnErr error
}

func (m *MockAuth) Signup(_ context.Context, in service.SignupInput) (*service.AuthResult, error) {
	m.SignupIn = in
	return m.ReturnRes, m.ReturnErr
}

func (m *MockAuth) Login(_ context.Context, in service.LoginInput) (*service.AuthResult, error) {
	m.LoginIn = in
	return m.ReturnRes, m.ReturnErr
}

func (m *MockAuth) DeleteAccount(_ context.Context, userID string) error {
	m.DeletedID = userID
	return m.ReturnErr
}

var alice = &model.User{ID: "u-alice", Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$12$secret"}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var res handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func TestAuthHandler_HandleSignup(t *testing.T) {
	t.Run("valid signup", func(t *testing.T) {
		m := &MockAuth{ReturnRes: &service.AuthResult{AccessToken: "tok", TokenType: "bearer", User: alice}}
		h := handler.NewAuthHandler(m)

		body := `{"name":"Alice","email":"A@X.com","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()

		h.HandleSignup(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Equal(t, "A@X.com", m.SignupIn.Email)

		var res map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "tok", res["access_token"])
		assert.Equal(t, "bearer", res["token_type"])
		user := res["user"].(map[string]any)
		assert.Equal(t, "u-alice", user["id"])
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAuth{})
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"name":`))
		rr := httptest.NewRecorder()

		h.HandleSignup(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		res := decodeError(t, rr)
		assert.Equal(t, "validation_error", res.Error)
		assert.Equal(t, "Invalid JSON body", res.Message)
		assert.Equal(t, res.Message, res.Detail)
	})

	t.Run("empty body", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAuth{})
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", http.NoBody)
		rr := httptest.NewRecorder()

		h.HandleSignup(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Request body is required", decodeError(t, rr).Message)
	})

	t.Run("body too large", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAuth{})
		big := `{"name":"` + string(bytes.Repeat([]byte("a"), 2<<20)) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(big))
		rr := httptest.NewRecorder()

		h.HandleSignup(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, "payload_too_large", decodeError(t, rr).Error)
	})

	t.Run("duplicate email", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAuth{ReturnErr: apperror.Conflict("Email already registered")})
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"email":"a@x.com"}`))
		rr := httptest.NewRecorder()

		h.HandleSignup(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		res := decodeError(t, rr)
		assert.Equal(t, "conflict", res.Error)
		assert.Equal(t, "Email already registered", res.Message)
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAuth{ReturnErr: errors.New("sqlite: disk I/O error at /var/data/app.db")})
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{}`))
		rr := httptest.NewRecorder()

		h.HandleSignup(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "/var/data")
		res := decodeError(t, rr)
		assert.Equal(t, "internal_error", res.Error)
		assert.Equal(t, "An internal error occurred", res.Message)
	})
}

func TestAuthHandler_HandleLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		m := &MockAuth{ReturnRes: &service.AuthResult{AccessToken: "tok", TokenType: "bearer", User: alice}}
		h := handler.NewAuthHandler(m)

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"a@x.com","password":"secret1"}`))
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "secret1", m.LoginIn.Password)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAuth{ReturnErr: apperror.Unauthorized("Invalid credentials")})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"a@x.com","password":"nope"}`))
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		res := decodeError(t, rr)
		assert.Equal(t, "unauthorized", res.Error)
		assert.Equal(t, "Invalid credentials", res.Message)
	})
}

func TestAuthHandler_HandleMe(t *testing.T) {
	h := handler.NewAuthHandler(&MockAuth{})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(auth.WithUser(req.Context(), alice))
		rr := httptest.NewRecorder()

		h.HandleMe(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":"u-alice","name":"Alice","email":"a@x.com"}`, rr.Body.String())
	})

	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()

		h.HandleMe(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_HandleDeleteMe(t *testing.T) {
	m := &MockAuth{}
	h := handler.NewAuthHandler(m)

	req := httptest.NewRequest(http.MethodDelete, "/auth/me", nil)
	req = req.WithContext(auth.WithUser(req.Context(), alice))
	rr := httptest.NewRecorder()

	h.HandleDeleteMe(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "u-alice", m.DeletedID)
}
