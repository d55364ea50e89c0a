package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/model"
)

type fakeLookup struct {
	users map[string]*model.User
	err   error
}

func (f *fakeLookup) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func protected(t *testing.T, ts *TokenService, users UserLookup) http.Handler {
	t.Helper()
	return RequireUser(ts, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(u.ID))
	}))
}

func TestRequireUser(t *testing.T) {
	ts := newTestTokenService(t)
	alice := &model.User{ID: "user-123", Name: "Alice", Email: "a@x.com"}
	lookup := &fakeLookup{users: map[string]*model.User{alice.ID: alice}}

	valid, err := ts.Issue(aliceClaims(), time.Hour)
	require.NoError(t, err)
	expired, err := ts.Issue(aliceClaims(), 0)
	require.NoError(t, err)
	ghost, err := ts.Issue(Claims{UserID: "deleted-user"}, time.Hour)
	require.NoError(t, err)

	t.Run("valid token resolves the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		rr := httptest.NewRecorder()

		protected(t, ts, lookup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-123", rr.Body.String())
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "bearer   "+valid)
		rr := httptest.NewRecorder()

		protected(t, ts, lookup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	// every rejection must produce the same response
	rejections := map[string]string{
		"missing header":  "",
		"basic scheme":    "Basic dXNlcjpwYXNz",
		"empty token":     "Bearer ",
		"garbage token":   "Bearer not-a-jwt",
		"expired token":   "Bearer " + expired,
		"deleted subject": "Bearer " + ghost,
	}

	var bodies []string
	for name, header := range rejections {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()

			protected(t, ts, lookup).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			bodies = append(bodies, rr.Body.String())
		})
	}

	for _, b := range bodies {
		assert.Equal(t, unauthorizedBody, b)
	}
}

func TestRequireUser_LookupFailureIsInternal(t *testing.T) {
	ts := newTestTokenService(t)
	lookup := &fakeLookup{err: errors.New("database is locked")}

	token, err := ts.Issue(aliceClaims(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	RequireUser(ts, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "database is locked")
}

func TestUserFromContext_Anonymous(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), &model.User{ID: "u1"})
	u, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)
}
