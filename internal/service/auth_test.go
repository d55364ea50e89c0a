package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/auth"
)

func newTestAuthService(t *testing.T, repo *fakeUserRepo) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-0123456789", "")
	require.NoError(t, err)
	svc, err := NewAuthService(repo, tokens, auth.NewPasswordServiceForTest(), AuthOptions{TokenTTL: time.Hour})
	require.NoError(t, err)
	return svc, tokens
}

func TestSignup(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestAuthService(t, repo)

	res, err := svc.Signup(context.Background(), SignupInput{
		Name:     "  Alice ",
		Email:    "  A@X.com ",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, "Alice", res.User.Name)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	claims, err := tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
}

func TestSignup_DuplicateEmailAnyCase(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Signup(context.Background(), SignupInput{Name: "Alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	for _, email := range []string{"a@x.com", "A@X.COM", " a@X.com"} {
		_, err := svc.Signup(context.Background(), SignupInput{Name: "Eve", Email: email, Password: "another1"})
		assert.ErrorIs(t, err, apperror.ErrConflict, email)
		assert.EqualError(t, err, "Email already registered")
	}
	assert.Len(t, repo.byID, 1)
}

func TestSignup_ConflictBeforePasswordPolicy(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Signup(context.Background(), SignupInput{Name: "Alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), SignupInput{Name: "Alice", Email: "a@x.com", Password: "123"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"short password", SignupInput{Name: "A", Email: "a@x.com", Password: "12345"}, "password"},
		{"empty password", SignupInput{Name: "A", Email: "a@x.com"}, "password"},
		{"password over 72 bytes", SignupInput{Name: "A", Email: "a@x.com", Password: strings.Repeat("p", 73)}, "password"},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "secret1"}, "email"},
		{"missing email", SignupInput{Name: "A", Password: "secret1"}, "email"},
		{"blank name", SignupInput{Name: "   ", Email: "a@x.com", Password: "secret1"}, "name"},
		{"long name", SignupInput{Name: strings.Repeat("n", 121), Email: "a@x.com", Password: "secret1"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc, _ := newTestAuthService(t, repo)

			_, err := svc.Signup(context.Background(), tt.in)

			require.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
			assert.Empty(t, repo.byID)
		})
	}
}

func TestSignup_MinPasswordLengthIsConfigurable(t *testing.T) {
	tokens, err := auth.NewTokenService("test-secret-0123456789", "")
	require.NoError(t, err)
	svc, err := NewAuthService(newFakeUserRepo(), tokens, auth.NewPasswordServiceForTest(), AuthOptions{MinPasswordLength: 10})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.EqualError(t, err, "Password must be at least 10 characters")
}

func TestSignup_RepositoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.getErr = errors.New("database is locked")
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrConflict)
	assert.NotErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(t, repo)
	signed, err := svc.Signup(context.Background(), SignupInput{Name: "Alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	t.Run("email is case-insensitive", func(t *testing.T) {
		res, err := svc.Login(context.Background(), LoginInput{Email: "A@X.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, res.User.ID)
		assert.NotEmpty(t, res.AccessToken)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, wrongPass := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong"})
		_, unknown := svc.Login(context.Background(), LoginInput{Email: "b@x.com", Password: "secret1"})

		assert.ErrorIs(t, wrongPass, apperror.ErrUnauthorized)
		assert.ErrorIs(t, unknown, apperror.ErrUnauthorized)
		assert.Equal(t, wrongPass.Error(), unknown.Error())
		assert.Equal(t, "Invalid credentials", unknown.Error())
	})

	t.Run("missing password is a validation error", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestGetUserAndDeleteAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(t, repo)
	res, err := svc.Signup(context.Background(), SignupInput{Name: "Alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := svc.GetUserByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	require.NoError(t, svc.DeleteAccount(context.Background(), res.User.ID))

	_, err = svc.GetUserByID(context.Background(), res.User.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAccount(context.Background(), res.User.ID), apperror.ErrNotFound)

	// the account can be recreated
	_, err = svc.Signup(context.Background(), SignupInput{Name: "Alice", Email: "a@x.com", Password: "secret1"})
	assert.NoError(t, err)
}

var _ auth.UserLookup = (*AuthService)(nil)
