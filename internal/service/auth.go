package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/auth"
	"github.com/sakif/my-applications/internal/logger"
	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/repository"
)

const invalidCredentials = "Invalid credentials"

type SignupInput struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

type AuthOptions struct {
	TokenTTL          time.Duration
	MinPasswordLength int
}

// AuthService handles signup, login and account lifecycle.
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	opts      AuthOptions

	// dummyHash is compared against on unknown emails so a failed login
	// costs the same bcrypt work whether or not the account exists.
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	opts AuthOptions,
) (*AuthService, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}

	dummy, err := passwords.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("auth service: preparing dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		opts:      opts,
		dummyHash: dummy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new account and signs the caller in.
//
// A taken email is reported as a conflict before the password length is
// checked, so a short password on a registered email yields 409, not 400.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("Email already registered")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("signup: checking email: %w", err)
	}

	if utf8.RuneCountInString(in.Password) < s.opts.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters", s.opts.MinPasswordLength))
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hashing password: %w", err)
	}

	user := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("user_id", user.ID).Msg("user signed up")
	return s.issue(user)
}

// Login checks credentials. Unknown email and wrong password fail the same
// way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.Verify(s.dummyHash, in.Password)
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("login: looking up user: %w", err)
	}

	if !s.passwords.Verify(user.PasswordHash, in.Password) {
		logger.FromContext(ctx).Info().Str("user_id", user.ID).Msg("login rejected")
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	return s.issue(user)
}

// GetUserByID resolves a user by ID. It satisfies auth.UserLookup so the
// bearer gate resolves identities through the service.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// DeleteAccount removes the user and every per-user record. Tokens issued to
// the account stop resolving immediately.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, s.opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthResult{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}
