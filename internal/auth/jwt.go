// Package auth provides password hashing, bearer token issuance/validation and
// the middleware that resolves the current user for protected routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /auth/signup or /auth/login verifies the password (bcrypt)
//  2. The server issues a signed JWT (HS256) carrying the user id in "sub"
//  3. The client sends it back on every call: Authorization: Bearer <token>
//  4. RequireUser verifies the token, loads the user row and puts it in the
//     request context
//
// Tokens are stateless: nothing is stored server side, so a token stays valid
// until it expires (7 days by default) or the secret is rotated. There is no
// revocation list.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<user id>","email":"...","name":"...","iss":"...","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for every rejection reason: bad
// signature, malformed token, wrong algorithm or issuer, missing subject,
// expiry. Callers must not tell these apart for end users.
var ErrInvalidToken = errors.New("auth: invalid token")

// DefaultIssuer is used when NewTokenService gets an empty issuer.
const DefaultIssuer = "my-applications"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: AUTH_JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Claims is what a token says about its holder.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the JWT payload. The user id travels in the registered
// "sub" claim; email and name are private claims.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for c that expires ttl from now.
//
// A ttl of zero yields a token whose expiry equals its issue second; Verify
// rejects it straight away.
func (s *TokenService) Issue(c Claims, ttl time.Duration) (string, error) {
	if c.UserID == "" {
		return "", errors.New("auth: token subject must not be empty")
	}
	if ttl < 0 {
		return "", fmt.Errorf("auth: negative token ttl %s", ttl)
	}

	now := time.Now()
	tc := tokenClaims{
		Email: c.Email,
		Name:  c.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and checks a token string.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired; "exp" must be present
//   - Issuer matches this service
//   - Algorithm is HS256 (blocks "none" and algorithm confusion)
//
// Every failure wraps ErrInvalidToken; the underlying reason is kept in the
// chain for logs only.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	if tc.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	c := &Claims{
		UserID: tc.Subject,
		Email:  tc.Email,
		Name:   tc.Name,
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
