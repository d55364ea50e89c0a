// Package auth: password hashing utilities.
//
// bcrypt is deliberately slow and salts every hash. The output embeds
// version, cost and salt, so no separate salt column is needed:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 iterations)
//	 version
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production (~250ms per hash).
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer inputs are rejected
// instead of being silently truncated.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for inputs over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests; cost 4 makes tests run in milliseconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost. Values
// outside bcrypt's range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's minimum
// cost (4). Do NOT use in production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// Empty and short passwords hash fine; length policy belongs to the caller.
// The only input error is a plaintext longer than 72 bytes.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
//
// It returns false on a mismatch and also when the stored hash is malformed;
// a wrong password is never an error. bcrypt compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
