package auth

import (
	"errors"
	"strings"
	"testing"
)

// =========================================================================
// HELPER
// =========================================================================

// newTestPasswordService returns a PasswordService with bcrypt cost 4 so the
// tests run in milliseconds instead of ~250ms each.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest()
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_EmptyAndShortAreAccepted(t *testing.T) {
	ps := newTestPasswordService()

	for _, p := range []string{"", "a", "abc"} {
		if _, err := ps.Hash(p); err != nil {
			t.Errorf("Hash(%q) error = %v, want nil", p, err)
		}
	}
}

func TestHash_RejectsOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash(72 bytes) error = %v, want nil", err)
	}

	_, err := ps.Hash(strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash(73 bytes) error = %v, want ErrPasswordTooLong", err)
	}
}

func TestNewPasswordService_OutOfRangeCostFallsBack(t *testing.T) {
	if got := NewPasswordService(1).cost; got != DefaultCost {
		t.Errorf("cost = %d, want %d", got, DefaultCost)
	}
	if got := NewPasswordService(5).cost; got != 5 {
		t.Errorf("cost = %d, want 5", got)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestPasswordVerify_Matching(t *testing.T) {
	ps := newTestPasswordService()

	// printable ASCII of various lengths at or above the default minimum
	passwords := []string{
		"secret1",
		"P@ssw0rd!",
		"~!@#$%^&*()_+{}|:<>?",
		strings.Repeat("z", 72),
	}
	for _, p := range passwords {
		hash, err := ps.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q) error = %v", p, err)
		}
		if !ps.Verify(hash, p) {
			t.Errorf("Verify(hash(%q), %q) = false, want true", p, p)
		}
	}
}

func TestPasswordVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("secret1")

	for _, p := range []string{"secret2", "Secret1", "secret1 ", ""} {
		if ps.Verify(hash, p) {
			t.Errorf("Verify(hash(secret1), %q) = true, want false", p)
		}
	}
}

func TestPasswordVerify_MalformedHash(t *testing.T) {
	ps := newTestPasswordService()

	for _, h := range []string{"", "plaintext", "$2a$04$short"} {
		if ps.Verify(h, "secret1") {
			t.Errorf("Verify(%q, ...) = true, want false", h)
		}
	}
}
