// Package auth provides password hashing for the registration and
// login flow.
//
// Passwords are stored as bcrypt hashes, never as plaintext. bcrypt
// generates and embeds a random salt per hash, and its cost parameter
// keeps brute-forcing expensive; CompareHashAndPassword is
// constant-time, so verification leaks nothing through timing.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor — roughly 250ms per hash on
// current server hardware, which is the usual target for login.
const defaultCost = 12

// PasswordService wraps bcrypt with an injectable cost. A struct
// rather than free functions so tests can run at the minimum cost
// without paying ~250ms per hashed fixture.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a reduced
// cost (bcrypt.MinCost is 4). Tests only — far too weak for real use.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext with bcrypt. The output embeds salt and
// cost, so it can be stored as-is and verified later without extra
// columns.
//
// bcrypt silently truncates inputs past 72 bytes; we reject them
// instead so callers aren't surprised.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash. Returns
// nil on match, a non-nil error otherwise.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
