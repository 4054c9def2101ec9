package service

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Password policy: at least 6 characters, at least one letter and one
// digit. The limits are intentionally the product's documented minimums,
// not bcrypt's.
const minPasswordLength = 6

// PasswordService validates password strength and owns every password
// hash in the system. Nothing else writes hashes.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// Validate rejects passwords below policy with ErrWeakPassword.
func (s *PasswordService) Validate(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: password must contain at least one letter", ErrWeakPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one number", ErrWeakPassword)
	}
	return nil
}

// Hash produces a salted one-way digest. bcrypt salts per call, so the
// same password hashes differently every time.
func (s *PasswordService) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored hash. It never
// returns an error to the caller; mismatch and malformed hash are both
// simply false.
func (s *PasswordService) Verify(password, passwordHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}
