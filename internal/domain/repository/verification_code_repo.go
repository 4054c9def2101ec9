package repository

import "github.com/sudar-ai/classroom-api/internal/domain/entity"

// VerificationCodeRepository persists pending verification codes.
type VerificationCodeRepository interface {
	// Upsert replaces any existing code row for the email, keeping the
	// one-active-code-per-email invariant at the storage layer.
	Upsert(code *entity.VerificationCode) error
	GetActiveByEmail(email string) (*entity.VerificationCode, error)
	IncrementAttempts(id uint) error
	// Consume marks the code consumed if and only if it is still
	// unconsumed, and reports whether this call won the check-and-set.
	// Concurrent redemptions of the same code serialize on this.
	Consume(id uint) (bool, error)
	DeleteByEmail(email string) error
}
