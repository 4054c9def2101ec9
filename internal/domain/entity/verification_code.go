package entity

import "time"

// CodePurpose says what a verification code unlocks.
type CodePurpose string

const (
	PurposeSignup        CodePurpose = "signup"
	PurposePasswordReset CodePurpose = "password_reset"
)

// VerificationCode stores the single pending code for an email address.
// The email column carries a unique index, so issuing a new code replaces
// the previous one instead of stacking: at most one active code per email.
// Only a salted hash of the code is stored.
type VerificationCode struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Email        string      `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Purpose      CodePurpose `gorm:"size:20;not null" json:"purpose"`
	CodeHash     string      `gorm:"size:64;not null" json:"-"`
	CodeSalt     string      `gorm:"size:64;not null" json:"-"`
	ExpiresAt    time.Time   `gorm:"not null;index" json:"expires_at"`
	AttemptCount int         `gorm:"not null;default:0" json:"attempt_count"`
	MaxAttempts  int         `gorm:"not null;default:5" json:"max_attempts"`
	LastSentAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_sent_at"`
	ConsumedAt   *time.Time  `gorm:"index" json:"consumed_at,omitempty"`
	CreatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

func (c *VerificationCode) IsConsumed() bool {
	return c.ConsumedAt != nil
}

func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
