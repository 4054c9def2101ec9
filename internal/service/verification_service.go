package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sudar-ai/classroom-api/internal/domain/entity"
	"github.com/sudar-ai/classroom-api/internal/domain/repository"
	apperrors "github.com/sudar-ai/classroom-api/internal/pkg/errors"
)

const verificationCodeLength = 6

// VerificationService issues and redeems the short-lived codes that prove
// mailbox control. Codes are 6 random digits, stored only as a salted and
// peppered SHA-256 digest, and each email holds at most one active code.
type VerificationService struct {
	codes          repository.VerificationCodeRepository
	codeTTL        time.Duration
	resendCooldown time.Duration
	maxAttempts    int
	codePepper     string
}

func NewVerificationService(
	codes repository.VerificationCodeRepository,
	codeTTL time.Duration,
	resendCooldown time.Duration,
	maxAttempts int,
	codePepper string,
) (*VerificationService, error) {
	if codes == nil {
		return nil, fmt.Errorf("verification code repository is required")
	}
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if resendCooldown <= 0 {
		resendCooldown = 60 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &VerificationService{
		codes:          codes,
		codeTTL:        codeTTL,
		resendCooldown: resendCooldown,
		maxAttempts:    maxAttempts,
		codePepper:     codePepper,
	}, nil
}

// Issue generates a fresh code for the email and stores it, replacing any
// previous pending code. The plaintext code is returned to the caller for
// delivery and is never persisted.
func (s *VerificationService) Issue(ctx context.Context, email string, purpose entity.CodePurpose) (string, error) {
	now := time.Now()

	existing, err := s.codes.GetActiveByEmail(email)
	if err == nil && existing != nil && !existing.IsExpired(now) {
		if now.Before(existing.LastSentAt.Add(s.resendCooldown)) {
			return "", fmt.Errorf("%w: please wait before requesting a new code", ErrResendCooldown)
		}
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	salt, err := generateCodeSalt()
	if err != nil {
		return "", fmt.Errorf("failed to generate code salt: %w", err)
	}

	record := &entity.VerificationCode{
		Email:        email,
		Purpose:      purpose,
		CodeHash:     hashVerificationCode(code, salt, s.codePepper),
		CodeSalt:     salt,
		ExpiresAt:    now.Add(s.codeTTL),
		AttemptCount: 0,
		MaxAttempts:  s.maxAttempts,
		LastSentAt:   now,
	}
	if err := s.codes.Upsert(record); err != nil {
		return "", err
	}

	return code, nil
}

// Redeem consumes the active code for the email. It succeeds at most once
// per issued code: the repository's Consume is a check-and-set, so of two
// racing redemptions one gets ErrCodeNotFound. Expired and attempt-exhausted
// codes are consumed on sight so the same value cannot be retried later.
func (s *VerificationService) Redeem(ctx context.Context, email, code string, purpose entity.CodePurpose) error {
	record, err := s.codes.GetActiveByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrCodeNotFound
		}
		return err
	}
	if record.Purpose != purpose {
		return ErrCodeNotFound
	}

	now := time.Now()
	if record.IsExpired(now) {
		// Burn the record regardless so retry-after-expiry stays dead.
		if _, err := s.codes.Consume(record.ID); err != nil {
			return err
		}
		return ErrCodeExpired
	}
	if record.AttemptCount >= record.MaxAttempts {
		if _, err := s.codes.Consume(record.ID); err != nil {
			return err
		}
		return ErrCodeAttemptsExceeded
	}

	expectedHash := hashVerificationCode(code, record.CodeSalt, s.codePepper)
	if subtle.ConstantTimeCompare([]byte(expectedHash), []byte(record.CodeHash)) != 1 {
		if err := s.codes.IncrementAttempts(record.ID); err != nil {
			return err
		}
		if record.AttemptCount+1 >= record.MaxAttempts {
			// Exhaustion burns the code; further guesses see no active code.
			if _, err := s.codes.Consume(record.ID); err != nil {
				return err
			}
			return ErrCodeAttemptsExceeded
		}
		return ErrCodeMismatch
	}

	consumed, err := s.codes.Consume(record.ID)
	if err != nil {
		return err
	}
	if !consumed {
		// Lost the race to a concurrent redemption.
		return ErrCodeNotFound
	}
	return nil
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", verificationCodeLength, n.Int64()), nil
}

func generateCodeSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashVerificationCode(code, salt, pepper string) string {
	sum := sha256.Sum256([]byte(pepper + ":" + salt + ":" + code))
	return hex.EncodeToString(sum[:])
}
