package service

import "errors"

// Credential flow errors. Handlers rely on these for stable error_type
// mapping; none of them is a programming fault.
var (
	// ErrWeakPassword is returned when a password fails the policy.
	ErrWeakPassword = errors.New("weak_password")

	// ErrInvalidCredentials deliberately covers both an unknown email and
	// a wrong password so login responses cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrCodeNotFound: no active verification code exists for the email.
	ErrCodeNotFound = errors.New("verification_code_not_found")

	// ErrCodeExpired: the code's TTL elapsed before redemption.
	ErrCodeExpired = errors.New("verification_code_expired")

	// ErrCodeMismatch: the supplied code does not match the issued one.
	ErrCodeMismatch = errors.New("verification_code_mismatch")

	// ErrCodeAttemptsExceeded: too many wrong guesses; the code is dead.
	ErrCodeAttemptsExceeded = errors.New("verification_attempts_exceeded")

	// ErrResendCooldown: a new code was requested too soon after the
	// previous send.
	ErrResendCooldown = errors.New("verification_resend_cooldown")
)
