package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/sudar-ai/classroom-api/internal/domain/entity"
	"github.com/sudar-ai/classroom-api/internal/domain/repository"
	apperrors "github.com/sudar-ai/classroom-api/internal/pkg/errors"
	"github.com/sudar-ai/classroom-api/pkg/auth"
)

// AuthService orchestrates the credential lifecycle: signup-code issuance,
// signup, login, forgot/reset password, and session issuance/revocation.
// It is the only writer of account and code records.
type AuthService struct {
	teacherRepo  repository.TeacherRepository
	verification *VerificationService
	passwords    *PasswordService
	jwtService   *auth.JWTService
	emails       EmailService
}

func NewAuthService(
	teacherRepo repository.TeacherRepository,
	verification *VerificationService,
	passwords *PasswordService,
	jwtService *auth.JWTService,
	emails EmailService,
) (*AuthService, error) {
	if teacherRepo == nil {
		return nil, fmt.Errorf("TeacherRepository is required for AuthService")
	}
	if verification == nil {
		return nil, fmt.Errorf("VerificationService is required for AuthService")
	}
	if passwords == nil {
		return nil, fmt.Errorf("PasswordService is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	if emails == nil {
		return nil, fmt.Errorf("EmailService is required for AuthService")
	}

	return &AuthService{
		teacherRepo:  teacherRepo,
		verification: verification,
		passwords:    passwords,
		jwtService:   jwtService,
		emails:       emails,
	}, nil
}

// TokenPair is the session credential set handed to the boundary layer.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignUpInput carries everything needed to complete a registration.
type SignUpInput struct {
	Email            string
	TeacherName      string
	Password         string
	VerificationCode string
}

// RequestSignupCode issues (or re-issues, replacing the previous one) a
// signup verification code and emails it. Already-registered emails are
// rejected rather than silently re-coded. Re-requesting within the resend
// cooldown succeeds without dispatching another email: the previous code
// is still active, so the request is an idempotent no-op.
func (s *AuthService) RequestSignupCode(ctx context.Context, email, teacherName string) error {
	email = normalizeEmail(email)

	_, err := s.teacherRepo.GetByEmail(email)
	if err == nil {
		return fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check email existence: %w", err)
	}

	code, err := s.verification.Issue(ctx, email, entity.PurposeSignup)
	if err != nil {
		if errors.Is(err, ErrResendCooldown) {
			log.Printf("[AuthService] Signup code re-request within cooldown for %s", email)
			return nil
		}
		return err
	}

	idempotencyKey := fmt.Sprintf("signup-code:%s:%s", email, code)
	if err := s.emails.SendVerificationCode(ctx, email, code, idempotencyKey); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	log.Printf("[AuthService] Signup code issued for %s", email)
	return nil
}

// SignUp completes registration: password policy, code redemption, account
// creation with the hashed password, then a fresh session.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*entity.Teacher, *TokenPair, error) {
	input.Email = normalizeEmail(input.Email)
	input.TeacherName = strings.TrimSpace(input.TeacherName)

	if input.TeacherName == "" {
		return nil, nil, fmt.Errorf("%w: teacher_name is required", apperrors.ErrValidation)
	}

	// Policy first: a weak password must not burn the code.
	if err := s.passwords.Validate(input.Password); err != nil {
		return nil, nil, err
	}

	if err := s.verification.Redeem(ctx, input.Email, input.VerificationCode, entity.PurposeSignup); err != nil {
		return nil, nil, err
	}

	_, err := s.teacherRepo.GetByEmail(input.Email)
	if err == nil {
		return nil, nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, nil, err
	}

	teacher := &entity.Teacher{
		TeacherName:  input.TeacherName,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.teacherRepo.Create(teacher); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokenPair(teacher)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[AuthService] Teacher %s (%s) registered", teacher.ID, teacher.Email)
	return teacher, tokens, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same ErrInvalidCredentials so responses cannot be
// used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Teacher, *TokenPair, error) {
	email = normalizeEmail(email)

	teacher, err := s.teacherRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.passwords.Verify(password, teacher.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokenPair(teacher)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[AuthService] Teacher %s (%s) logged in", teacher.ID, teacher.Email)
	return teacher, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked so each one rotates exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.Teacher, *TokenPair, error) {
	claims, err := s.jwtService.ParseToken(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, nil, err
	}

	teacher, err := s.teacherRepo.GetByID(claims.TeacherID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: account no longer exists", apperrors.ErrUnauthorized)
		}
		return nil, nil, err
	}

	if err := s.jwtService.RevokeToken(ctx, claims); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokenPair(teacher)
	if err != nil {
		return nil, nil, err
	}
	return teacher, tokens, nil
}

// ForgotPassword issues a reset code for registered emails. For unknown
// emails it does nothing and still reports success, so the response is
// identical either way. A resend cooldown is likewise swallowed: surfacing
// it would reveal that the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	teacher, err := s.teacherRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AuthService] Password reset requested for unknown email")
			return nil
		}
		return err
	}

	code, err := s.verification.Issue(ctx, email, entity.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, ErrResendCooldown) {
			log.Printf("[AuthService] Reset code resend suppressed by cooldown for teacher %s", teacher.ID)
			return nil
		}
		return err
	}

	idempotencyKey := fmt.Sprintf("reset-code:%s:%s", email, code)
	if err := s.emails.SendPasswordResetCode(ctx, email, code, idempotencyKey); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	log.Printf("[AuthService] Reset code issued for teacher %s", teacher.ID)
	return nil
}

// ResetPassword redeems a reset code and replaces the stored hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)

	if err := s.passwords.Validate(newPassword); err != nil {
		return err
	}

	teacher, err := s.teacherRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same error as a wrong code: no account oracle here either.
			return ErrCodeNotFound
		}
		return err
	}

	if err := s.verification.Redeem(ctx, email, code, entity.PurposePasswordReset); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.teacherRepo.UpdatePasswordHash(teacher.ID, hash); err != nil {
		return err
	}

	log.Printf("[AuthService] Password reset for teacher %s", teacher.ID)
	return nil
}

// GetTeacherByID returns the account for an authenticated identity.
func (s *AuthService) GetTeacherByID(id uuid.UUID) (*entity.Teacher, error) {
	return s.teacherRepo.GetByID(id)
}

// Logout revokes the presented access token, and the refresh token if one
// accompanies the request, for the rest of their lives. Sessions are
// otherwise stateless, so this is the whole logout.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if refreshToken != "" {
		// A refresh token that no longer parses needs no revocation.
		if refreshClaims, err := s.jwtService.ParseToken(ctx, refreshToken, auth.TokenTypeRefresh); err == nil {
			if err := s.jwtService.RevokeToken(ctx, refreshClaims); err != nil {
				return err
			}
		}
	}
	return s.jwtService.RevokeToken(ctx, claims)
}

func (s *AuthService) issueTokenPair(teacher *entity.Teacher) (*TokenPair, error) {
	accessToken, err := s.jwtService.IssueAccessToken(teacher.ID, teacher.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.jwtService.IssueRefreshToken(teacher.ID, teacher.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// normalizeEmail trims whitespace and lowercases; every entry point goes
// through this so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
