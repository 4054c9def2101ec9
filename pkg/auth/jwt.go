package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sudar-ai/classroom-api/internal/domain/repository"
)

// Token type claims. A refresh token can never be presented where an
// access token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned when the expiry claim has elapsed.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenInvalid covers every other decode failure: bad signature,
	// malformed token, wrong type claim, revoked JTI.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims carries the authenticated identity inside a signed token.
type Claims struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	Email     string    `json:"email"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 session tokens. Sessions are
// stateless except for the revocation denylist consulted on parse.
type JWTService struct {
	secret           []byte
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	revokedTokenRepo repository.RevokedTokenRepository
}

func NewJWTService(
	secret string,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	revokedTokenRepo repository.RevokedTokenRepository,
) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required for JWTService")
	}
	if revokedTokenRepo == nil {
		return nil, fmt.Errorf("RevokedTokenRepository is required for JWTService")
	}
	if accessTokenTTL <= 0 {
		accessTokenTTL = 600 * time.Minute
	}
	if refreshTokenTTL <= 0 {
		refreshTokenTTL = 7 * 24 * time.Hour
	}

	return &JWTService{
		secret:           []byte(secret),
		accessTokenTTL:   accessTokenTTL,
		refreshTokenTTL:  refreshTokenTTL,
		revokedTokenRepo: revokedTokenRepo,
	}, nil
}

// AccessTokenTTL reports the configured access token lifetime, used by the
// handler layer for cookie max-age.
func (s *JWTService) AccessTokenTTL() time.Duration { return s.accessTokenTTL }

// RefreshTokenTTL reports the configured refresh token lifetime.
func (s *JWTService) RefreshTokenTTL() time.Duration { return s.refreshTokenTTL }

// IssueAccessToken signs a short-lived token asserting the identity.
func (s *JWTService) IssueAccessToken(teacherID uuid.UUID, email string) (string, error) {
	return s.issue(teacherID, email, TokenTypeAccess, s.accessTokenTTL)
}

// IssueRefreshToken signs a long-lived token usable only at the refresh
// endpoint.
func (s *JWTService) IssueRefreshToken(teacherID uuid.UUID, email string) (string, error) {
	return s.issue(teacherID, email, TokenTypeRefresh, s.refreshTokenTTL)
}

func (s *JWTService) issue(teacherID uuid.UUID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TeacherID: teacherID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   teacherID.String(),
			Issuer:    "classroom-api",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[JWT] Failed to sign %s token for teacher %s: %v", tokenType, teacherID, err)
		return "", err
	}
	return signed, nil
}

// ParseToken verifies signature, expiry, and the expected type claim, and
// rejects tokens whose JTI has been revoked by logout.
func (s *JWTService) ParseToken(ctx context.Context, tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.TokenType != expectedType {
		log.Printf("[JWT] Token type mismatch: got %q, expected %q", claims.TokenType, expectedType)
		return nil, fmt.Errorf("%w: wrong token type", ErrTokenInvalid)
	}

	if claims.ID != "" {
		revoked, err := s.revokedTokenRepo.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token has been revoked", ErrTokenInvalid)
		}
	}

	return claims, nil
}

// RevokeToken denylists the token's JTI for the remainder of its life.
// Already-expired tokens are ignored.
func (s *JWTService) RevokeToken(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revokedTokenRepo.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	log.Printf("[JWT] Revoked %s token for teacher %s", claims.TokenType, claims.TeacherID)
	return nil
}
