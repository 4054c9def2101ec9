package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sudar-ai/classroom-api/pkg/auth"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextTeacherID = "teacher_id"
	ContextEmail     = "email"
	ContextClaims    = "claims"
)

// AccessTokenCookie is where the handler layer stores the session token.
const AccessTokenCookie = "access_token"

// AuthMiddleware guards routes that need an authenticated teacher.
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth extracts the access token from the cookie, falling back to
// an Authorization: Bearer header, verifies it, and stores the identity in
// the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessTokenCookie)
		if err != nil || token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "error_type": "token_missing"})
				c.Abort()
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
				c.Abort()
				return
			}
			token = parts[1]
		}

		claims, err := m.jwtService.ParseToken(c.Request.Context(), token, auth.TokenTypeAccess)
		if err != nil {
			errType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errType = "token_expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errType})
			c.Abort()
			return
		}

		c.Set(ContextTeacherID, claims.TeacherID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}
