package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sudar-ai/classroom-api/internal/middleware"
	apperrors "github.com/sudar-ai/classroom-api/internal/pkg/errors"
	"github.com/sudar-ai/classroom-api/internal/service"
	"github.com/sudar-ai/classroom-api/pkg/auth"
)

// AuthHandler exposes the credential lifecycle over HTTP. Tokens travel in
// HttpOnly cookies; the middleware also accepts a Bearer header.
type AuthHandler struct {
	authService  *service.AuthService
	jwtService   *auth.JWTService
	cookieSecure bool
}

func NewAuthHandler(authService *service.AuthService, jwtService *auth.JWTService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		jwtService:   jwtService,
		cookieSecure: cookieSecure,
	}
}

const refreshTokenCookie = "refresh_token"

// Request bodies

type SendVerificationCodeRequest struct {
	Email       string `json:"email" binding:"required,email"`
	TeacherName string `json:"teacher_name" binding:"required,max=100"`
}

type SignupRequest struct {
	Email            string `json:"email" binding:"required,email"`
	TeacherName      string `json:"teacher_name" binding:"required,max=100"`
	Password         string `json:"password" binding:"required"`
	VerificationCode string `json:"verification_code" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// SendVerificationCode handles POST /auth/send-verification-code.
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req SendVerificationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.RequestSignupCode(c.Request.Context(), req.Email, req.TeacherName); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent to your email",
		"email":   req.Email,
	})
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	teacher, tokens, err := h.authService.SignUp(c.Request.Context(), service.SignUpInput{
		Email:            req.Email,
		TeacherName:      req.TeacherName,
		Password:         req.Password,
		VerificationCode: req.VerificationCode,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Account created successfully",
		"teacher_id":   teacher.ID,
		"teacher_name": teacher.TeacherName,
		"email":        teacher.Email,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	teacher, tokens, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"teacher_id":   teacher.ID,
		"teacher_name": teacher.TeacherName,
		"email":        teacher.Email,
	})
}

// Refresh handles POST /auth/refresh: rotates the refresh token and mints
// a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "error_type": "token_missing"})
		return
	}

	teacher, tokens, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Token refreshed",
		"teacher_id": teacher.ID,
	})
}

// ForgotPassword handles POST /auth/forgot-password. The response is the
// same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If the email is registered, a reset code has been sent",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	teacherID, exists := c.Get(middleware.ContextTeacherID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	teacher, err := h.authService.GetTeacherByID(teacherID.(uuid.UUID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"teacher_id":   teacher.ID,
		"teacher_name": teacher.TeacherName,
		"email":        teacher.Email,
		"created_at":   teacher.CreatedAt,
	})
}

// Logout handles POST /auth/logout: revokes the presented access token and
// the refresh token cookie, then clears both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	claimsVal, exists := c.Get(middleware.ContextClaims)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	refreshToken, _ := c.Cookie(refreshTokenCookie)
	if err := h.authService.Logout(c.Request.Context(), claimsVal.(*auth.Claims), refreshToken); err != nil {
		h.writeError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, tokens *service.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken,
		int(h.jwtService.AccessTokenTTL().Seconds()), "/", "", h.cookieSecure, true)
	c.SetCookie(refreshTokenCookie, tokens.RefreshToken,
		int(h.jwtService.RefreshTokenTTL().Seconds()), "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.cookieSecure, true)
}

// writeError maps service errors to HTTP responses. Typed errors keep the
// mapping table flat; anything unrecognized is a 500.
func (h *AuthHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, service.ErrCodeNotFound),
		errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrCodeAttemptsExceeded),
		errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
