package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"projecthub/internal/auth"
	"projecthub/internal/logger"
	"projecthub/internal/mailer"
	"projecthub/internal/model"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type VerificationStore interface {
	SavePending(ctx context.Context, pending *model.PendingUser) error
	FindPending(ctx context.Context, email string) (*model.PendingUser, error)
	RefreshPendingOTP(ctx context.Context, id uuid.UUID, otpHash string, expiresAt time.Time) error
	Promote(ctx context.Context, pendingID uuid.UUID) (*model.User, error)
	SaveReset(ctx context.Context, userID uuid.UUID, otpHash string, expiresAt time.Time) error
	FindReset(ctx context.Context, userID uuid.UUID) (*model.PasswordReset, error)
	ConsumeReset(ctx context.Context, userID uuid.UUID, hashedPassword string) error
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	OTPTTL    time.Duration
}

// UserHandler covers registration with email verification, login and
// password reset. None of it goes through project authorization.
type UserHandler struct {
	users  UserStore
	verify VerificationStore
	mail   mailer.Sender
	cfg    AuthConfig
}

func NewUserHandler(users UserStore, verify VerificationStore, mail mailer.Sender, cfg AuthConfig) *UserHandler {
	return &UserHandler{users: users, verify: verify, mail: mail, cfg: cfg}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

const invalidCode = "Invalid or expired code"

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a pending registration and emails a verification code.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	req.Email = normalizeEmail(req.Email)
	ctx := c.Request.Context()

	existing, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		internalError(c, err, "find user by email")
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(c, err, "hash password")
		return
	}
	code, otpHash, err := auth.GenerateOTP()
	if err != nil {
		internalError(c, err, "generate otp")
		return
	}

	pending := &model.PendingUser{
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: hash,
		OTPHash:        otpHash,
		ExpiresAt:      time.Now().Add(h.cfg.OTPTTL),
	}
	if err := h.verify.SavePending(ctx, pending); err != nil {
		internalError(c, err, "save pending user")
		return
	}

	if err := h.mail.Send(ctx, mailer.VerificationEmail(req.Email, req.Name, code, h.cfg.OTPTTL)); err != nil {
		internalError(c, err, "send verification email")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent", "email": req.Email})
}

// VerifyEmail checks the registration code and creates the account.
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx := c.Request.Context()

	pending, err := h.verify.FindPending(ctx, normalizeEmail(req.Email))
	if err != nil {
		internalError(c, err, "find pending user")
		return
	}
	if pending == nil || time.Now().After(pending.ExpiresAt) || !auth.CheckOTP(pending.OTPHash, req.OTP) {
		badRequest(c, invalidCode)
		return
	}

	user, err := h.verify.Promote(ctx, pending.ID)
	switch {
	case errors.Is(err, repository.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	case errors.Is(err, repository.ErrPendingNotFound):
		badRequest(c, invalidCode)
		return
	case err != nil:
		internalError(c, err, "promote pending user")
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// ResendOTP issues a fresh code for a pending registration. The response
// does not reveal whether one exists.
func (h *UserHandler) ResendOTP(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx := c.Request.Context()

	pending, err := h.verify.FindPending(ctx, normalizeEmail(req.Email))
	if err != nil {
		internalError(c, err, "find pending user")
		return
	}
	if pending != nil {
		code, otpHash, err := auth.GenerateOTP()
		if err != nil {
			internalError(c, err, "generate otp")
			return
		}
		if err := h.verify.RefreshPendingOTP(ctx, pending.ID, otpHash, time.Now().Add(h.cfg.OTPTTL)); err != nil {
			internalError(c, err, "refresh pending otp")
			return
		}
		if err := h.mail.Send(ctx, mailer.VerificationEmail(pending.Email, pending.Name, code, h.cfg.OTPTTL)); err != nil {
			internalError(c, err, "send verification email")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If a registration is pending, a new code has been sent"})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		internalError(c, err, "find user by email")
		return
	}
	if user == nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// ForgotPassword always answers 200 so callers cannot discover accounts.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		internalError(c, err, "find user by email")
		return
	}
	if user != nil {
		if err := h.sendReset(ctx, user); err != nil {
			// Still 200: a delivery failure must look the same as an unknown email.
			logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("password reset not sent")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code has been sent"})
}

func (h *UserHandler) sendReset(ctx context.Context, user *model.User) error {
	code, otpHash, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	if err := h.verify.SaveReset(ctx, user.ID, otpHash, time.Now().Add(h.cfg.OTPTTL)); err != nil {
		return err
	}
	return h.mail.Send(ctx, mailer.PasswordResetEmail(user.Email, user.Name, code, h.cfg.OTPTTL))
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		internalError(c, err, "find user by email")
		return
	}
	if user == nil {
		badRequest(c, invalidCode)
		return
	}

	reset, err := h.verify.FindReset(ctx, user.ID)
	if err != nil {
		internalError(c, err, "find password reset")
		return
	}
	if reset == nil || time.Now().After(reset.ExpiresAt) || !auth.CheckOTP(reset.OTPHash, req.OTP) {
		badRequest(c, invalidCode)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		internalError(c, err, "hash password")
		return
	}
	if err := h.verify.ConsumeReset(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrResetNotFound) {
			badRequest(c, invalidCode)
			return
		}
		internalError(c, err, "consume password reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		internalError(c, err, "get user")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user *model.User) {
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID.String(), h.cfg.JWTExpiry)
	if err != nil {
		internalError(c, err, "sign token")
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: toUserResponse(user)})
}
