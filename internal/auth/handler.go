package auth

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/response"
	"github.com/vidyaprep/backend/pkg/utils"
)

// EnrollmentLister returns a user's enrollments with item display fields.
type EnrollmentLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.EnrollmentWithItem, error)
}

// SendOTPRequest is the body for POST /api/auth/send-otp.
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyOTPRequest is the body for POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// CompleteProfileRequest is the body for POST /api/auth/complete-profile.
type CompleteProfileRequest struct {
	Name       string  `json:"name" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	Email      *string `json:"email"`
	Age        *int    `json:"age"`
	Gender     *string `json:"gender"`
	ReferredBy *string `json:"referred_by"`
}

// AdminLoginRequest is the body for POST /api/auth/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo        *Repository
	verifier    OTPVerifier
	jwt         *JWTService
	enrollments EnrollmentLister
	rdb         *redis.Client
	cooldown    time.Duration
	logger      *zap.Logger
}

// NewHandler creates an auth handler. rdb may be nil, disabling the OTP send
// cooldown.
func NewHandler(repo *Repository, verifier OTPVerifier, jwt *JWTService, enrollments EnrollmentLister, rdb *redis.Client, cooldownSec int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:        repo,
		verifier:    verifier,
		jwt:         jwt,
		enrollments: enrollments,
		rdb:         rdb,
		cooldown:    time.Duration(cooldownSec) * time.Second,
		logger:      logger,
	}
}

// SendOTP handles POST /api/auth/send-otp. The phone is normalized to E.164
// before the provider call; sends to the same number are rate limited.
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "phone number required")
		return
	}
	phone := NormalizePhone(req.Phone)

	if h.rdb != nil && h.cooldown > 0 {
		key := "otp_cooldown:" + phone
		ok, err := h.rdb.SetNX(c.Request.Context(), key, "1", h.cooldown).Result()
		if err == nil && !ok {
			ttl := h.rdb.TTL(c.Request.Context(), key).Val()
			response.TooManyRequests(c, "OTP already sent, wait before retrying", int(ttl.Seconds()))
			return
		}
	}

	if err := h.verifier.Send(c.Request.Context(), phone); err != nil {
		h.logger.Error("send otp", zap.Error(err))
		response.BadGateway(c, "failed to send OTP")
		return
	}
	response.OK(c, gin.H{"message": "OTP sent"})
}

// VerifyOTP handles POST /api/auth/verify-otp. On approval, existing users get
// a session token; unknown numbers are told to complete their profile.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "phone and OTP required")
		return
	}
	phone := NormalizePhone(req.Phone)

	approved, err := h.verifier.Check(c.Request.Context(), phone, req.OTP)
	if err != nil {
		h.logger.Error("check otp", zap.Error(err))
		response.BadGateway(c, "verification process failed")
		return
	}
	if !approved {
		response.BadRequest(c, "invalid or expired OTP")
		return
	}

	user, err := h.repo.GetByPhone(c.Request.Context(), phone)
	if err != nil {
		h.logger.Error("get user by phone", zap.Error(err))
		response.Internal(c, "failed to look up user")
		return
	}
	if user == nil {
		response.OK(c, gin.H{"is_new_user": true})
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Phone, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, gin.H{"is_new_user": false, "user": user, "token": token})
}

// CompleteProfile handles POST /api/auth/complete-profile. Creates the user
// after a verified OTP; the phone must not already be registered.
func (h *Handler) CompleteProfile(c *gin.Context) {
	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	phone := NormalizePhone(req.Phone)

	existing, err := h.repo.GetByPhone(c.Request.Context(), phone)
	if err != nil {
		response.Internal(c, "failed to look up user")
		return
	}
	if existing != nil {
		response.Conflict(c, "user already exists")
		return
	}

	user := &models.User{
		Name:       req.Name,
		Phone:      phone,
		Email:      req.Email,
		Age:        req.Age,
		Gender:     req.Gender,
		ReferredBy: req.ReferredBy,
		Role:       models.RoleStudent,
	}
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "error saving profile")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Phone, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, gin.H{"user": user, "token": token})
}

// AdminLogin handles POST /api/auth/admin/login with email and password.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to look up user")
		return
	}
	if user == nil || user.Role != models.RoleAdmin || user.PasswordHash == nil ||
		!utils.CheckPassword(req.Password, *user.PasswordHash) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Phone, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, gin.H{"user": user, "token": token})
}

// GetUser handles GET /api/users/:id. Returns the profile with enrollments and
// their item display fields.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to look up user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	enrolled, err := h.enrollments.ListByUser(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list enrollments", zap.Error(err), zap.String("user_id", id.String()))
		response.Internal(c, "failed to load enrollments")
		return
	}
	response.OK(c, gin.H{"user": user, "enrollments": enrolled})
}
