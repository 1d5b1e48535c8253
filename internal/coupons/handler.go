package coupons

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/response"
)

// VerifyRequest is the body for POST /api/coupons/verify.
type VerifyRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"order_amount" binding:"required"`
}

// CreateRequest is the body for POST /api/admin/coupons.
type CreateRequest struct {
	Code          string     `json:"code" binding:"required"`
	DiscountType  string     `json:"discount_type" binding:"required"`
	DiscountValue float64    `json:"discount_value" binding:"required"`
	MinOrderValue float64    `json:"min_order_value"`
	ValidUntil    *time.Time `json:"valid_until"`
	IsActive      *bool      `json:"is_active"`
	UsageLimit    *int       `json:"usage_limit"`
}

// Handler handles coupon HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a coupons handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Verify handles POST /api/coupons/verify — cart-page preview. Checks every
// constraint without claiming a usage slot; the discount is floored for
// display.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "code and order_amount required")
		return
	}

	cp, err := h.repo.GetActiveByCode(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.Error("lookup coupon", zap.Error(err))
		response.Internal(c, "failed to look up coupon")
		return
	}
	if cp == nil {
		response.NotFound(c, "invalid coupon")
		return
	}
	if cp.Expired(time.Now()) {
		response.BadRequest(c, "coupon expired")
		return
	}
	if req.OrderAmount < cp.MinOrderValue {
		response.BadRequest(c, fmt.Sprintf("min order value is ₹%g", cp.MinOrderValue))
		return
	}
	if cp.UsageLimit != nil && cp.UsedCount >= *cp.UsageLimit {
		response.BadRequest(c, "usage limit reached")
		return
	}

	discount := math.Floor(cp.Discount(req.OrderAmount))
	response.OK(c, gin.H{"code": cp.Code, "discount": discount})
}

// List handles GET /api/admin/coupons.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list coupons")
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/admin/coupons.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.DiscountType != models.DiscountFlat && req.DiscountType != models.DiscountPercentage {
		response.BadRequest(c, "discount_type must be flat or percentage")
		return
	}
	if req.DiscountType == models.DiscountPercentage && (req.DiscountValue <= 0 || req.DiscountValue > 100) {
		response.BadRequest(c, "percentage must be between 1 and 100")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	cp := &models.Coupon{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrderValue: req.MinOrderValue,
		ValidUntil:    req.ValidUntil,
		IsActive:      active,
		UsageLimit:    req.UsageLimit,
	}
	if err := h.repo.Create(c.Request.Context(), cp); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			response.Conflict(c, "code already exists")
			return
		}
		h.logger.Error("create coupon", zap.Error(err))
		response.Internal(c, "failed to create coupon")
		return
	}
	response.Created(c, cp)
}

// Delete handles DELETE /api/admin/coupons/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete coupon")
		return
	}
	response.OK(c, gin.H{"message": "deleted"})
}
