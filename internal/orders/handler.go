package orders

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/middleware"
	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/response"
)

// Handler exposes order creation and payment verification over HTTP.
type Handler struct {
	service *Service
	repo    *Repository
	logger  *zap.Logger
}

func NewHandler(service *Service, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

type createOrderRequest struct {
	ItemKind    string `json:"item_kind" binding:"required"`
	ItemID      string `json:"item_id" binding:"required"`
	PlanType    string `json:"plan_type"`
	PaymentType string `json:"payment_type"`
	CouponCode  string `json:"coupon_code"`
}

// Create handles POST /api/orders.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	kind := models.ItemKind(req.ItemKind)
	if !kind.Valid() {
		response.BadRequest(c, "item_kind must be course or masterclass")
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	payment := models.PaymentType(req.PaymentType)
	if payment == "" {
		payment = models.PaymentFull
	}

	result, err := h.service.CreateOrder(c.Request.Context(), CreateOrderInput{
		UserID:      userID,
		ItemKind:    kind,
		ItemID:      itemID,
		PlanType:    models.PlanType(req.PlanType),
		PaymentType: payment,
		CouponCode:  req.CouponCode,
	})
	if err != nil {
		h.respondCreateError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *Handler) respondCreateError(c *gin.Context, err error) {
	var minErr MinOrderError
	switch {
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrInvalidPlan),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInstallmentsDisabled),
		errors.Is(err, ErrCouponUnusable),
		errors.Is(err, ErrCouponExpired):
		response.BadRequest(c, err.Error())
	case errors.As(err, &minErr):
		response.BadRequest(c, minErr.Error())
	default:
		h.logger.Error("create order", zap.Error(err))
		response.Internal(c, "failed to create order")
	}
}

type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// Verify handles POST /api/payments/verify.
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.service.VerifyPayment(c.Request.Context(),
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	switch {
	case err == nil:
		response.OK(c, gin.H{"message": "payment verified"})
	case errors.Is(err, ErrInvalidSignature):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrOrderNotFound):
		response.NotFound(c, err.Error())
	default:
		h.logger.Error("verify payment", zap.Error(err),
			zap.String("razorpay_order_id", req.RazorpayOrderID))
		response.Internal(c, "failed to verify payment")
	}
}

// MyOrders handles GET /api/orders.
func (h *Handler) MyOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list orders")
		return
	}
	response.OK(c, list)
}
