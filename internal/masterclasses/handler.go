package masterclasses

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/response"
)

// Handler handles masterclass HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// public strips the meeting link before a masterclass leaves the API.
func public(m models.Masterclass) models.Masterclass {
	m.MeetingLink = ""
	return m
}

// ListUpcoming handles GET /api/masterclasses.
func (h *Handler) ListUpcoming(c *gin.Context) {
	list, err := h.repo.ListUpcoming(c.Request.Context(), time.Now())
	if err != nil {
		h.logger.Error("list masterclasses", zap.Error(err))
		response.Internal(c, "failed to list masterclasses")
		return
	}
	out := make([]models.Masterclass, 0, len(list))
	for _, m := range list {
		out = append(out, public(m))
	}
	response.OK(c, out)
}

// GetBySlug handles GET /api/masterclasses/slug/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	m, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Internal(c, "failed to load masterclass")
		return
	}
	if m == nil {
		response.NotFound(c, "masterclass not found")
		return
	}
	out := public(*m)
	response.OK(c, gin.H{"masterclass": out, "expired": m.Expired(time.Now())})
}

// Find handles GET /api/masterclasses/id/:id.
func (h *Handler) Find(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid masterclass id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load masterclass")
		return
	}
	if m == nil {
		response.NotFound(c, "masterclass not found")
		return
	}
	response.OK(c, public(*m))
}

// AdminList handles GET /api/admin/masterclasses — every class with meeting
// links intact.
func (h *Handler) AdminList(c *gin.Context) {
	list, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list masterclasses")
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/admin/masterclasses.
func (h *Handler) Create(c *gin.Context) {
	var m models.Masterclass
	if err := c.ShouldBindJSON(&m); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if m.Title == "" || m.BannerImage == "" || m.Schedule.StartDate.IsZero() {
		response.BadRequest(c, "title, banner_image and schedule.start_date are required")
		return
	}
	if err := h.repo.Create(c.Request.Context(), &m); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			response.Conflict(c, "a masterclass with this title already exists")
			return
		}
		h.logger.Error("create masterclass", zap.Error(err))
		response.Internal(c, "failed to create masterclass")
		return
	}
	response.Created(c, m)
}

// Update handles PUT /api/admin/masterclasses/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid masterclass id")
		return
	}
	var m models.Masterclass
	if err := c.ShouldBindJSON(&m); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, &m); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			response.Conflict(c, "a masterclass with this title already exists")
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "masterclass not found")
			return
		}
		h.logger.Error("update masterclass", zap.Error(err), zap.String("masterclass_id", id.String()))
		response.Internal(c, "failed to update masterclass")
		return
	}
	response.OK(c, m)
}

// Delete handles DELETE /api/admin/masterclasses/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid masterclass id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete masterclass")
		return
	}
	response.OK(c, gin.H{"message": "deleted"})
}
