package courses

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/middleware"
	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/response"
)

// AccessChecker reports whether a user holds an enrollment for an item.
type AccessChecker interface {
	HasAccess(ctx context.Context, userID uuid.UUID, kind models.ItemKind, itemID uuid.UUID) (bool, error)
}

// Handler handles course HTTP endpoints.
type Handler struct {
	repo   *Repository
	access AccessChecker
	logger *zap.Logger
}

// NewHandler creates a courses handler.
func NewHandler(repo *Repository, access AccessChecker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, access: access, logger: logger}
}

// courseSummary strips the content outline for catalog listings.
func courseSummary(c models.Course) models.Course {
	c.Content = nil
	return c
}

// List handles GET /api/courses — published courses without content.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), true)
	if err != nil {
		h.logger.Error("list courses", zap.Error(err))
		response.Internal(c, "failed to list courses")
		return
	}
	out := make([]models.Course, 0, len(list))
	for _, course := range list {
		out = append(out, courseSummary(course))
	}
	response.OK(c, out)
}

// Find handles GET /api/courses/id/:id — used for cart refresh.
func (h *Handler) Find(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	course, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load course")
		return
	}
	if course == nil {
		response.NotFound(c, "course not found")
		return
	}
	response.OK(c, course)
}

// GetBySlug handles GET /api/courses/slug/:slug. Lesson video ids are blanked
// for the public page.
func (h *Handler) GetBySlug(c *gin.Context) {
	course, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Internal(c, "failed to load course")
		return
	}
	if course == nil {
		response.NotFound(c, "course not found")
		return
	}
	course.Content = course.WithoutVideoIDs()
	response.OK(c, gin.H{"course": course})
}

// Content handles GET /api/courses/id/:id/content — the full outline with
// video ids, only for enrolled buyers.
func (h *Handler) Content(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	enrolled, err := h.access.HasAccess(c.Request.Context(), userID, models.ItemCourse, id)
	if err != nil {
		response.Internal(c, "failed to check access")
		return
	}
	if !enrolled {
		response.Forbidden(c, "not enrolled in this course")
		return
	}

	course, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load course")
		return
	}
	if course == nil {
		response.NotFound(c, "course not found")
		return
	}
	response.OK(c, gin.H{"content": course.Content})
}

// AdminList handles GET /api/admin/courses — everything, drafts included.
func (h *Handler) AdminList(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), false)
	if err != nil {
		response.Internal(c, "failed to list courses")
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/admin/courses.
func (h *Handler) Create(c *gin.Context) {
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if course.Title == "" || course.Thumbnail == "" || course.Category == "" {
		response.BadRequest(c, "title, category and thumbnail are required")
		return
	}
	if course.Level == "" {
		course.Level = "Beginner"
	}
	if course.Language == "" {
		course.Language = "English"
	}
	if err := h.repo.Create(c.Request.Context(), &course); err != nil {
		h.logger.Error("create course", zap.Error(err))
		response.Internal(c, "failed to create course")
		return
	}
	response.Created(c, course)
}

// Update handles PUT /api/admin/courses/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, &course); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "course not found")
			return
		}
		h.logger.Error("update course", zap.Error(err), zap.String("course_id", id.String()))
		response.Internal(c, "failed to update course")
		return
	}
	response.OK(c, course)
}

// Delete handles DELETE /api/admin/courses/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete course")
		return
	}
	response.OK(c, gin.H{"message": "deleted"})
}
