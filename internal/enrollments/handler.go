package enrollments

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/middleware"
	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/response"
)

// CourseGetter loads a course outline so progress can be computed against its
// lesson count.
type CourseGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

// Handler exposes the buyer's library and progress tracking endpoints.
type Handler struct {
	repo    *Repository
	courses CourseGetter
	logger  *zap.Logger
}

func NewHandler(repo *Repository, courses CourseGetter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, courses: courses, logger: logger}
}

// MyEnrollments handles GET /api/enrollments.
func (h *Handler) MyEnrollments(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list enrollments", zap.Error(err))
		response.Internal(c, "failed to list enrollments")
		return
	}
	response.OK(c, list)
}

type lessonCompleteRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	LessonID string `json:"lesson_id" binding:"required"`
}

// CompleteLesson handles POST /api/enrollments/lesson-complete.
func (h *Handler) CompleteLesson(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req lessonCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	enrollment, err := h.repo.Find(c.Request.Context(), userID, models.ItemCourse, courseID)
	if err != nil {
		response.Internal(c, "failed to load enrollment")
		return
	}
	if enrollment == nil {
		response.Forbidden(c, "not enrolled in this course")
		return
	}

	course, err := h.courses.GetByID(c.Request.Context(), courseID)
	if err != nil || course == nil {
		response.Internal(c, "failed to load course")
		return
	}

	updated, err := h.repo.MarkLessonComplete(c.Request.Context(), enrollment.ID, req.LessonID, course.LessonCount())
	if err != nil {
		h.logger.Error("mark lesson complete", zap.Error(err))
		response.Internal(c, "failed to update progress")
		return
	}
	response.OK(c, updated)
}
