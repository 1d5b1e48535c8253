package media

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/pkg/response"
	"github.com/vidyaprep/backend/pkg/storage"
)

// Handler uploads catalog images to S3 and issues presigned download URLs.
// Admin only.
type Handler struct {
	store  *storage.S3
	logger *zap.Logger
}

func NewHandler(store *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Upload handles POST /api/admin/media. Multipart form with a "file" part and
// an optional "folder" field (courses or masterclasses).
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if file.Size > storage.MaxImageSize {
		response.BadRequest(c, "file exceeds the 5MB limit")
		return
	}
	if !storage.ValidImageFilename(file.Filename) {
		response.BadRequest(c, "only jpg, jpeg, png and webp files are allowed")
		return
	}

	folder := c.PostForm("folder")
	switch folder {
	case "", storage.FolderCourses:
		folder = storage.FolderCourses
	case storage.FolderMasterclasses:
	default:
		response.BadRequest(c, "folder must be courses or masterclasses")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	key, err := h.store.Upload(c.Request.Context(), folder, file.Filename, src,
		storage.ContentTypeForFilename(file.Filename))
	if err != nil {
		h.logger.Error("media upload", zap.Error(err))
		response.Internal(c, "failed to store file")
		return
	}

	url, err := h.store.PresignGet(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("presign after upload", zap.Error(err), zap.String("key", key))
	}
	response.Created(c, gin.H{"key": key, "url": url})
}

// Presign handles GET /api/admin/media/presign?key=...
func (h *Handler) Presign(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		response.BadRequest(c, "key is required")
		return
	}
	url, err := h.store.PresignGet(c.Request.Context(), key)
	if err != nil {
		response.Internal(c, "failed to presign")
		return
	}
	response.OK(c, gin.H{"url": url})
}
