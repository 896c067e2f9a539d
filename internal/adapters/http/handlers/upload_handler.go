package handlers

import (
	"context"
	"strings"

	"kost-management/internal/adapters/storage"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Uploader stores a file and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// UploadHandler handles generic file uploads
type UploadHandler struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewUploadHandler creates a new upload handler. uploader may be nil when
// storage is not configured.
func NewUploadHandler(uploader Uploader, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{uploader: uploader, logger: logger}
}

// UploadRequest carries a base64 file
type UploadRequest struct {
	Key         string `json:"key"`
	Data        string `json:"data"`
	ContentType string `json:"content_type"`
}

// Upload stores a base64 payload in object storage
// @Summary Upload file
// @Tags Uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UploadRequest true "File"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	if h.uploader == nil {
		return response.FromError(c, domain.ErrStorageNotConfigured)
	}

	var req UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	key := strings.TrimSpace(req.Key)
	if key == "" || req.Data == "" {
		return response.FromError(c, domain.ErrInvalidUpload)
	}

	data, detected, err := storage.DecodeBase64(req.Data)
	if err != nil {
		return response.FromError(c, domain.ErrInvalidUpload)
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = detected
	}

	objectKey := storage.UploadKey(key)
	url, err := h.uploader.Upload(c.UserContext(), objectKey, contentType, data)
	if err != nil {
		h.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return response.FromError(c, domain.ErrStorageUnavailable)
	}
	return response.Created(c, "File uploaded successfully", fiber.Map{"url": url, "key": objectKey})
}
