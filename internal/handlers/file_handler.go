package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type FileHandler struct {
	BaseHandler
	fileService services.FileService
}

func NewFileHandler(fileService services.FileService, logger utils.Logger) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(logger),
		fileService: fileService,
	}
}

// UploadFile
// @Summary Upload a study file to a topic
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param topicId formData uint true "Topic ID"
// @Param companyId formData uint false "Company ID"
// @Success 201 {object} models.File
// @Failure 400 {object} ErrorResponse
// @Router /files [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req models.FileUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Invalid form data", err.Error())
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "File is required", err.Error())
		return
	}
	content, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Unreadable file", nil)
		return
	}
	defer content.Close()

	h.LogRequest(c, "Uploading file", "topic_id", req.TopicID, "size", header.Size)

	file, err := h.fileService.Upload(c.Request.Context(), &req, header.Filename, content, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// ListFilesByTopic
// @Summary List files of a topic
// @Tags files
// @Produce json
// @Param topicId path uint true "Topic ID"
// @Success 200 {array} models.File
// @Router /files/topic/{topicId} [get]
func (h *FileHandler) ListFilesByTopic(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	topicID := h.parseIDParam(c, "topicId")
	if topicID == 0 {
		return
	}

	files, err := h.fileService.ListByTopic(c.Request.Context(), topicID, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// DownloadFile
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Param id path uint true "File ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, blob, err := h.fileService.Open(c.Request.Context(), id, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer blob.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, blob, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.OriginalName),
	})
}

// DeleteFile
// @Summary Delete a file
// @Tags files
// @Produce json
// @Param id path uint true "File ID"
// @Success 200 {object} SuccessResponse
// @Router /files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), id, identity); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "File deleted successfully", Timestamp: time.Now().UTC()})
}
