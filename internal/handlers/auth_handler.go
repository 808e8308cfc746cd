package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Register creates a local account
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "Registration data"
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for a token
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadResume replaces the caller's resume
// @Summary Upload resume
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "PDF, DOC or DOCX"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /auth/upload-resume [post]
func (h *AuthHandler) UploadResume(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	header, err := c.FormFile("resume")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Resume file is required", err.Error())
		return
	}
	file, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded resume")
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Unreadable resume file", nil)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Uploading resume", "user_id", identity.UserID, "size", header.Size)

	user, err := h.authService.UploadResume(c.Request.Context(), identity, header.Filename, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
