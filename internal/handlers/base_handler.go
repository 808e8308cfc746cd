package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type (
	ErrorResponse   = models.ErrorResponse
	SuccessResponse = models.SuccessResponse
)

// BaseHandler carries the logger and the shared request helpers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath())
	h.log(c).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	h.log(c).Error(msg, args...)
}

// respondError writes the standard error envelope
func (h *BaseHandler) respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

// parseIDParam writes a 400 and returns 0 when the param is not a positive integer
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		h.respondError(c, http.StatusBadRequest, "invalid_parameter", "Invalid "+param, c.Param(param))
		return 0
	}
	return uint(id)
}

// bindJSON writes a 400 for malformed bodies
func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return false
	}
	return true
}

// identity writes a 401 when the auth middleware did not run
func (h *BaseHandler) identity(c *gin.Context) (services.Identity, bool) {
	identity, err := GetIdentityFromContext(c)
	if err != nil {
		h.respondError(c, http.StatusUnauthorized, "unauthorized", "User not authenticated", nil)
		return services.Identity{}, false
	}
	return identity, true
}

// handleServiceError maps service errors onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationFailure *services.ValidationFailure
	if errors.As(err, &validationFailure) {
		resp := ErrorResponse{
			Error:            "validation_failed",
			Message:          "Validation failed",
			Timestamp:        time.Now().UTC(),
			Path:             c.Request.URL.Path,
			ValidationErrors: toValidationResponses(validationFailure.Errors),
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.respondError(c, http.StatusForbidden, "forbidden", "Access denied", map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		h.respondError(c, http.StatusNotFound, "not_found", capitalize(err.Error()), nil)
	case errors.Is(err, services.ErrUnauthorized):
		h.respondError(c, http.StatusUnauthorized, "unauthorized", capitalize(err.Error()), nil)
	case errors.Is(err, services.ErrForbidden):
		h.respondError(c, http.StatusForbidden, "forbidden", "Forbidden - insufficient permissions", nil)
	case errors.Is(err, services.ErrValidationFailed):
		h.respondError(c, http.StatusBadRequest, "validation_failed", "Validation failed", err.Error())
	case errors.Is(err, services.ErrDefinitionMismatch):
		h.respondError(c, http.StatusUnprocessableEntity, "definition_mismatch", capitalize(err.Error()), nil)
	case errors.Is(err, services.ErrInvalidState):
		h.respondError(c, http.StatusConflict, "invalid_state", capitalize(err.Error()), nil)
	default:
		h.LogError(c, err, "Unexpected service error")
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

func toValidationResponses(errs services.ValidationErrors) []models.ValidationErrorResponse {
	out := make([]models.ValidationErrorResponse, 0, len(errs))
	for _, e := range errs {
		value := ""
		if e.Value != nil {
			value = fmt.Sprint(e.Value)
		}
		out = append(out, models.ValidationErrorResponse{
			Field:   e.Field,
			Message: e.Message,
			Value:   value,
			Code:    e.Rule,
		})
	}
	return out
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
