package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	statsService   services.StatsService
}

func NewAttemptHandler(attemptService services.AttemptService, statsService services.StatsService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		statsService:   statsService,
	}
}

// StartAttempt opens a new attempt on an active assessment
// @Summary Start attempt
// @Description Returns the attempt id and the assessment without answer keys
// @Tags attempts
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 201 {object} services.StartAttemptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	h.LogRequest(c, "Starting attempt", "assessment_id", assessmentID, "user_id", identity.UserID)

	resp, err := h.attemptService.Start(c.Request.Context(), assessmentID, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SubmitAttempt grades and completes an attempt
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param submission body models.SubmitAttemptRequest true "Answers"
// @Success 200 {object} services.SubmitAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}
	var req models.SubmitAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "assessment_id", assessmentID, "attempt_id", req.AttemptID, "answers", len(req.Answers))

	resp, err := h.attemptService.Submit(c.Request.Context(), assessmentID, &req, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMyAttempts
// @Summary List the caller's attempts
// @Tags attempts
// @Produce json
// @Success 200 {array} models.Attempt
// @Router /assessments/attempts/my-attempts [get]
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListMine(c.Request.Context(), identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// GetMyStats
// @Summary Aggregate statistics over the caller's completed attempts
// @Tags attempts
// @Produce json
// @Success 200 {object} services.UserStats
// @Router /assessments/attempts/my-stats [get]
func (h *AttemptHandler) GetMyStats(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	stats, err := h.statsService.MyStats(c.Request.Context(), identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetAttempt
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} models.Attempt
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), id, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// AbandonAttempt
// @Summary Abandon an in-progress attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/attempts/{id}/abandon [post]
func (h *AttemptHandler) AbandonAttempt(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.attemptService.Abandon(c.Request.Context(), id, identity); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt abandoned", Timestamp: time.Now().UTC()})
}
