package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type TopicHandler struct {
	BaseHandler
	topicService services.TopicService
}

func NewTopicHandler(topicService services.TopicService, logger utils.Logger) *TopicHandler {
	return &TopicHandler{
		BaseHandler:  NewBaseHandler(logger),
		topicService: topicService,
	}
}

// CreateTopic
// @Summary Create topic under an owned company
// @Tags topics
// @Accept json
// @Produce json
// @Param topic body models.TopicCreateRequest true "Topic data"
// @Success 201 {object} models.Topic
// @Failure 404 {object} ErrorResponse
// @Router /topics [post]
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	var req models.TopicCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	topic, err := h.topicService.Create(c.Request.Context(), &req, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// ListTopicsByCompany
// @Summary List topics of a company
// @Tags topics
// @Produce json
// @Param companyId path uint true "Company ID"
// @Success 200 {array} models.Topic
// @Router /topics/company/{companyId} [get]
func (h *TopicHandler) ListTopicsByCompany(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	companyID := h.parseIDParam(c, "companyId")
	if companyID == 0 {
		return
	}

	topics, err := h.topicService.ListByCompany(c.Request.Context(), companyID, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// GetTopic
// @Summary Get topic
// @Tags topics
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} models.Topic
// @Failure 404 {object} ErrorResponse
// @Router /topics/{id} [get]
func (h *TopicHandler) GetTopic(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	topic, err := h.topicService.Get(c.Request.Context(), id, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

// DeleteTopic
// @Summary Delete topic
// @Tags topics
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} SuccessResponse
// @Router /topics/{id} [delete]
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.topicService.Delete(c.Request.Context(), id, identity); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Topic deleted successfully", Timestamp: time.Now().UTC()})
}
