package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/services"
	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

type CompanyHandler struct {
	BaseHandler
	companyService services.CompanyService
}

func NewCompanyHandler(companyService services.CompanyService, logger utils.Logger) *CompanyHandler {
	return &CompanyHandler{
		BaseHandler:    NewBaseHandler(logger),
		companyService: companyService,
	}
}

// CreateCompany
// @Summary Create company
// @Tags companies
// @Accept json
// @Produce json
// @Param company body models.CompanyCreateRequest true "Company data"
// @Success 201 {object} models.Company
// @Failure 400 {object} ErrorResponse
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	var req models.CompanyCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), &req, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

// ListCompanies
// @Summary List the caller's companies
// @Tags companies
// @Produce json
// @Success 200 {array} models.Company
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	companies, err := h.companyService.List(c.Request.Context(), identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

// GetCompany
// @Summary Get company
// @Tags companies
// @Produce json
// @Param id path uint true "Company ID"
// @Success 200 {object} models.Company
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), id, identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// DeleteCompany
// @Summary Delete company
// @Tags companies
// @Produce json
// @Param id path uint true "Company ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.companyService.Delete(c.Request.Context(), id, identity); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Company deleted successfully", Timestamp: time.Now().UTC()})
}
