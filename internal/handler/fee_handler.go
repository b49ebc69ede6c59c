package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/service"
	"github.com/noah-isme/eduflow-api/pkg/response"
)

// FeeHandler exposes the fee schedule.
type FeeHandler struct {
	fees *service.FeeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// RegisterRoutes mounts the fee routes on rg.
func (h *FeeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fees := rg.Group("/fees")
	fees.GET("", h.List)
	fees.POST("", h.Create)
	fees.GET("/export", h.Export)
	fees.GET("/:id", h.Get)
	fees.PUT("/:id", h.Update)
	fees.DELETE("/:id", h.Delete)
	fees.POST("/:id/duplicate", h.Duplicate)
}

func feeFilterFromQuery(c *gin.Context) models.FeeFilter {
	return models.FeeFilter{
		Search:     queryTrim(c, "search"),
		Department: queryTrim(c, "department"),
		Type:       queryTrim(c, "type"),
		SortBy:     queryTrim(c, "sort"),
		SortOrder:  queryTrim(c, "order"),
	}
}

// List godoc
// @Summary List fees
// @Tags Fees
// @Produce json
// @Param search query string false "Search by name or description"
// @Param department query string false "Filter by department"
// @Param type query string false "Filter by fee type"
// @Param sort query string false "name, amount, dueDate or type"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	fees, err := h.fees.List(c.Request.Context(), feeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// Export godoc
// @Summary Download the filtered fee list as JSON
// @Tags Fees
// @Produce json
// @Success 200 {file} file
// @Router /fees/export [get]
func (h *FeeHandler) Export(c *gin.Context) {
	file, err := h.fees.Export(c.Request.Context(), feeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Get godoc
// @Summary Get fee
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Create godoc
// @Summary Create fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.FeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req service.FeeRequest
	if !bindJSON(c, &req) {
		return
	}
	fee, err := h.fees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Update godoc
// @Summary Update fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.FeeRequest true "Fee payload"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	var req service.FeeRequest
	if !bindJSON(c, &req) {
		return
	}
	fee, err := h.fees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Duplicate godoc
// @Summary Copy a fee
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 201 {object} response.Envelope
// @Router /fees/{id}/duplicate [post]
func (h *FeeHandler) Duplicate(c *gin.Context) {
	fee, err := h.fees.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Delete godoc
// @Summary Delete fee
// @Tags Fees
// @Param id path string true "Fee ID"
// @Success 204
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	if err := h.fees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
