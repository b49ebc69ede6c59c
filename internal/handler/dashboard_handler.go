package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduflow-api/internal/dto"
	"github.com/noah-isme/eduflow-api/internal/middleware"
	"github.com/noah-isme/eduflow-api/internal/service"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/response"
)

type dashboardService interface {
	Finance(ctx context.Context, timeRange string) (*dto.FinanceDashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes mounts the dashboard routes on rg.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/finance", h.Finance)
}

// Finance godoc
// @Summary Finance dashboard summary
// @Tags Dashboard
// @Produce json
// @Param timeRange query string false "3months, 6months or 12months (default 6months)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/finance [get]
func (h *DashboardHandler) Finance(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	timeRange := queryTrim(c, "timeRange")
	if timeRange == "" {
		timeRange = service.TimeRange6Months
	}
	summary, cacheHit, err := h.service.Finance(c.Request.Context(), timeRange)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
