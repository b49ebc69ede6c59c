package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduflow-api/internal/dto"
	"github.com/noah-isme/eduflow-api/internal/middleware"
	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/service"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/response"
)

type financialReporter interface {
	Generate(ctx context.Context, filter models.ReportFilter) (*models.FinancialReport, error)
	Export(ctx context.Context, filter models.ReportFilter) (*service.FileExport, error)
}

type reportJobService interface {
	CreateJob(ctx context.Context, req dto.ReportExportRequest) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes financial reports and asynchronous report exports.
type ReportHandler struct {
	reports financialReporter
	jobs    reportJobService
}

// NewReportHandler constructs handler. jobs may be nil when exports are disabled.
func NewReportHandler(reports financialReporter, jobs reportJobService) *ReportHandler {
	return &ReportHandler{reports: reports, jobs: jobs}
}

// RegisterRoutes mounts the report routes on rg.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.GET("/financial", h.Financial)
	reports.GET("/financial/export", h.ExportFinancial)
	if h.jobs != nil {
		reports.POST("/exports", h.GenerateReport)
		reports.GET("/exports/:id", h.ReportStatus)
		rg.GET("/export/:token", h.DownloadReport)
	}
}

func reportFilterFromQuery(c *gin.Context) models.ReportFilter {
	return models.ReportFilter{
		ReportType:    models.ReportType(queryTrim(c, "reportType")),
		DateRange:     models.DateRangeKey(queryTrim(c, "dateRange")),
		StartDate:     queryTrim(c, "startDate"),
		EndDate:       queryTrim(c, "endDate"),
		Department:    queryTrim(c, "department"),
		PaymentMethod: queryTrim(c, "paymentMethod"),
		Breakdown:     models.Breakdown(queryTrim(c, "breakdown")),
	}
}

// Financial godoc
// @Summary Generate a financial report
// @Tags Reports
// @Produce json
// @Param reportType query string false "revenue, payments, outstanding, department or student"
// @Param dateRange query string false "last3months, last6months, last12months, thisyear or custom"
// @Param startDate query string false "Custom range start (YYYY-MM-DD)"
// @Param endDate query string false "Custom range end (YYYY-MM-DD)"
// @Param department query string false "Restrict to a department"
// @Param paymentMethod query string false "Restrict to a payment method"
// @Param breakdown query string false "daily, weekly, monthly or quarterly"
// @Success 200 {object} response.Envelope
// @Router /reports/financial [get]
func (h *ReportHandler) Financial(c *gin.Context) {
	report, err := h.reports.Generate(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "skipped_records", report.Skipped)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// ExportFinancial godoc
// @Summary Download a financial report as JSON
// @Tags Reports
// @Produce json
// @Success 200 {file} file
// @Router /reports/financial/export [get]
func (h *ReportHandler) ExportFinancial(c *gin.Context) {
	file, err := h.reports.Export(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// GenerateReport godoc
// @Summary Queue a financial report export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ReportExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /reports/exports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "report exports are disabled"))
		return
	}
	var req dto.ReportExportRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.CreateJob(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ReportStatus godoc
// @Summary Report export status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/exports/{id} [get]
func (h *ReportHandler) ReportStatus(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "report exports are disabled"))
		return
	}
	status, err := h.jobs.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadReport godoc
// @Summary Download a finished export through its signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "report exports are disabled"))
		return
	}
	download, err := h.jobs.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export file"))
		return
	}
	c.Header("Cache-Control", "no-store")
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
	}
	c.DataFromReader(http.StatusOK, info.Size(), exportContentType(download.Format), download.File, headers)
}

func exportContentType(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatCSV:
		return "text/csv"
	case models.ExportFormatPDF:
		return "application/pdf"
	case models.ExportFormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
