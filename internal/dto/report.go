package dto

import "github.com/noah-isme/eduflow-api/internal/models"

// ReportExportRequest captures the POST /reports/exports payload.
type ReportExportRequest struct {
	Format models.ExportFormat `json:"format"`
	models.ReportFilter
}

// ReportJobResponse is returned after enqueueing an export.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID         string              `json:"id"`
	Status     models.ExportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	Attempts   int                 `json:"attempts"`
	ResultURL  *string             `json:"resultUrl,omitempty"`
	Error      *string             `json:"error,omitempty"`
	FinishedAt *string             `json:"finishedAt,omitempty"`
}
