package models

import "time"

// ExportFormat enumerates rendered file formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatJSON ExportFormat = "json"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is a persisted report export request.
type ExportJob struct {
	ID           string       `json:"id"`
	Format       ExportFormat `json:"format"`
	Filter       ReportFilter `json:"filter"`
	Status       ExportStatus `json:"status"`
	Progress     int          `json:"progress"`
	Attempts     int          `json:"attempts"`
	ResultURL    string       `json:"resultUrl,omitempty"`
	ResultPath   string       `json:"resultPath,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
}
