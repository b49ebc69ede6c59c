package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/export"
	"github.com/noah-isme/eduflow-api/pkg/storage"
)

type reportBuilder interface {
	Generate(ctx context.Context, filter models.ReportFilter) (*models.FinancialReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders financial reports to files and signs their download links.
type ExportService struct {
	reports reportBuilder
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	json    *export.JSONExporter
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportBuilder, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		reports: reports,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		json:    export.NewJSONExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Generate runs the job's report, stores the rendered file and returns a signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	report, err := s.reports.Generate(ctx, job.Filter)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		dataset, _ := ReportDataset(report)
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		dataset, title := ReportDataset(report)
		payload, err = s.pdf.Render(dataset, title)
	case models.ExportFormatJSON:
		payload, err = s.json.Render(models.ReportExportDocument{
			ReportType:  report.ReportType,
			GeneratedAt: report.GeneratedAt,
			Filters:     report.Filters,
			Summary:     report.Summary,
			Data:        report.TableData,
		})
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job, report.ReportType), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("report export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob, reportType models.ReportType) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("financial_report_%s_%s_%s.%s", sanitizeFilename(string(reportType)), sanitizeFilename(job.ID), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
