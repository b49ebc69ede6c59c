package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/dto"
	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/jobs"
)

// JobTypeReportExport is the queue job type for report exports.
const JobTypeReportExport = "report_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ReportService manages the lifecycle of asynchronous report exports.
type ReportService struct {
	repo     exportJobStore
	queue    jobDispatcher
	exporter *ExportService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ReportServiceConfig
}

// ReportServiceConfig governs queue recovery and cleanup.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// NewReportService constructs the report export service.
func NewReportService(repo exportJobStore, queue jobDispatcher, exporter *ExportService, metrics *MetricsService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		repo:     repo,
		queue:    queue,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateJob validates the request, persists the job and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req dto.ReportExportRequest) (*dto.ReportJobResponse, error) {
	if !isValidFormat(req.Format) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	filter, err := NormalizeReportFilter(req.ReportFilter)
	if err != nil {
		return nil, err
	}
	if _, err := ResolveDateRange(filter.DateRange, time.Now(), filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		Format: req.Format,
		Filter: filter,
		Status: models.ExportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, storageError(err, "failed to create export job")
	}
	s.metrics.RecordExportJob(job.Format, models.ExportStatusQueued)
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeReportExport}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		s.metrics.RecordExportJob(job.Format, status)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to clients.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReportStatusResponse{
		ID:       job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Attempts: job.Attempts,
	}
	if job.ResultURL != "" {
		url := job.ResultURL
		resp.ResultURL = &url
	}
	if job.ErrorMessage != "" {
		msg := job.ErrorMessage
		resp.Error = &msg
	}
	if job.FinishedAt != nil {
		finished := job.FinishedAt.UTC().Format(time.RFC3339)
		resp.FinishedAt = &finished
	}
	return resp, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == "" || !strings.HasSuffix(job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs (e.g. after process restart).
func (s *ReportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeReportExport}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return
	}
	for _, job := range expired {
		relPath := job.ResultPath
		if relPath == "" {
			token := extractToken(job.ResultURL)
			if token == "" {
				continue
			}
			if _, relPath, _, err = s.exporter.ParseToken(token, true); err != nil {
				continue
			}
		}
		if err := s.exporter.Delete(relPath); err != nil {
			s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
		}
	}
	if removed, err := s.repo.DeleteFinishedBefore(ctx, cutoff); err != nil {
		s.logger.Sugar().Warnw("cleanup prune failed", "error", err)
	} else if removed > 0 {
		s.logger.Sugar().Infow("expired export jobs pruned", "count", removed)
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ReportService) loadJob(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, storageError(err, "failed to load export job")
	}
	return job, nil
}

func isValidFormat(f models.ExportFormat) bool {
	return f == models.ExportFormatCSV || f == models.ExportFormatPDF || f == models.ExportFormatJSON
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ReportWorker bridges queue jobs to ExportService.
type ReportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
}

// NewReportWorker constructs a worker.
func NewReportWorker(repo exportJobStore, exporter exportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReportWorker{
		repo:       repo,
		exporter:   exporter,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeReportExport {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
			w.metrics.RecordExportJob(record.Format, failed)
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		return err
	}
	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	path := result.RelativePath
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ResultPath:   &path,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	w.metrics.RecordExportJob(record.Format, finished)
	return nil
}
