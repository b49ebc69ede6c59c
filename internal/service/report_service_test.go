package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/dto"
	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/jobs"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newReportServiceForTest(t *testing.T) (*ReportService, *repository.ExportJobRepository, *queueStub, *ExportService) {
	t.Helper()
	repo := repository.NewExportJobRepository(kvstore.NewMemoryStore())
	queue := &queueStub{}
	exportSvc, _ := newExportServiceForTest(t)
	svc := NewReportService(repo, queue, exportSvc, nil, zap.NewNop(), ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
	})
	return svc, repo, queue, exportSvc
}

func TestReportServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), dto.ReportExportRequest{
		Format:       models.ExportFormatCSV,
		ReportFilter: models.ReportFilter{ReportType: models.ReportTypePayments},
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.ID)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeReportExport, queue.jobs[0].Type)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BreakdownMonthly, stored.Filter.Breakdown)
	assert.Equal(t, models.DateRangeLast6Months, stored.Filter.DateRange)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc, _, queue, _ := newReportServiceForTest(t)
	ctx := context.Background()

	_, err := svc.CreateJob(ctx, dto.ReportExportRequest{Format: "xlsx"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.CreateJob(ctx, dto.ReportExportRequest{Format: models.ExportFormatPDF, ReportFilter: models.ReportFilter{ReportType: "forecast"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.CreateJob(ctx, dto.ReportExportRequest{Format: models.ExportFormatPDF, ReportFilter: models.ReportFilter{DateRange: models.DateRangeCustom, StartDate: "bad"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, queue.jobs)
}

func TestReportServiceCreateJobEnqueueFailure(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	queue.err = errors.New("queue full")

	_, err := svc.CreateJob(context.Background(), dto.ReportExportRequest{Format: models.ExportFormatCSV})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))

	queued, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, queued, "job must be marked failed")
}

func TestReportServiceGetStatus(t *testing.T) {
	svc, repo, _, _ := newReportServiceForTest(t)
	ctx := context.Background()
	finishedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	job := &models.ExportJob{ID: "job-1", Format: models.ExportFormatCSV, Status: models.ExportStatusFinished, Progress: 100, ResultURL: "/api/v1/export/tok", FinishedAt: &finishedAt}
	require.NoError(t, repo.Create(ctx, job))

	resp, err := svc.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, resp.Status)
	require.NotNil(t, resp.ResultURL)
	assert.Equal(t, "/api/v1/export/tok", *resp.ResultURL)
	assert.Equal(t, "2024-03-15T10:00:00Z", *resp.FinishedAt)
	assert.Nil(t, resp.Error)

	_, err = svc.GetStatus(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceResolveDownload(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	ctx := context.Background()
	job := &models.ExportJob{ID: "job-download", Format: models.ExportFormatCSV, Filter: models.ReportFilter{ReportType: models.ReportTypeRevenue}}
	require.NoError(t, repo.Create(ctx, job))

	result, err := exportSvc.Generate(ctx, job)
	require.NoError(t, err)

	_, err = svc.ResolveDownload(ctx, result.Token)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden), "job without result must not resolve")

	finished := models.ExportStatusFinished
	url := result.URL
	require.NoError(t, repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &finished, ResultURL: &url}))

	download, err := svc.ResolveDownload(ctx, result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	assert.Equal(t, models.ExportFormatCSV, download.Format)

	_, err = svc.ResolveDownload(ctx, "garbage")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "a", Format: models.ExportFormatCSV}))
	require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "b", Format: models.ExportFormatCSV, Status: models.ExportStatusFinished}))

	svc.RecoverPendingJobs(ctx)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "a", queue.jobs[0].ID)
}

func TestReportServiceCleanupExpired(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	ctx := context.Background()
	job := &models.ExportJob{ID: "old", Format: models.ExportFormatCSV}
	require.NoError(t, repo.Create(ctx, job))
	result, err := exportSvc.Generate(ctx, job)
	require.NoError(t, err)

	finished := models.ExportStatusFinished
	path := result.RelativePath
	longAgo := time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &finished, ResultPath: &path, FinishedAt: &longAgo}))

	svc.cleanupExpired(ctx)

	_, err = repo.GetByID(ctx, job.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = exportSvc.Open(path)
	assert.Error(t, err)
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	repo := repository.NewExportJobRepository(kvstore.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "job-1", Format: models.ExportFormatCSV}))
	metrics := NewMetricsService()
	exporter := exportStub{result: &ExportResult{URL: "/api/v1/export/token", RelativePath: "reports/a.csv"}}
	worker := NewReportWorker(repo, exporter, metrics, 3, zap.NewNop())

	require.NoError(t, worker.Handle(ctx, jobs.Job{ID: "job-1", Type: JobTypeReportExport, Attempt: 1}))

	job, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "reports/a.csv", job.ResultPath)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, uint64(1), metrics.Snapshot().ExportJobsFinished)
}

func TestReportWorkerHandleFailureRetries(t *testing.T) {
	repo := repository.NewExportJobRepository(kvstore.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "job-1", Format: models.ExportFormatCSV}))
	worker := NewReportWorker(repo, exportStub{err: errors.New("boom")}, nil, 2, zap.NewNop())

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: "job-1", Type: JobTypeReportExport, Attempt: 1}))
	job, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.Equal(t, "boom", job.ErrorMessage)

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: "job-1", Type: JobTypeReportExport, Attempt: 2}))
	job, err = repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.FinishedAt)
}

func TestReportWorkerRejectsForeignJobs(t *testing.T) {
	worker := NewReportWorker(nil, nil, nil, 1, nil)
	assert.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "x", Type: "email"}))
}
