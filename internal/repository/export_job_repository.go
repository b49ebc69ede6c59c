package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

// ExportJobRepository persists report export job state.
type ExportJobRepository struct {
	jobs *collection[models.ExportJob]
}

// NewExportJobRepository constructs an ExportJobRepository over store.
func NewExportJobRepository(store kvstore.Store) *ExportJobRepository {
	return &ExportJobRepository{
		jobs: newCollection(store, KeyExportJobs, func(j models.ExportJob) string { return j.ID }),
	}
}

// Create stores a new job with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if err := r.jobs.insert(ctx, *job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID fetches a job by id.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := r.jobs.find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get export job %s: %w", id, err)
	}
	return job, nil
}

// UpdateExportJobParams defines the mutable fields of a job. Nil fields are
// left unchanged.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	ResultURL    *string
	ResultPath   *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update applies params to the job with id. Moving a job to PROCESSING
// counts one attempt.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	err := r.jobs.mutate(ctx, func(items []models.ExportJob) ([]models.ExportJob, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			job := &items[i]
			if params.Status != nil {
				job.Status = *params.Status
				if job.Status == models.ExportStatusProcessing {
					job.Attempts++
				}
			}
			if params.Progress != nil {
				job.Progress = *params.Progress
			}
			if params.ResultURL != nil {
				job.ResultURL = *params.ResultURL
			}
			if params.ResultPath != nil {
				job.ResultPath = *params.ResultPath
			}
			if params.ErrorMessage != nil {
				job.ErrorMessage = *params.ErrorMessage
			}
			if params.FinishedAt != nil {
				job.FinishedAt = params.FinishedAt
			}
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("update export job %s: %w", id, err)
	}
	return nil
}

// ListQueued returns up to limit jobs still waiting for a worker, oldest first.
func (r *ExportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	jobs, err := r.jobs.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	out := make([]models.ExportJob, 0)
	for _, j := range jobs {
		if j.Status == models.ExportStatusQueued {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListFinishedBefore returns finished jobs whose completion predates cutoff.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	jobs, err := r.jobs.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	out := make([]models.ExportJob, 0)
	for _, j := range jobs {
		if j.Status == models.ExportStatusFinished && j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			out = append(out, j)
		}
	}
	return out, nil
}

// DeleteFinishedBefore drops finished jobs older than cutoff and returns the
// number removed.
func (r *ExportJobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := r.jobs.mutate(ctx, func(items []models.ExportJob) ([]models.ExportJob, error) {
		kept := items[:0]
		for _, j := range items {
			if j.Status == models.ExportStatusFinished && j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, j)
		}
		return kept, nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune export jobs: %w", err)
	}
	return removed, nil
}
