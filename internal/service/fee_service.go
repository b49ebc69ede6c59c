package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/export"
)

type feeRepository interface {
	List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, error)
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	Create(ctx context.Context, fee *models.Fee) error
	Update(ctx context.Context, fee *models.Fee) error
	Delete(ctx context.Context, id string) error
}

// FeeRequest is the payload for creating or updating a fee.
type FeeRequest struct {
	Name            string  `json:"name" validate:"required"`
	Type            string  `json:"type" validate:"required"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	Department      string  `json:"department" validate:"required"`
	Description     string  `json:"description"`
	DueDate         string  `json:"dueDate" validate:"omitempty,ymd"`
	IsRecurring     bool    `json:"isRecurring"`
	RecurringPeriod string  `json:"recurringPeriod" validate:"omitempty,oneof=monthly quarterly semester annual"`
}

// FileExport is a rendered download.
type FileExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// FeeService manages fee definitions.
type FeeService struct {
	repo      feeRepository
	cache     dashboardInvalidator
	exporter  *export.JSONExporter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeeService constructs the fee service.
func NewFeeService(repo feeRepository, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{
		repo:      repo,
		cache:     cache,
		exporter:  export.NewJSONExporter(),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns fees matching filter in the requested order.
func (s *FeeService) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, error) {
	fees, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storageError(err, "failed to list fees")
	}
	return fees, nil
}

// Get returns a single fee.
func (s *FeeService) Get(ctx context.Context, id string) (*models.Fee, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, storageError(err, "failed to load fee")
	}
	return fee, nil
}

// Create stores a new fee.
func (s *FeeService) Create(ctx context.Context, req FeeRequest) (*models.Fee, error) {
	fee, err := s.buildFee(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, storageError(err, "failed to create fee")
	}
	s.invalidate(ctx)
	return fee, nil
}

// Update replaces a fee's fields, keeping its creation time.
func (s *FeeService) Update(ctx context.Context, id string, req FeeRequest) (*models.Fee, error) {
	fee, err := s.buildFee(req)
	if err != nil {
		return nil, err
	}
	fee.ID = id
	if err := s.repo.Update(ctx, fee); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, storageError(err, "failed to update fee")
	}
	s.invalidate(ctx)
	return fee, nil
}

// Duplicate copies a fee under a new id with " (Copy)" appended to its name.
func (s *FeeService) Duplicate(ctx context.Context, id string) (*models.Fee, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := *source
	clone.ID = ""
	clone.Name = source.Name + " (Copy)"
	if err := s.repo.Create(ctx, &clone); err != nil {
		return nil, storageError(err, "failed to duplicate fee")
	}
	s.invalidate(ctx)
	return &clone, nil
}

// Delete removes a fee.
func (s *FeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return storageError(err, "failed to delete fee")
	}
	s.invalidate(ctx)
	return nil
}

// Export renders the filtered fee list as a JSON download.
func (s *FeeService) Export(ctx context.Context, filter models.FeeFilter) (*FileExport, error) {
	fees, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	body, err := s.exporter.Render(fees)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render fee export")
	}
	return &FileExport{
		Filename:    fmt.Sprintf("fees_export_%s.json", s.now().UTC().Format(dateLayout)),
		ContentType: s.exporter.ContentType(),
		Body:        body,
	}, nil
}

func (s *FeeService) buildFee(req FeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid fee payload")
	}
	if !containsString(models.FeeTypes, req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid fee payload: type must be one of [%s]", strings.Join(models.FeeTypes, ", ")))
	}
	if req.IsRecurring && req.RecurringPeriod == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid fee payload: recurringPeriod is required for recurring fees")
	}
	period := req.RecurringPeriod
	if !req.IsRecurring {
		period = ""
	}
	return &models.Fee{
		Name:            strings.TrimSpace(req.Name),
		Type:            req.Type,
		Amount:          roundMoney(req.Amount),
		Department:      req.Department,
		Description:     req.Description,
		DueDate:         req.DueDate,
		IsRecurring:     req.IsRecurring,
		RecurringPeriod: period,
	}, nil
}

func (s *FeeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateDashboards(ctx)
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
