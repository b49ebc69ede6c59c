package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

type studentRepository interface {
	All(ctx context.Context) ([]models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type dashboardInvalidator interface {
	InvalidateDashboards(ctx context.Context)
}

// StudentRequest is the payload for creating or updating a student.
type StudentRequest struct {
	FirstName        string                 `json:"firstName" validate:"required"`
	LastName         string                 `json:"lastName" validate:"required"`
	Email            string                 `json:"email" validate:"required,email"`
	Phone            string                 `json:"phone" validate:"required"`
	DateOfBirth      string                 `json:"dateOfBirth" validate:"required,ymd"`
	Address          string                 `json:"address"`
	Department       string                 `json:"department" validate:"required"`
	Year             string                 `json:"year" validate:"required,oneof=Freshman Sophomore Junior Senior"`
	GPA              float64                `json:"gpa" validate:"gte=0,lte=4"`
	EnrollmentDate   string                 `json:"enrollmentDate" validate:"required,ymd"`
	Status           models.StudentStatus   `json:"status" validate:"omitempty,oneof=Active Inactive Graduated Suspended"`
	FinancialStatus  models.FinancialStatus `json:"financialStatus" validate:"omitempty,oneof=Paid Pending Overdue"`
	GuardianName     string                 `json:"guardianName"`
	GuardianPhone    string                 `json:"guardianPhone"`
	EmergencyContact string                 `json:"emergencyContact"`
	EnrolledCourses  []string               `json:"enrolledCourses"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageError(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storageError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. New students default to Active and Pending.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student := req.toModel()
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	if student.FinancialStatus == "" {
		student.FinancialStatus = models.FinancialStatusPending
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, storageError(err, "failed to create student")
	}
	s.invalidate(ctx)
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("code", student.StudentID))
	return student, nil
}

// Update replaces the editable fields of a student. The STU code is kept.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student := req.toModel()
	student.ID = existing.ID
	student.StudentID = existing.StudentID
	if student.Status == "" {
		student.Status = existing.Status
	}
	if student.FinancialStatus == "" {
		student.FinancialStatus = existing.FinancialStatus
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storageError(err, "failed to update student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Delete removes a student. Their payments stay in the ledger.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return storageError(err, "failed to delete student")
	}
	s.invalidate(ctx)
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateDashboards(ctx)
	}
}

func (r StudentRequest) toModel() *models.Student {
	return &models.Student{
		FirstName:        strings.TrimSpace(r.FirstName),
		LastName:         strings.TrimSpace(r.LastName),
		Email:            strings.TrimSpace(r.Email),
		Phone:            r.Phone,
		DateOfBirth:      r.DateOfBirth,
		Address:          r.Address,
		Department:       r.Department,
		Year:             r.Year,
		GPA:              r.GPA,
		EnrollmentDate:   r.EnrollmentDate,
		Status:           r.Status,
		FinancialStatus:  r.FinancialStatus,
		GuardianName:     r.GuardianName,
		GuardianPhone:    r.GuardianPhone,
		EmergencyContact: r.EmergencyContact,
		EnrolledCourses:  r.EnrolledCourses,
	}
}
