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

type courseRepository interface {
	All(ctx context.Context) ([]models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course, check func([]models.Course) error) error
	Update(ctx context.Context, course *models.Course, check func([]models.Course) error) error
	Delete(ctx context.Context, id string) error
	Facets(ctx context.Context) (*models.CourseFacets, error)
}

type studentLister interface {
	All(ctx context.Context) ([]models.Student, error)
}

// ScheduleRequest is the weekly meeting slot of a course payload.
type ScheduleRequest struct {
	Days      []string `json:"days" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string   `json:"startTime" validate:"required,hhmm"`
	EndTime   string   `json:"endTime" validate:"required,hhmm"`
	Room      string   `json:"room" validate:"required"`
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Code        string          `json:"code" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Department  string          `json:"department" validate:"required"`
	Faculty     string          `json:"faculty" validate:"required"`
	Credits     int             `json:"credits" validate:"min=1,max=6"`
	Semester    string          `json:"semester" validate:"required"`
	Capacity    int             `json:"capacity" validate:"min=1,max=100"`
	Enrolled    int             `json:"enrolled" validate:"gte=0"`
	Fee         float64         `json:"fee" validate:"gte=0"`
	Description string          `json:"description"`
	Schedule    ScheduleRequest `json:"schedule"`
}

// ConflictCheckRequest asks whether a slot is free.
type ConflictCheckRequest struct {
	Days      []string `json:"days" validate:"required,min=1"`
	StartTime string   `json:"startTime" validate:"required,hhmm"`
	EndTime   string   `json:"endTime" validate:"required,hhmm"`
	Room      string   `json:"room"`
	Faculty   string   `json:"faculty"`
	ExcludeID string   `json:"excludeId"`
}

// ConflictCheckResult reports the first clash found, if any.
type ConflictCheckResult struct {
	Conflict bool                     `json:"conflict"`
	Detail   *models.ScheduleConflict `json:"detail,omitempty"`
}

// CourseService manages course offerings and guards their meeting slots.
type CourseService struct {
	repo      courseRepository
	students  studentLister
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, students studentLister, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageError(err, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 9
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a course with its roster and occupancy figures.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, storageError(err, "failed to load course")
	}
	students, err := s.students.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load students")
	}

	roster := make([]models.Student, 0)
	for _, st := range students {
		if st.IsEnrolledIn(course.ID) {
			roster = append(roster, st)
		}
	}
	available := course.Capacity - course.Enrolled
	if available < 0 {
		available = 0
	}
	return &models.CourseDetail{
		Course:           *course,
		EnrolledStudents: roster,
		RosterCount:      len(roster),
		RosterDrift:      len(roster) != course.Enrolled,
		OccupancyRate:    roundMoney(course.OccupancyRate()),
		Status:           course.EnrollmentStatus(),
		ProjectedRevenue: roundMoney(float64(course.Enrolled) * course.Fee),
		AvailableSeats:   available,
	}, nil
}

// Facets lists distinct filter values.
func (s *CourseService) Facets(ctx context.Context) (*models.CourseFacets, error) {
	facets, err := s.repo.Facets(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load course facets")
	}
	return facets, nil
}

// CheckConflict reports whether the requested slot clashes with a stored course.
func (s *CourseService) CheckConflict(ctx context.Context, req ConflictCheckRequest) (*ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid conflict check payload")
	}
	if req.EndTime <= req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}
	courses, err := s.repo.All(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load courses")
	}
	candidate := models.ScheduleCandidate{
		Days:      req.Days,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      strings.TrimSpace(req.Room),
		Faculty:   strings.TrimSpace(req.Faculty),
	}
	conflict, ok := FindScheduleConflict(candidate, courses, req.ExcludeID)
	return &ConflictCheckResult{Conflict: ok, Detail: conflict}, nil
}

// Create stores a new course unless its slot clashes with an existing one.
// New courses start with no enrolments; the count is edited through Update.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	course, err := s.buildCourse(req)
	if err != nil {
		return nil, err
	}
	course.Enrolled = 0
	if err := s.repo.Create(ctx, course, conflictGuard(course)); err != nil {
		return nil, s.writeError(err, "failed to create course")
	}
	s.invalidate(ctx)
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update replaces a course, excluding itself from the conflict check.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest) (*models.Course, error) {
	course, err := s.buildCourse(req)
	if err != nil {
		return nil, err
	}
	course.ID = id
	if err := s.repo.Update(ctx, course, conflictGuard(course)); err != nil {
		return nil, s.writeError(err, "failed to update course")
	}
	s.invalidate(ctx)
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError(err, "failed to delete course")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) buildCourse(req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	if req.Schedule.EndTime <= req.Schedule.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid course payload: endTime must be after startTime")
	}
	return &models.Course{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Department:  req.Department,
		Faculty:     strings.TrimSpace(req.Faculty),
		Credits:     req.Credits,
		Semester:    req.Semester,
		Capacity:    req.Capacity,
		Enrolled:    req.Enrolled,
		Fee:         req.Fee,
		Description: req.Description,
		Schedule: models.MeetingPattern{
			Days:      req.Schedule.Days,
			StartTime: req.Schedule.StartTime,
			EndTime:   req.Schedule.EndTime,
			Room:      strings.TrimSpace(req.Schedule.Room),
		},
	}, nil
}

// conflictGuard runs inside the repository's write lock so two concurrent
// writers cannot both claim the same slot.
func conflictGuard(course *models.Course) func([]models.Course) error {
	return func(existing []models.Course) error {
		if conflict, ok := FindScheduleConflict(course.Candidate(), existing, course.ID); ok {
			return scheduleConflictError(conflict)
		}
		return nil
	}
}

func (s *CourseService) writeError(err error, message string) error {
	var typed *appErrors.Error
	switch {
	case errors.As(err, &typed):
		return typed
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	default:
		return storageError(err, message)
	}
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateDashboards(ctx)
	}
}
