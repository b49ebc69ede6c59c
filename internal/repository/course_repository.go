package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

const defaultCoursePageSize = 9

// CourseRepository persists course offerings.
type CourseRepository struct {
	courses *collection[models.Course]
	now     func() time.Time
}

// NewCourseRepository constructs a CourseRepository over store.
func NewCourseRepository(store kvstore.Store) *CourseRepository {
	return &CourseRepository{
		courses: newCollection(store, KeyCourses, func(c models.Course) string { return c.ID }, LegacyKeyCourses),
		now:     time.Now,
	}
}

// All returns every course.
func (r *CourseRepository) All(ctx context.Context) ([]models.Course, error) {
	return r.courses.all(ctx)
}

// List returns one page of courses matching filter and the filtered total.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	courses, err := r.courses.all(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Faculty != "" && c.Faculty != filter.Faculty {
			continue
		}
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if search != "" && !containsAny(search, c.Name, c.Code, c.Faculty) {
			continue
		}
		matched = append(matched, c)
	}

	page, meta := models.Paginate(matched, filter.Page, filter.PageSize, defaultCoursePageSize)
	return page, meta.TotalCount, nil
}

// FindByID fetches a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := r.courses.find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course %s: %w", id, err)
	}
	return course, nil
}

// Create stores a new course. When check is non-nil it runs against the
// current collection under the write lock and aborts the insert on error.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, check func([]models.Course) error) error {
	now := r.now().UTC()
	err := r.courses.mutate(ctx, func(items []models.Course) ([]models.Course, error) {
		if check != nil {
			if err := check(items); err != nil {
				return nil, err
			}
		}
		if course.ID == "" {
			course.ID = uuid.NewString()
		}
		course.CreatedAt = now
		course.UpdatedAt = now
		return append(items, *course), nil
	})
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update overwrites an existing course, running check first like Create.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, check func([]models.Course) error) error {
	err := r.courses.mutate(ctx, func(items []models.Course) ([]models.Course, error) {
		idx := -1
		for i := range items {
			if items[i].ID == course.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		if check != nil {
			if err := check(items); err != nil {
				return nil, err
			}
		}
		course.CreatedAt = items[idx].CreatedAt
		course.UpdatedAt = r.now().UTC()
		items[idx] = *course
		return items, nil
	})
	if err != nil {
		return fmt.Errorf("update course %s: %w", course.ID, err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if err := r.courses.remove(ctx, id); err != nil {
		return fmt.Errorf("delete course %s: %w", id, err)
	}
	return nil
}

// ReplaceAll overwrites the whole collection.
func (r *CourseRepository) ReplaceAll(ctx context.Context, courses []models.Course) error {
	if err := r.courses.replaceAll(ctx, courses); err != nil {
		return fmt.Errorf("replace courses: %w", err)
	}
	return nil
}

// Facets lists distinct department, faculty and semester values.
func (r *CourseRepository) Facets(ctx context.Context) (*models.CourseFacets, error) {
	courses, err := r.courses.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("course facets: %w", err)
	}
	departments := make([]string, 0, len(courses))
	faculties := make([]string, 0, len(courses))
	semesters := make([]string, 0, len(courses))
	for _, c := range courses {
		departments = append(departments, c.Department)
		faculties = append(faculties, c.Faculty)
		semesters = append(semesters, c.Semester)
	}
	return &models.CourseFacets{
		Departments: distinctSorted(departments),
		Faculties:   distinctSorted(faculties),
		Semesters:   distinctSorted(semesters),
	}, nil
}
