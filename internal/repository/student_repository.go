package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

const (
	studentCodePrefix      = "STU"
	defaultStudentPageSize = 10
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	students *collection[models.Student]
	now      func() time.Time
}

// NewStudentRepository constructs a StudentRepository over store.
func NewStudentRepository(store kvstore.Store) *StudentRepository {
	return &StudentRepository{
		students: newCollection(store, KeyStudents, func(s models.Student) string { return s.ID }, LegacyKeyStudents),
		now:      time.Now,
	}
}

// All returns every stored student in persisted order.
func (r *StudentRepository) All(ctx context.Context) ([]models.Student, error) {
	return r.students.all(ctx)
}

// List returns one page of students matching the provided filters together
// with the filtered total.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	students, err := r.students.all(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Student, 0, len(students))
	for _, s := range students {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Department != "" && s.Department != filter.Department {
			continue
		}
		if search != "" && !containsAny(search, s.FirstName, s.LastName, s.StudentID, s.Email) {
			continue
		}
		matched = append(matched, s)
	}

	page, meta := models.Paginate(matched, filter.Page, filter.PageSize, defaultStudentPageSize)
	return page, meta.TotalCount, nil
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, err := r.students.find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student %s: %w", id, err)
	}
	return student, nil
}

// Create assigns identifiers and timestamps and appends the student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := r.now().UTC()
	err := r.students.mutate(ctx, func(items []models.Student) ([]models.Student, error) {
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		if student.StudentID == "" {
			student.StudentID = nextStudentCode(items)
		}
		student.CreatedAt = now
		student.UpdatedAt = now
		return append(items, *student), nil
	})
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites an existing student, keeping its creation time.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	err := r.students.mutate(ctx, func(items []models.Student) ([]models.Student, error) {
		for i := range items {
			if items[i].ID != student.ID {
				continue
			}
			student.CreatedAt = items[i].CreatedAt
			student.UpdatedAt = r.now().UTC()
			items[i] = *student
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("update student %s: %w", student.ID, err)
	}
	return nil
}

// Delete removes a student. Payments referencing it are left untouched.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if err := r.students.remove(ctx, id); err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	return nil
}

// ReplaceAll overwrites the whole collection.
func (r *StudentRepository) ReplaceAll(ctx context.Context, students []models.Student) error {
	if err := r.students.replaceAll(ctx, students); err != nil {
		return fmt.Errorf("replace students: %w", err)
	}
	return nil
}

// nextStudentCode continues after the highest STU### code in use, so codes
// freed by deletes are never reissued.
func nextStudentCode(items []models.Student) string {
	highest := 0
	for _, s := range items {
		if !strings.HasPrefix(s.StudentID, studentCodePrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s.StudentID, studentCodePrefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	if len(items) > highest {
		highest = len(items)
	}
	return fmt.Sprintf("%s%03d", studentCodePrefix, highest+1)
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
