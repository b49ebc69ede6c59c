package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

func seedCourses(t *testing.T, repo *CourseRepository) {
	t.Helper()
	require.NoError(t, repo.ReplaceAll(context.Background(), []models.Course{
		{ID: "1", Code: "CS101", Name: "Introduction to Computer Science", Department: "Computer Science", Faculty: "Dr. Smith", Semester: "Fall 2024"},
		{ID: "2", Code: "MATH201", Name: "Calculus II", Department: "Mathematics", Faculty: "Prof. Johnson", Semester: "Fall 2024"},
		{ID: "3", Code: "ENG101", Name: "English Composition", Department: "English", Faculty: "Dr. Brown", Semester: "Spring 2025"},
	}))
}

func TestCourseRepositoryListFilters(t *testing.T) {
	repo := NewCourseRepository(kvstore.NewMemoryStore())
	seedCourses(t, repo)
	ctx := context.Background()

	courses, total, err := repo.List(ctx, models.CourseFilter{Search: "smith"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "CS101", courses[0].Code)

	_, total, err = repo.List(ctx, models.CourseFilter{Semester: "Fall 2024"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCourseRepositoryCheckAbortsWrite(t *testing.T) {
	repo := NewCourseRepository(kvstore.NewMemoryStore())
	seedCourses(t, repo)
	ctx := context.Background()
	clash := errors.New("clash")

	err := repo.Create(ctx, &models.Course{Code: "CS102"}, func(existing []models.Course) error {
		assert.Len(t, existing, 3)
		return clash
	})
	assert.ErrorIs(t, err, clash)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	err = repo.Update(ctx, &models.Course{ID: "1", Code: "CS101X"}, func([]models.Course) error { return clash })
	assert.ErrorIs(t, err, clash)
	got, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "CS101", got.Code)
}

func TestCourseRepositoryUpdateMissing(t *testing.T) {
	repo := NewCourseRepository(kvstore.NewMemoryStore())
	err := repo.Update(context.Background(), &models.Course{ID: "x"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseRepositoryFacets(t *testing.T) {
	repo := NewCourseRepository(kvstore.NewMemoryStore())
	seedCourses(t, repo)

	facets, err := repo.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science", "English", "Mathematics"}, facets.Departments)
	assert.Equal(t, []string{"Fall 2024", "Spring 2025"}, facets.Semesters)
	assert.Len(t, facets.Faculties, 3)
}
