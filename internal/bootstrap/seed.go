package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Students int
	Courses  int
}

// Seed writes the sample students and courses. Collections that already hold
// data are left alone unless force is set.
func Seed(ctx context.Context, store kvstore.Store, force bool, logger *zap.Logger) (SeedResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now().UTC()
	var result SeedResult

	students := repository.NewStudentRepository(store)
	existingStudents, err := students.All(ctx)
	if err != nil {
		return result, fmt.Errorf("load students: %w", err)
	}
	if len(existingStudents) == 0 || force {
		sample := sampleStudents(now)
		if err := students.ReplaceAll(ctx, sample); err != nil {
			return result, err
		}
		result.Students = len(sample)
	} else {
		logger.Info("students already seeded", zap.Int("count", len(existingStudents)))
	}

	courses := repository.NewCourseRepository(store)
	existingCourses, err := courses.All(ctx)
	if err != nil {
		return result, fmt.Errorf("load courses: %w", err)
	}
	if len(existingCourses) == 0 || force {
		sample := sampleCourses(now)
		if err := courses.ReplaceAll(ctx, sample); err != nil {
			return result, err
		}
		result.Courses = len(sample)
	} else {
		logger.Info("courses already seeded", zap.Int("count", len(existingCourses)))
	}

	return result, nil
}

func sampleStudents(now time.Time) []models.Student {
	students := []models.Student{
		{
			StudentID:        "STU001",
			FirstName:        "John",
			LastName:         "Doe",
			Email:            "john.doe@university.edu",
			Phone:            "+1-555-0123",
			DateOfBirth:      "1999-03-15",
			Address:          "123 University Ave, College Town, CT 06520",
			Department:       "Computer Science",
			Year:             "Sophomore",
			GPA:              3.7,
			EnrollmentDate:   "2022-09-01",
			Status:           models.StudentStatusActive,
			FinancialStatus:  models.FinancialStatusPaid,
			GuardianName:     "Jane Doe",
			GuardianPhone:    "+1-555-0124",
			EmergencyContact: "Mike Doe - +1-555-0125",
		},
		{
			StudentID:        "STU002",
			FirstName:        "Emily",
			LastName:         "Johnson",
			Email:            "emily.johnson@university.edu",
			Phone:            "+1-555-0126",
			DateOfBirth:      "2000-07-22",
			Address:          "456 Campus Rd, College Town, CT 06520",
			Department:       "Business Administration",
			Year:             "Junior",
			GPA:              3.9,
			EnrollmentDate:   "2021-09-01",
			Status:           models.StudentStatusActive,
			FinancialStatus:  models.FinancialStatusPending,
			GuardianName:     "Robert Johnson",
			GuardianPhone:    "+1-555-0127",
			EmergencyContact: "Sarah Johnson - +1-555-0128",
		},
		{
			StudentID:        "STU003",
			FirstName:        "Michael",
			LastName:         "Brown",
			Email:            "michael.brown@university.edu",
			Phone:            "+1-555-0129",
			DateOfBirth:      "1998-11-08",
			Address:          "789 Student St, College Town, CT 06520",
			Department:       "Engineering",
			Year:             "Senior",
			GPA:              3.5,
			EnrollmentDate:   "2020-09-01",
			Status:           models.StudentStatusActive,
			FinancialStatus:  models.FinancialStatusOverdue,
			GuardianName:     "Linda Brown",
			GuardianPhone:    "+1-555-0130",
			EmergencyContact: "David Brown - +1-555-0131",
		},
	}
	for i := range students {
		students[i].ID = uuid.NewString()
		students[i].CreatedAt = now
		students[i].UpdatedAt = now
	}
	return students
}

func sampleCourses(now time.Time) []models.Course {
	courses := []models.Course{
		{
			Code:       "CS101",
			Name:       "Introduction to Computer Science",
			Department: "Computer Science",
			Faculty:    "Dr. Smith",
			Credits:    3,
			Semester:   "Fall 2024",
			Schedule: models.MeetingPattern{
				Days:      []string{"Monday", "Wednesday", "Friday"},
				StartTime: "09:00",
				EndTime:   "10:30",
				Room:      "CS-101",
			},
			Capacity:    30,
			Enrolled:    28,
			Fee:         1200,
			Description: "Fundamental concepts of computer science including programming basics, algorithms, and problem-solving techniques.",
		},
		{
			Code:       "MATH201",
			Name:       "Calculus II",
			Department: "Mathematics",
			Faculty:    "Dr. Johnson",
			Credits:    4,
			Semester:   "Fall 2024",
			Schedule: models.MeetingPattern{
				Days:      []string{"Tuesday", "Thursday"},
				StartTime: "14:00",
				EndTime:   "16:00",
				Room:      "MATH-205",
			},
			Capacity:    25,
			Enrolled:    22,
			Fee:         1500,
			Description: "Advanced calculus covering integration techniques, series, and multivariable calculus.",
		},
		{
			Code:       "ENG101",
			Name:       "English Composition",
			Department: "English",
			Faculty:    "Prof. Williams",
			Credits:    3,
			Semester:   "Fall 2024",
			Schedule: models.MeetingPattern{
				Days:      []string{"Monday", "Wednesday"},
				StartTime: "11:00",
				EndTime:   "12:30",
				Room:      "ENG-102",
			},
			Capacity:    20,
			Enrolled:    18,
			Fee:         1000,
			Description: "Fundamentals of academic writing, critical thinking, and communication skills.",
		},
	}
	for i := range courses {
		courses[i].ID = uuid.NewString()
		courses[i].CreatedAt = now
		courses[i].UpdatedAt = now
	}
	return courses
}
