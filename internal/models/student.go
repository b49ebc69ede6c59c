package models

import (
	"strings"
	"time"
)

// StudentStatus enumerates enrolment states.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusInactive  StudentStatus = "Inactive"
	StudentStatusGraduated StudentStatus = "Graduated"
	StudentStatusSuspended StudentStatus = "Suspended"
)

// FinancialStatus summarises a student's billing state.
type FinancialStatus string

const (
	FinancialStatusPaid    FinancialStatus = "Paid"
	FinancialStatusPending FinancialStatus = "Pending"
	FinancialStatusOverdue FinancialStatus = "Overdue"
)

// Student represents a learner registered in the institution. Field names
// follow the persisted JSON documents.
type Student struct {
	ID               string          `json:"id"`
	StudentID        string          `json:"studentId"`
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	DateOfBirth      string          `json:"dateOfBirth"`
	Address          string          `json:"address,omitempty"`
	Department       string          `json:"department"`
	Year             string          `json:"year"`
	GPA              float64         `json:"gpa"`
	EnrollmentDate   string          `json:"enrollmentDate"`
	Status           StudentStatus   `json:"status"`
	FinancialStatus  FinancialStatus `json:"financialStatus,omitempty"`
	GuardianName     string          `json:"guardianName,omitempty"`
	GuardianPhone    string          `json:"guardianPhone,omitempty"`
	EmergencyContact string          `json:"emergencyContact,omitempty"`
	EnrolledCourses  []string        `json:"enrolledCourses,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Name returns the display name.
func (s Student) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// IsEnrolledIn reports whether courseID appears in the student's course list.
func (s Student) IsEnrolledIn(courseID string) bool {
	for _, id := range s.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Status     StudentStatus
	Department string
	Page       int
	PageSize   int
}
