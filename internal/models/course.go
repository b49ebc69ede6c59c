package models

import "time"

// MeetingPattern is the weekly slot a course occupies.
type MeetingPattern struct {
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Room      string   `json:"room"`
}

// Course is a scheduled offering. Enrolled is maintained by hand and is not
// reconciled with Student.EnrolledCourses.
type Course struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Department  string         `json:"department"`
	Faculty     string         `json:"faculty"`
	Credits     int            `json:"credits"`
	Semester    string         `json:"semester"`
	Capacity    int            `json:"capacity"`
	Enrolled    int            `json:"enrolled"`
	Fee         float64        `json:"fee"`
	Description string         `json:"description,omitempty"`
	Schedule    MeetingPattern `json:"schedule"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// EnrollmentStatus buckets occupancy.
type EnrollmentStatus string

const (
	EnrollmentFull       EnrollmentStatus = "Full"
	EnrollmentAlmostFull EnrollmentStatus = "Almost Full"
	EnrollmentAvailable  EnrollmentStatus = "Available"
)

// OccupancyRate returns enrolled/capacity as a percentage.
func (c Course) OccupancyRate() float64 {
	if c.Capacity <= 0 {
		return 0
	}
	return float64(c.Enrolled) / float64(c.Capacity) * 100
}

// EnrollmentStatus derives the occupancy band.
func (c Course) EnrollmentStatus() EnrollmentStatus {
	rate := c.OccupancyRate()
	switch {
	case rate >= 90:
		return EnrollmentFull
	case rate >= 75:
		return EnrollmentAlmostFull
	default:
		return EnrollmentAvailable
	}
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Search     string
	Department string
	Faculty    string
	Semester   string
	Page       int
	PageSize   int
}

// CourseDetail enriches a course with roster and revenue figures.
type CourseDetail struct {
	Course
	EnrolledStudents []Student        `json:"enrolledStudents"`
	RosterCount      int              `json:"rosterCount"`
	RosterDrift      bool             `json:"rosterDrift"`
	OccupancyRate    float64          `json:"occupancyRate"`
	Status           EnrollmentStatus `json:"enrollmentStatus"`
	ProjectedRevenue float64          `json:"projectedRevenue"`
	AvailableSeats   int              `json:"availableSeats"`
}

// CourseFacets lists distinct filter values across all courses.
type CourseFacets struct {
	Departments []string `json:"departments"`
	Faculties   []string `json:"faculties"`
	Semesters   []string `json:"semesters"`
}
