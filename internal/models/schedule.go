package models

// Conflict dimensions.
const (
	ConflictDimensionRoom    = "ROOM"
	ConflictDimensionFaculty = "FACULTY"
)

// ScheduleConflict describes an existing course that collides with a candidate.
type ScheduleConflict struct {
	CourseID   string   `json:"course_id"`
	CourseCode string   `json:"course_code"`
	Faculty    string   `json:"faculty"`
	Room       string   `json:"room"`
	Days       []string `json:"days"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	Dimension  string   `json:"dimension"`
}

// ScheduleConflictError is returned when a course collides with an existing one.
type ScheduleConflictError struct {
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ScheduleCandidate is a proposed meeting slot together with its instructor.
type ScheduleCandidate struct {
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Room      string   `json:"room"`
	Faculty   string   `json:"faculty"`
}

// Candidate returns the course's slot as a ScheduleCandidate.
func (c Course) Candidate() ScheduleCandidate {
	return ScheduleCandidate{
		Days:      c.Schedule.Days,
		StartTime: c.Schedule.StartTime,
		EndTime:   c.Schedule.EndTime,
		Room:      c.Schedule.Room,
		Faculty:   c.Faculty,
	}
}
