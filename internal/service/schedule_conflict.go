package service

import (
	"fmt"

	"github.com/noah-isme/eduflow-api/internal/models"
	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

// HasScheduleConflict reports whether candidate clashes with any course in
// courses other than excludeID.
func HasScheduleConflict(candidate models.ScheduleCandidate, courses []models.Course, excludeID string) bool {
	_, ok := FindScheduleConflict(candidate, courses, excludeID)
	return ok
}

// FindScheduleConflict returns the first course that shares a day, overlaps
// in time and uses the same room or faculty as the candidate. Blank values
// compare equal like any other. Times are zero-padded HH:MM strings, so
// lexical order is chronological.
func FindScheduleConflict(candidate models.ScheduleCandidate, courses []models.Course, excludeID string) (*models.ScheduleConflict, bool) {
	for i := range courses {
		existing := courses[i]
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if !timesOverlap(candidate.StartTime, candidate.EndTime, existing.Schedule) || !daysIntersect(candidate.Days, existing.Schedule.Days) {
			continue
		}

		dimension := ""
		switch {
		case candidate.Room == existing.Schedule.Room:
			dimension = models.ConflictDimensionRoom
		case candidate.Faculty == existing.Faculty:
			dimension = models.ConflictDimensionFaculty
		default:
			continue
		}

		return &models.ScheduleConflict{
			CourseID:   existing.ID,
			CourseCode: existing.Code,
			Faculty:    existing.Faculty,
			Room:       existing.Schedule.Room,
			Days:       existing.Schedule.Days,
			StartTime:  existing.Schedule.StartTime,
			EndTime:    existing.Schedule.EndTime,
			Dimension:  dimension,
		}, true
	}
	return nil, false
}

// scheduleConflictError builds the typed 409 returned to clients.
func scheduleConflictError(conflict *models.ScheduleConflict) error {
	var message string
	if conflict.Dimension == models.ConflictDimensionRoom {
		message = fmt.Sprintf("room %s is already booked by %s", conflict.Room, conflict.CourseCode)
	} else {
		message = fmt.Sprintf("%s already teaches %s at this time", conflict.Faculty, conflict.CourseCode)
	}
	detail := &models.ScheduleConflictError{Message: message, Conflict: *conflict}
	return appErrors.Wrap(detail, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, message)
}

func timesOverlap(start, end string, existing models.MeetingPattern) bool {
	return start < existing.EndTime && end > existing.StartTime
}

func daysIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, d := range a {
		set[d] = struct{}{}
	}
	for _, d := range b {
		if _, ok := set[d]; ok {
			return true
		}
	}
	return false
}
