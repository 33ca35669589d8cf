// ============================================================================
// internal/schedule/service.go
// Classroom schedule booking with interval conflict detection
// ============================================================================

package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"acadsys/internal/apperr"
	"acadsys/internal/model"
	"acadsys/internal/store"
)

// Store is the persistence contract the schedule service operates through
type Store interface {
	ClassroomByID(ctx context.Context, id string) (*model.Classroom, error)
	AssignmentByID(ctx context.Context, id string) (*model.TeachingAssignment, error)
	SchedulesByRoomDay(ctx context.Context, classroomID string, dayOfWeek int) ([]model.CourseSchedule, error)
	InsertSchedule(ctx context.Context, schedule *model.CourseSchedule) error
	SoftDeleteSchedule(ctx context.Context, id string) error
}

// Service books teaching sessions into classrooms
type Service struct {
	store Store
}

// NewService creates a schedule service
func NewService(s Store) *Service {
	return &Service{store: s}
}

// ============================================================================
// Intervals
// ============================================================================

// Interval is a half-open [Start, End) time range in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// ParseTimeOfDay converts "HH:MM" to minutes since midnight. Unlike lenient
// display parsing, malformed input is an error so the conflict check never
// runs against garbage.
func ParseTimeOfDay(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time %q out of range", value)
	}

	return hours*60 + minutes, nil
}

// NewInterval validates a start/end pair. INVALID_TIME_RANGE covers both
// unparseable times and start >= end; such input never reaches the
// conflict test.
func NewInterval(startTime, endTime string) (Interval, error) {
	start, err := ParseTimeOfDay(startTime)
	if err != nil {
		return Interval{}, apperr.New(apperr.CodeInvalidTimeRange, "invalid start time: %v", err)
	}
	end, err := ParseTimeOfDay(endTime)
	if err != nil {
		return Interval{}, apperr.New(apperr.CodeInvalidTimeRange, "invalid end time: %v", err)
	}
	if start >= end {
		return Interval{}, apperr.New(apperr.CodeInvalidTimeRange, "start time must be before end time")
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// sessions (one ends exactly when the next starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && iv.End > other.Start
}

// HasConflict scans existing intervals for any overlap with the candidate
func HasConflict(candidate Interval, existing []Interval) bool {
	for _, other := range existing {
		if candidate.Overlaps(other) {
			return true
		}
	}
	return false
}

// ============================================================================
// Operations
// ============================================================================

// CreateScheduleRequest is the validated input for booking a timetable slot
type CreateScheduleRequest struct {
	AssignmentID string `json:"assignment_id"`
	ClassroomID  string `json:"classroom_id"`
	DayOfWeek    int    `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// CreateSchedule books one timetable slot. On conflict the create is
// rejected wholesale and existing bookings are untouched.
func (s *Service) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*model.CourseSchedule, error) {
	if req.AssignmentID == "" || req.ClassroomID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "assignment_id and classroom_id are required")
	}
	if !model.IsValidDayOfWeek(req.DayOfWeek) {
		return nil, apperr.New(apperr.CodeInvalidArgument, "day_of_week must be between 1 and 7")
	}

	candidate, err := NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AssignmentByID(ctx, req.AssignmentID); err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "teaching assignment not found")
		}
		return nil, apperr.Internal(err)
	}
	if _, err := s.store.ClassroomByID(ctx, req.ClassroomID); err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "classroom not found")
		}
		return nil, apperr.Internal(err)
	}

	existing, err := s.store.SchedulesByRoomDay(ctx, req.ClassroomID, req.DayOfWeek)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	intervals := make([]Interval, 0, len(existing))
	for _, entry := range existing {
		iv, err := NewInterval(entry.StartTime, entry.EndTime)
		if err != nil {
			// A stored entry that fails interval parsing would mask real
			// conflicts; refuse the booking instead of guessing.
			return nil, apperr.Internal(fmt.Errorf("stored schedule %s has invalid interval: %w", entry.ID, err))
		}
		intervals = append(intervals, iv)
	}

	if HasConflict(candidate, intervals) {
		return nil, apperr.New(apperr.CodeScheduleConflict,
			"classroom %s is already booked in that time range on day %d", req.ClassroomID, req.DayOfWeek)
	}

	schedule := &model.CourseSchedule{
		ID:           model.GenerateScheduleID(),
		AssignmentID: req.AssignmentID,
		ClassroomID:  req.ClassroomID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}
	if err := s.store.InsertSchedule(ctx, schedule); err != nil {
		if store.IsDuplicateKey(err) {
			// Two concurrent creates can both pass the scan; the unique
			// (classroom, day, start) index catches the loser.
			return nil, apperr.New(apperr.CodeScheduleConflict,
				"classroom %s is already booked in that time range on day %d", req.ClassroomID, req.DayOfWeek)
		}
		return nil, apperr.Internal(err)
	}

	return schedule, nil
}

// ListRoomDay returns the live bookings for a (classroom, day) pair
func (s *Service) ListRoomDay(ctx context.Context, classroomID string, dayOfWeek int) ([]model.CourseSchedule, error) {
	if !model.IsValidDayOfWeek(dayOfWeek) {
		return nil, apperr.New(apperr.CodeInvalidArgument, "day_of_week must be between 1 and 7")
	}
	schedules, err := s.store.SchedulesByRoomDay(ctx, classroomID, dayOfWeek)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return schedules, nil
}

// DeleteSchedule removes one booking. Timetable edits are modeled as
// delete + recreate.
func (s *Service) DeleteSchedule(ctx context.Context, id string) error {
	if id == "" {
		return apperr.New(apperr.CodeInvalidArgument, "schedule id is required")
	}
	if err := s.store.SoftDeleteSchedule(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
