// ============================================================================
// internal/model/models.go
// Shared data models and structs for MongoDB documents
// ============================================================================

package model

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ============================================================================
// User Models
// ============================================================================

// User represents an account (student, teacher, or admin)
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Never expose in JSON
	Role         string    `bson:"role" json:"role"`       // student, teacher, admin
	IsDeleted    bool      `bson:"is_deleted" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// StudentProfile holds the registrar-facing record behind a student account
type StudentProfile struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	StudentIDNumber string    `bson:"student_id_number" json:"student_id_number"`
	FullName        string    `bson:"full_name" json:"full_name"`
	ClassID         string    `bson:"class_id,omitempty" json:"class_id,omitempty"`
	Email           string    `bson:"email,omitempty" json:"email,omitempty"`
	IsDeleted       bool      `bson:"is_deleted" json:"-"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// TeacherProfile holds the record behind a teacher account
type TeacherProfile struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	TeacherIDNumber string    `bson:"teacher_id_number" json:"teacher_id_number"`
	FullName        string    `bson:"full_name" json:"full_name"`
	Title           string    `bson:"title,omitempty" json:"title,omitempty"`
	IsDeleted       bool      `bson:"is_deleted" json:"-"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// Class is an administrative grouping of students (e.g. "CS-2024-1")
type Class struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	IsDeleted bool      `bson:"is_deleted" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ============================================================================
// Course & Enrollment Models
// ============================================================================

// Course represents a catalog entry
type Course struct {
	ID         string    `bson:"_id" json:"id"`
	Code       string    `bson:"code" json:"code"`
	Name       string    `bson:"name" json:"name"`
	Credits    float64   `bson:"credits" json:"credits"`
	Department string    `bson:"department,omitempty" json:"department,omitempty"`
	IsDeleted  bool      `bson:"is_deleted" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// TeachingAssignment links a teacher to a course for a semester
type TeachingAssignment struct {
	ID        string    `bson:"_id" json:"id"`
	TeacherID string    `bson:"teacher_id" json:"teacher_id"`
	CourseID  string    `bson:"course_id" json:"course_id"`
	Semester  string    `bson:"semester" json:"semester"`
	IsDeleted bool      `bson:"is_deleted" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Enrollment links one student to one course for one semester.
// The final score is always derived from grades, never stored here.
type Enrollment struct {
	ID         string    `bson:"_id" json:"id"`
	StudentID  string    `bson:"student_id" json:"student_id"`
	CourseID   string    `bson:"course_id" json:"course_id"`
	Semester   string    `bson:"semester" json:"semester"`
	Status     string    `bson:"status" json:"status"` // enrolled, dropped, completed
	IsDeleted  bool      `bson:"is_deleted" json:"-"`
	EnrolledAt time.Time `bson:"enrolled_at" json:"enrolled_at"`
}

// ============================================================================
// Grading Models
// ============================================================================

// GradeItem is one weighted component of a course's grading scheme.
// The sum of weights of all non-deleted items for a course must never
// exceed 1 (tolerance 1e-6).
type GradeItem struct {
	ID        string    `bson:"_id" json:"id"`
	CourseID  string    `bson:"course_id" json:"course_id"`
	Name      string    `bson:"name" json:"name"`
	Weight    float64   `bson:"weight" json:"weight"` // fraction in [0, 1]
	CreatedBy string    `bson:"created_by" json:"created_by"`
	IsDeleted bool      `bson:"is_deleted" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Grade links one enrollment to one grade item. CourseID is denormalized
// from the enrollment so publish can update a whole course in one pass.
type Grade struct {
	ID           string     `bson:"_id" json:"id"`
	EnrollmentID string     `bson:"enrollment_id" json:"enrollment_id"`
	GradeItemID  string     `bson:"grade_item_id" json:"grade_item_id"`
	CourseID     string     `bson:"course_id" json:"course_id"`
	Score        *float64   `bson:"score,omitempty" json:"score,omitempty"` // [0, 100]
	Status       string     `bson:"status" json:"status"`                   // pending, graded, published
	GradedBy     string     `bson:"graded_by,omitempty" json:"graded_by,omitempty"`
	GradedAt     *time.Time `bson:"graded_at,omitempty" json:"graded_at,omitempty"`
	PublishedBy  string     `bson:"published_by,omitempty" json:"published_by,omitempty"`
	PublishedAt  *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	IsDeleted    bool       `bson:"is_deleted" json:"-"`
}

// ============================================================================
// Schedule Models
// ============================================================================

// CourseSchedule books a teaching assignment into a classroom for a
// half-open time interval [start, end) on one day of the week.
type CourseSchedule struct {
	ID           string    `bson:"_id" json:"id"`
	AssignmentID string    `bson:"assignment_id" json:"assignment_id"`
	ClassroomID  string    `bson:"classroom_id" json:"classroom_id"`
	DayOfWeek    int       `bson:"day_of_week" json:"day_of_week"` // 1 = Monday ... 7 = Sunday
	StartTime    string    `bson:"start_time" json:"start_time"`   // "HH:MM"
	EndTime      string    `bson:"end_time" json:"end_time"`       // "HH:MM"
	IsDeleted    bool      `bson:"is_deleted" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Classroom is a physical room that schedules are booked into
type Classroom struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Building  string    `bson:"building,omitempty" json:"building,omitempty"`
	Capacity  int32     `bson:"capacity,omitempty" json:"capacity,omitempty"`
	IsDeleted bool      `bson:"is_deleted" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ============================================================================
// Validation Constants
// ============================================================================

const (
	// User roles
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"

	// Grade statuses
	GradeStatusPending   = "pending"
	GradeStatusGraded    = "graded"
	GradeStatusPublished = "published"

	// Enrollment statuses
	StatusEnrolled  = "enrolled"
	StatusDropped   = "dropped"
	StatusCompleted = "completed"

	// WeightSumTolerance absorbs float error when checking that a course's
	// grade item weights sum to at most 1.
	WeightSumTolerance = 1e-6

	// InitialBulkPassword is the fixed credential given to accounts created
	// through the student bulk import.
	InitialBulkPassword = "123456"
)

// IsValidRole checks if a user role is valid
func IsValidRole(role string) bool {
	validRoles := map[string]bool{
		RoleStudent: true, RoleTeacher: true, RoleAdmin: true,
	}
	return validRoles[role]
}

// IsValidGradeStatus checks if a grade status is valid
func IsValidGradeStatus(status string) bool {
	validStatuses := map[string]bool{
		GradeStatusPending: true, GradeStatusGraded: true, GradeStatusPublished: true,
	}
	return validStatuses[status]
}

// IsValidDayOfWeek checks if a schedule day is in the 1..7 range
func IsValidDayOfWeek(day int) bool {
	return day >= 1 && day <= 7
}

// ============================================================================
// ID Generation Helpers
// ============================================================================

var idSeq atomic.Int64

// GenerateID generates a unique ID with prefix, timestamp and sequence.
// The sequence disambiguates IDs minted within the same nanosecond tick.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), idSeq.Add(1))
}

// GenerateEnrollmentID generates an enrollment ID
func GenerateEnrollmentID() string { return GenerateID("ENR") }

// GenerateGradeID generates a grade ID
func GenerateGradeID() string { return GenerateID("GRD") }

// GenerateGradeItemID generates a grade item ID
func GenerateGradeItemID() string { return GenerateID("GITEM") }

// GenerateScheduleID generates a course schedule ID
func GenerateScheduleID() string { return GenerateID("SCHED") }

// GenerateUserID generates a user account ID
func GenerateUserID() string { return GenerateID("USR") }

// GenerateClassID generates a class ID
func GenerateClassID() string { return GenerateID("CLS") }

// GenerateProfileID generates a student/teacher profile ID
func GenerateProfileID() string { return GenerateID("PRF") }
