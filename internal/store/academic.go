// ============================================================================
// internal/store/academic.go
// Course, teaching assignment, and enrollment repositories
// ============================================================================

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"acadsys/internal/model"
)

// CourseByID fetches a live course by ID
func (m *Mongo) CourseByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := findOne(ctx, m.coursesCol, bson.M{"_id": id}, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// InsertCourse creates a course
func (m *Mongo) InsertCourse(ctx context.Context, course *model.Course) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now()
	}
	_, err := m.coursesCol.InsertOne(insertCtx, course)
	return err
}

// AssignmentByID fetches a live teaching assignment by ID
func (m *Mongo) AssignmentByID(ctx context.Context, id string) (*model.TeachingAssignment, error) {
	var assignment model.TeachingAssignment
	if err := findOne(ctx, m.assignmentsCol, bson.M{"_id": id}, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// AssignmentExists reports whether a teacher holds a live assignment for a course
func (m *Mongo) AssignmentExists(ctx context.Context, teacherID, courseID string) (bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count, err := m.assignmentsCol.CountDocuments(queryCtx, notDeleted(bson.M{
		"teacher_id": teacherID,
		"course_id":  courseID,
	}))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertAssignment creates a teaching assignment
func (m *Mongo) InsertAssignment(ctx context.Context, assignment *model.TeachingAssignment) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now()
	}
	_, err := m.assignmentsCol.InsertOne(insertCtx, assignment)
	return err
}

// EnrollmentByID fetches a live enrollment by ID
func (m *Mongo) EnrollmentByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := findOne(ctx, m.enrollmentsCol, bson.M{"_id": id}, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// EnrollmentByStudentCourse resolves a student's live enrollment in a course
func (m *Mongo) EnrollmentByStudentCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	filter := bson.M{
		"student_id": studentID,
		"course_id":  courseID,
		"status":     model.StatusEnrolled,
	}
	if err := findOne(ctx, m.enrollmentsCol, filter, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// EnrollmentsByStudentSemester lists a student's live enrollments for a semester
func (m *Mongo) EnrollmentsByStudentSemester(ctx context.Context, studentID, semester string) ([]model.Enrollment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := notDeleted(bson.M{"student_id": studentID})
	if semester != "" {
		filter["semester"] = semester
	}

	cursor, err := m.enrollmentsCol.Find(queryCtx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	var enrollments []model.Enrollment
	for cursor.Next(queryCtx) {
		var doc model.Enrollment
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		enrollments = append(enrollments, doc)
	}
	return enrollments, cursor.Err()
}

// InsertEnrollment creates an enrollment
func (m *Mongo) InsertEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now()
	}
	_, err := m.enrollmentsCol.InsertOne(insertCtx, enrollment)
	return err
}
