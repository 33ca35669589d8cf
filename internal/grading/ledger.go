// ============================================================================
// internal/grading/ledger.go
// Weighted grade composition: grade items, score recording, aggregation
// ============================================================================

package grading

import (
	"context"
	"strconv"
	"time"

	"acadsys/internal/apperr"
	"acadsys/internal/model"
	"acadsys/internal/store"
)

// Store is the persistence contract the grade ledger operates through
type Store interface {
	GradeItemsByCourse(ctx context.Context, courseID string) ([]model.GradeItem, error)
	GradeItemByID(ctx context.Context, id string) (*model.GradeItem, error)
	InsertGradeItem(ctx context.Context, item *model.GradeItem) error
	UpdateGradeItemWeight(ctx context.Context, id string, weight float64) error
	SoftDeleteGradeItem(ctx context.Context, id string) error

	GradesByEnrollment(ctx context.Context, enrollmentID string) ([]model.Grade, error)
	GradesByCourse(ctx context.Context, courseID string) ([]model.Grade, error)
	UpsertGrade(ctx context.Context, grade *model.Grade) error
	PublishCourseGrades(ctx context.Context, courseID, publishedBy string) (int64, error)

	EnrollmentByID(ctx context.Context, id string) (*model.Enrollment, error)
	EnrollmentsByStudentSemester(ctx context.Context, studentID, semester string) ([]model.Enrollment, error)
	CourseByID(ctx context.Context, id string) (*model.Course, error)
}

// Ledger enforces the weighted grading scheme of a course and aggregates
// item scores into enrollment final scores.
type Ledger struct {
	store Store
}

// NewLedger creates a grade ledger
func NewLedger(s Store) *Ledger {
	return &Ledger{store: s}
}

// ============================================================================
// Weight Validation
// ============================================================================

// ParseWeight parses a grade item weight. A non-numeric or negative weight
// fails with INVALID_WEIGHT before any sum check runs.
func ParseWeight(raw string) (float64, error) {
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeInvalidWeight, "weight %q is not a number", raw)
	}
	if weight < 0 {
		return 0, apperr.New(apperr.CodeInvalidWeight, "weight must not be negative")
	}
	return weight, nil
}

// ValidateNewWeight checks that adding candidate to the existing weights
// keeps the course total at or below 1, within tolerance.
func ValidateNewWeight(existing []float64, candidate float64) error {
	sum := candidate
	for _, w := range existing {
		sum += w
	}
	if sum > 1+model.WeightSumTolerance {
		return apperr.New(apperr.CodeWeightSumExceeded,
			"grade item weights for the course would total %.4f, exceeding 1.0", sum)
	}
	return nil
}

// ============================================================================
// Grade Item Operations
// ============================================================================

// CreateGradeItem adds a weighted component to a course's grading scheme.
// The raw weight string is parsed here so INVALID_WEIGHT always precedes
// the sum check.
func (l *Ledger) CreateGradeItem(ctx context.Context, courseID, name, rawWeight, createdBy string) (*model.GradeItem, error) {
	if courseID == "" || name == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "course_id and name are required")
	}

	weight, err := ParseWeight(rawWeight)
	if err != nil {
		return nil, err
	}

	if _, err := l.store.CourseByID(ctx, courseID); err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "course not found")
		}
		return nil, apperr.Internal(err)
	}

	items, err := l.store.GradeItemsByCourse(ctx, courseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	existing := make([]float64, 0, len(items))
	for _, item := range items {
		existing = append(existing, item.Weight)
	}
	if err := ValidateNewWeight(existing, weight); err != nil {
		return nil, err
	}

	item := &model.GradeItem{
		ID:        model.GenerateGradeItemID(),
		CourseID:  courseID,
		Name:      name,
		Weight:    weight,
		CreatedBy: createdBy,
	}
	if err := l.store.InsertGradeItem(ctx, item); err != nil {
		return nil, apperr.Internal(err)
	}
	return item, nil
}

// UpdateGradeItemWeight changes one item's weight, re-checking the course
// sum against the *other* live items.
func (l *Ledger) UpdateGradeItemWeight(ctx context.Context, itemID, rawWeight string) (*model.GradeItem, error) {
	weight, err := ParseWeight(rawWeight)
	if err != nil {
		return nil, err
	}

	item, err := l.store.GradeItemByID(ctx, itemID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "grade item not found")
		}
		return nil, apperr.Internal(err)
	}

	items, err := l.store.GradeItemsByCourse(ctx, item.CourseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	others := make([]float64, 0, len(items))
	for _, other := range items {
		if other.ID == itemID {
			continue
		}
		others = append(others, other.Weight)
	}
	if err := ValidateNewWeight(others, weight); err != nil {
		return nil, err
	}

	if err := l.store.UpdateGradeItemWeight(ctx, itemID, weight); err != nil {
		return nil, apperr.Internal(err)
	}
	item.Weight = weight
	return item, nil
}

// DeleteGradeItem soft-deletes an item, excluding its weight from the sum
func (l *Ledger) DeleteGradeItem(ctx context.Context, itemID string) error {
	if _, err := l.store.GradeItemByID(ctx, itemID); err != nil {
		if store.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, "grade item not found")
		}
		return apperr.Internal(err)
	}
	if err := l.store.SoftDeleteGradeItem(ctx, itemID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ============================================================================
// Score Recording & Aggregation
// ============================================================================

// RecordScore upserts the grade for (enrollment, item), always landing on
// status "graded" with grader identity and timestamp stamped. Re-submitting
// the same inputs is idempotent except for the timestamp.
func (l *Ledger) RecordScore(ctx context.Context, enrollmentID, gradeItemID string, score float64, gradedBy string) (*model.Grade, error) {
	if enrollmentID == "" || gradeItemID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "enrollment_id and grade_item_id are required")
	}
	if score < 0 || score > 100 {
		return nil, apperr.New(apperr.CodeInvalidScore, "score must be between 0 and 100")
	}

	enrollment, err := l.store.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "enrollment not found")
		}
		return nil, apperr.Internal(err)
	}

	item, err := l.store.GradeItemByID(ctx, gradeItemID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "grade item not found")
		}
		return nil, apperr.Internal(err)
	}
	if item.CourseID != enrollment.CourseID {
		return nil, apperr.New(apperr.CodeInvalidArgument, "grade item does not belong to the enrollment's course")
	}

	now := time.Now()
	grade := &model.Grade{
		ID:           model.GenerateGradeID(),
		EnrollmentID: enrollmentID,
		GradeItemID:  gradeItemID,
		CourseID:     enrollment.CourseID,
		Score:        &score,
		Status:       model.GradeStatusGraded,
		GradedBy:     gradedBy,
		GradedAt:     &now,
	}
	if err := l.store.UpsertGrade(ctx, grade); err != nil {
		return nil, apperr.Internal(err)
	}
	return grade, nil
}

// AggregateFinalScore computes Σ score·weight over the live grade items of
// the enrollment's course. A grade with no score stays in the enumeration
// and contributes 0: an ungraded item depresses the aggregate rather than
// blocking it.
func (l *Ledger) AggregateFinalScore(ctx context.Context, enrollmentID string) (float64, error) {
	enrollment, err := l.store.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		if store.IsNotFound(err) {
			return 0, apperr.New(apperr.CodeNotFound, "enrollment not found")
		}
		return 0, apperr.Internal(err)
	}

	items, err := l.store.GradeItemsByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	grades, err := l.store.GradesByEnrollment(ctx, enrollmentID)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	return aggregateScore(items, grades), nil
}

// aggregateScore is the pure weight-aggregation over one enrollment's
// grades. Grades referencing soft-deleted items carry no weight.
func aggregateScore(items []model.GradeItem, grades []model.Grade) float64 {
	weights := make(map[string]float64, len(items))
	for _, item := range items {
		weights[item.ID] = item.Weight
	}

	var total float64
	for _, grade := range grades {
		weight, live := weights[grade.GradeItemID]
		if !live || grade.Score == nil {
			continue
		}
		total += *grade.Score * weight
	}
	return total
}

// PublishGrades makes every graded row of a course visible to students.
// The transition is irreversible through normal flow; re-publishing
// touches nothing and reports zero rows.
func (l *Ledger) PublishGrades(ctx context.Context, courseID, publishedBy string) (int64, error) {
	if courseID == "" {
		return 0, apperr.New(apperr.CodeInvalidArgument, "course_id is required")
	}
	count, err := l.store.PublishCourseGrades(ctx, courseID, publishedBy)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}
