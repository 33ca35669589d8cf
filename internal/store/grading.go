// ============================================================================
// internal/store/grading.go
// Grade item and grade repositories
// ============================================================================

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"acadsys/internal/model"
)

// GradeItemsByCourse lists the live grade items of a course
func (m *Mongo) GradeItemsByCourse(ctx context.Context, courseID string) ([]model.GradeItem, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := m.gradeItemsCol.Find(queryCtx, notDeleted(bson.M{"course_id": courseID}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	var items []model.GradeItem
	for cursor.Next(queryCtx) {
		var doc model.GradeItem
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		items = append(items, doc)
	}
	return items, cursor.Err()
}

// GradeItemByID fetches a live grade item by ID
func (m *Mongo) GradeItemByID(ctx context.Context, id string) (*model.GradeItem, error) {
	var item model.GradeItem
	if err := findOne(ctx, m.gradeItemsCol, bson.M{"_id": id}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertGradeItem creates a grade item
func (m *Mongo) InsertGradeItem(ctx context.Context, item *model.GradeItem) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := m.gradeItemsCol.InsertOne(insertCtx, item)
	return err
}

// UpdateGradeItemWeight replaces a grade item's weight
func (m *Mongo) UpdateGradeItemWeight(ctx context.Context, id string, weight float64) error {
	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := m.gradeItemsCol.UpdateOne(updateCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"weight": weight, "updated_at": time.Now()}},
	)
	return err
}

// SoftDeleteGradeItem removes a grade item from the live set. The item's
// weight stops counting toward the course sum but its row is kept.
func (m *Mongo) SoftDeleteGradeItem(ctx context.Context, id string) error {
	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := m.gradeItemsCol.UpdateOne(updateCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
	)
	return err
}

// GradesByEnrollment lists the live grades of an enrollment
func (m *Mongo) GradesByEnrollment(ctx context.Context, enrollmentID string) ([]model.Grade, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := m.gradesCol.Find(queryCtx, notDeleted(bson.M{"enrollment_id": enrollmentID}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	var grades []model.Grade
	for cursor.Next(queryCtx) {
		var doc model.Grade
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		grades = append(grades, doc)
	}
	return grades, cursor.Err()
}

// GradesByCourse lists the live grades across all enrollments of a course
func (m *Mongo) GradesByCourse(ctx context.Context, courseID string) ([]model.Grade, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := m.gradesCol.Find(queryCtx, notDeleted(bson.M{"course_id": courseID}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	var grades []model.Grade
	for cursor.Next(queryCtx) {
		var doc model.Grade
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		grades = append(grades, doc)
	}
	return grades, cursor.Err()
}

// UpsertGrade writes a score for (enrollment, grade item), creating the row
// if absent. Status always lands on "graded" with grader and timestamp
// stamped; the unique (enrollment_id, grade_item_id) index makes concurrent
// upserts race-safe.
func (m *Mongo) UpsertGrade(ctx context.Context, grade *model.Grade) error {
	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"enrollment_id": grade.EnrollmentID,
		"grade_item_id": grade.GradeItemID,
	}
	update := bson.M{
		"$set": bson.M{
			"score":      grade.Score,
			"status":     grade.Status,
			"graded_by":  grade.GradedBy,
			"graded_at":  grade.GradedAt,
			"course_id":  grade.CourseID,
			"is_deleted": false,
		},
		"$setOnInsert": bson.M{"_id": grade.ID},
	}

	opts := options.Update().SetUpsert(true)
	_, err := m.gradesCol.UpdateOne(updateCtx, filter, update, opts)
	return err
}

// PublishCourseGrades flips every graded row of a course to published.
// Already-published rows are left untouched, so re-publishing is a no-op.
func (m *Mongo) PublishCourseGrades(ctx context.Context, courseID, publishedBy string) (int64, error) {
	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := notDeleted(bson.M{
		"course_id": courseID,
		"status":    model.GradeStatusGraded,
	})
	update := bson.M{
		"$set": bson.M{
			"status":       model.GradeStatusPublished,
			"published_by": publishedBy,
			"published_at": time.Now(),
		},
	}

	result, err := m.gradesCol.UpdateMany(updateCtx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
