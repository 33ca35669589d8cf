// ============================================================================
// internal/store/schedule.go
// Classroom and course schedule repositories
// ============================================================================

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"acadsys/internal/model"
)

// ClassroomByID fetches a live classroom by ID
func (m *Mongo) ClassroomByID(ctx context.Context, id string) (*model.Classroom, error) {
	var room model.Classroom
	if err := findOne(ctx, m.classroomsCol, bson.M{"_id": id}, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// InsertClassroom creates a classroom
func (m *Mongo) InsertClassroom(ctx context.Context, room *model.Classroom) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	_, err := m.classroomsCol.InsertOne(insertCtx, room)
	return err
}

// SchedulesByRoomDay lists live schedule entries for a (classroom, day) pair
func (m *Mongo) SchedulesByRoomDay(ctx context.Context, classroomID string, dayOfWeek int) ([]model.CourseSchedule, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := notDeleted(bson.M{
		"classroom_id": classroomID,
		"day_of_week":  dayOfWeek,
	})

	cursor, err := m.schedulesCol.Find(queryCtx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	var schedules []model.CourseSchedule
	for cursor.Next(queryCtx) {
		var doc model.CourseSchedule
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		schedules = append(schedules, doc)
	}
	return schedules, cursor.Err()
}

// InsertSchedule creates a schedule entry
func (m *Mongo) InsertSchedule(ctx context.Context, schedule *model.CourseSchedule) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now()
	}
	_, err := m.schedulesCol.InsertOne(insertCtx, schedule)
	return err
}

// SoftDeleteSchedule removes a schedule entry from the live set. Timetable
// edits are modeled as delete + recreate, never partial interval updates.
func (m *Mongo) SoftDeleteSchedule(ctx context.Context, id string) error {
	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := m.schedulesCol.UpdateOne(updateCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_deleted": true}},
	)
	return err
}
