// ============================================================================
// internal/store/mongo.go
// MongoDB connection and shared query helpers
// ============================================================================

package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"acadsys/internal/config"
)

const queryTimeout = 10 * time.Second

// Mongo bundles the collections the domain services operate on.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database

	usersCol           *mongo.Collection
	classesCol         *mongo.Collection
	studentProfilesCol *mongo.Collection
	teacherProfilesCol *mongo.Collection
	coursesCol         *mongo.Collection
	assignmentsCol     *mongo.Collection
	enrollmentsCol     *mongo.Collection
	gradeItemsCol      *mongo.Collection
	gradesCol          *mongo.Collection
	schedulesCol       *mongo.Collection
	classroomsCol      *mongo.Collection
}

// Connect establishes the MongoDB connection and wraps the database handle
func Connect(cfg *config.MongoConfig) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo config cannot be nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxIdleTime).
		SetServerSelectionTimeout(10 * time.Second).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetSocketTimeout(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("INFO: Connected to MongoDB (database: %s)", cfg.Database)

	db := client.Database(cfg.Database)
	return NewMongo(client, db), nil
}

// NewMongo wraps an existing client/database pair
func NewMongo(client *mongo.Client, db *mongo.Database) *Mongo {
	return &Mongo{
		client:             client,
		db:                 db,
		usersCol:           db.Collection("users"),
		classesCol:         db.Collection("classes"),
		studentProfilesCol: db.Collection("student_profiles"),
		teacherProfilesCol: db.Collection("teacher_profiles"),
		coursesCol:         db.Collection("courses"),
		assignmentsCol:     db.Collection("teaching_assignments"),
		enrollmentsCol:     db.Collection("enrollments"),
		gradeItemsCol:      db.Collection("grade_items"),
		gradesCol:          db.Collection("grades"),
		schedulesCol:       db.Collection("course_schedules"),
		classroomsCol:      db.Collection("classrooms"),
	}
}

// Disconnect gracefully closes the MongoDB connection
func (m *Mongo) Disconnect() error {
	if m.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	log.Println("INFO: Disconnected from MongoDB")
	return nil
}

// EnsureIndexes creates the uniqueness constraints the services rely on.
// The (classroom, day, start) index backstops the schedule check-then-insert
// race; (enrollment, grade item) makes the grade upsert race-safe.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := m.usersCol.Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = m.gradesCol.Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "enrollment_id", Value: 1}, {Key: "grade_item_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("grades index: %w", err)
	}

	_, err = m.studentProfilesCol.Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "student_id_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("student profiles index: %w", err)
	}

	_, err = m.schedulesCol.Indexes().CreateOne(idxCtx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "classroom_id", Value: 1},
			{Key: "day_of_week", Value: 1},
			{Key: "start_time", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"is_deleted": false}),
	})
	if err != nil {
		return fmt.Errorf("schedules index: %w", err)
	}

	return nil
}

// notDeleted narrows a filter to live records. Soft deletion is one uniform
// capability across all collections: records carry is_deleted and reads
// exclude them here rather than per-call-site.
func notDeleted(filter bson.M) bson.M {
	if filter == nil {
		filter = bson.M{}
	}
	filter["is_deleted"] = bson.M{"$ne": true}
	return filter
}

// findOne decodes a single live document into result
func findOne(ctx context.Context, col *mongo.Collection, filter bson.M, result interface{}) error {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return col.FindOne(queryCtx, notDeleted(filter)).Decode(result)
}

// IsNotFound reports whether a store error means "no such document"
func IsNotFound(err error) bool {
	return err == mongo.ErrNoDocuments
}

// IsDuplicateKey reports whether a store error is a uniqueness violation
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
