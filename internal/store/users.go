// ============================================================================
// internal/store/users.go
// User account, class, and profile repositories
// ============================================================================

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"acadsys/internal/model"
)

// UserByUsername fetches a live user account by username
func (m *Mongo) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := findOne(ctx, m.usersCol, bson.M{"username": username}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID fetches a live user account by ID
func (m *Mongo) UserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := findOne(ctx, m.usersCol, bson.M{"_id": id}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InsertUser creates a user account. A duplicate username surfaces as a
// uniqueness violation from the users index.
func (m *Mongo) InsertUser(ctx context.Context, user *model.User) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := m.usersCol.InsertOne(insertCtx, user)
	return err
}

// UpdatePasswordHash replaces a user's password hash
func (m *Mongo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := m.usersCol.UpdateOne(updateCtx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now()}},
	)
	return err
}

// ClassByName fetches a live class by its display name
func (m *Mongo) ClassByName(ctx context.Context, name string) (*model.Class, error) {
	var class model.Class
	if err := findOne(ctx, m.classesCol, bson.M{"name": name}, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// InsertClass creates a class
func (m *Mongo) InsertClass(ctx context.Context, class *model.Class) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now()
	}
	_, err := m.classesCol.InsertOne(insertCtx, class)
	return err
}

// StudentProfileByIDNumber fetches a live student profile by its ID number
func (m *Mongo) StudentProfileByIDNumber(ctx context.Context, idNumber string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	if err := findOne(ctx, m.studentProfilesCol, bson.M{"student_id_number": idNumber}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// InsertStudentProfile creates a student profile
func (m *Mongo) InsertStudentProfile(ctx context.Context, profile *model.StudentProfile) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	_, err := m.studentProfilesCol.InsertOne(insertCtx, profile)
	return err
}

// TeacherProfileByUserID fetches the teacher profile behind a user account
func (m *Mongo) TeacherProfileByUserID(ctx context.Context, userID string) (*model.TeacherProfile, error) {
	var profile model.TeacherProfile
	if err := findOne(ctx, m.teacherProfilesCol, bson.M{"user_id": userID}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// InsertTeacherProfile creates a teacher profile
func (m *Mongo) InsertTeacherProfile(ctx context.Context, profile *model.TeacherProfile) error {
	insertCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	_, err := m.teacherProfilesCol.InsertOne(insertCtx, profile)
	return err
}
