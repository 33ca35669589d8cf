package bulk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"acadsys/internal/apperr"
	"acadsys/internal/grading"
	"acadsys/internal/model"
)

// memEnv backs both the reconciler's directory and the grade ledger's store
// for one test, so imported rows land in the same place the ledger reads.
type memEnv struct {
	students    map[string]*model.StudentProfile // by student_id_number
	classes     map[string]*model.Class          // by name
	users       map[string]*model.User           // by username
	teachers    map[string]*model.TeacherProfile // by user_id
	assignments map[string]bool                  // teacher_id|course_id
	enrollments map[string]*model.Enrollment     // by id
	items       map[string]*model.GradeItem
	grades      map[string]*model.Grade // by enrollment_id|grade_item_id
	courses     map[string]*model.Course
}

func newMemEnv() *memEnv {
	return &memEnv{
		students:    make(map[string]*model.StudentProfile),
		classes:     make(map[string]*model.Class),
		users:       make(map[string]*model.User),
		teachers:    make(map[string]*model.TeacherProfile),
		assignments: make(map[string]bool),
		enrollments: make(map[string]*model.Enrollment),
		items:       make(map[string]*model.GradeItem),
		grades:      make(map[string]*model.Grade),
		courses:     make(map[string]*model.Course),
	}
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

// --- Directory ---

func (e *memEnv) StudentProfileByIDNumber(_ context.Context, idNumber string) (*model.StudentProfile, error) {
	profile, ok := e.students[idNumber]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return profile, nil
}

func (e *memEnv) InsertStudentProfile(_ context.Context, profile *model.StudentProfile) error {
	if _, ok := e.students[profile.StudentIDNumber]; ok {
		return duplicateKeyErr()
	}
	e.students[profile.StudentIDNumber] = profile
	return nil
}

func (e *memEnv) ClassByName(_ context.Context, name string) (*model.Class, error) {
	class, ok := e.classes[name]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return class, nil
}

func (e *memEnv) InsertClass(_ context.Context, class *model.Class) error {
	e.classes[class.Name] = class
	return nil
}

func (e *memEnv) InsertUser(_ context.Context, user *model.User) error {
	if _, ok := e.users[user.Username]; ok {
		return duplicateKeyErr()
	}
	e.users[user.Username] = user
	return nil
}

func (e *memEnv) TeacherProfileByUserID(_ context.Context, userID string) (*model.TeacherProfile, error) {
	teacher, ok := e.teachers[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return teacher, nil
}

func (e *memEnv) AssignmentExists(_ context.Context, teacherID, courseID string) (bool, error) {
	return e.assignments[teacherID+"|"+courseID], nil
}

func (e *memEnv) EnrollmentByStudentCourse(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	for _, enrollment := range e.enrollments {
		if enrollment.StudentID == studentID && enrollment.CourseID == courseID &&
			enrollment.Status == model.StatusEnrolled {
			return enrollment, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// --- grading.Store ---

func (e *memEnv) GradeItemsByCourse(_ context.Context, courseID string) ([]model.GradeItem, error) {
	var out []model.GradeItem
	for _, item := range e.items {
		if item.CourseID == courseID && !item.IsDeleted {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (e *memEnv) GradeItemByID(_ context.Context, id string) (*model.GradeItem, error) {
	item, ok := e.items[id]
	if !ok || item.IsDeleted {
		return nil, mongo.ErrNoDocuments
	}
	return item, nil
}

func (e *memEnv) InsertGradeItem(_ context.Context, item *model.GradeItem) error {
	e.items[item.ID] = item
	return nil
}

func (e *memEnv) UpdateGradeItemWeight(_ context.Context, id string, weight float64) error {
	if item, ok := e.items[id]; ok {
		item.Weight = weight
	}
	return nil
}

func (e *memEnv) SoftDeleteGradeItem(_ context.Context, id string) error {
	if item, ok := e.items[id]; ok {
		item.IsDeleted = true
	}
	return nil
}

func (e *memEnv) GradesByEnrollment(_ context.Context, enrollmentID string) ([]model.Grade, error) {
	var out []model.Grade
	for _, grade := range e.grades {
		if grade.EnrollmentID == enrollmentID {
			out = append(out, *grade)
		}
	}
	return out, nil
}

func (e *memEnv) GradesByCourse(_ context.Context, courseID string) ([]model.Grade, error) {
	var out []model.Grade
	for _, grade := range e.grades {
		if grade.CourseID == courseID {
			out = append(out, *grade)
		}
	}
	return out, nil
}

func (e *memEnv) UpsertGrade(_ context.Context, grade *model.Grade) error {
	e.grades[grade.EnrollmentID+"|"+grade.GradeItemID] = grade
	return nil
}

func (e *memEnv) PublishCourseGrades(_ context.Context, courseID, publishedBy string) (int64, error) {
	var count int64
	for _, grade := range e.grades {
		if grade.CourseID == courseID && grade.Status == model.GradeStatusGraded {
			grade.Status = model.GradeStatusPublished
			grade.PublishedBy = publishedBy
			count++
		}
	}
	return count, nil
}

func (e *memEnv) EnrollmentByID(_ context.Context, id string) (*model.Enrollment, error) {
	enrollment, ok := e.enrollments[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return enrollment, nil
}

func (e *memEnv) EnrollmentsByStudentSemester(_ context.Context, studentID, semester string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, enrollment := range e.enrollments {
		if enrollment.StudentID == studentID && enrollment.Semester == semester {
			out = append(out, *enrollment)
		}
	}
	return out, nil
}

func (e *memEnv) CourseByID(_ context.Context, id string) (*model.Course, error) {
	course, ok := e.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return course, nil
}

func newTestReconciler(env *memEnv) *Reconciler {
	return NewReconciler(env, grading.NewLedger(env), bcrypt.MinCost)
}

// seedGradeEnv wires a teacher, course, grade item, and one enrolled student
func seedGradeEnv(env *memEnv) {
	env.teachers["teacher-user-1"] = &model.TeacherProfile{ID: "teacher-1", UserID: "teacher-user-1"}
	env.courses["course-1"] = &model.Course{ID: "course-1", Code: "CS101", Credits: 3}
	env.assignments["teacher-1|course-1"] = true
	env.items["item-1"] = &model.GradeItem{ID: "item-1", CourseID: "course-1", Name: "Final", Weight: 1.0}
	env.students["2026-00001"] = &model.StudentProfile{ID: "stu-1", StudentIDNumber: "2026-00001"}
	env.enrollments["enr-1"] = &model.Enrollment{
		ID: "enr-1", StudentID: "stu-1", CourseID: "course-1",
		Semester: "2026-Fall", Status: model.StatusEnrolled,
	}
}

func TestImportStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("creates accounts, profiles, and classes", func(t *testing.T) {
		env := newMemEnv()
		r := newTestReconciler(env)

		csv := "student_id_number,full_name,class_name\n" +
			"2026-00001,Juan dela Cruz,CS-2026-1\n" +
			"2026-00002,Maria Clara,CS-2026-1\n"

		result, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Total)
		assert.Equal(t, 2, result.Summary.Created)
		assert.Equal(t, 0, result.Summary.Failed)

		// Both share one auto-created class
		assert.Len(t, env.classes, 1)

		// Accounts use the id number as username and the initial password
		user, ok := env.users["2026-00001"]
		require.True(t, ok)
		assert.Equal(t, model.RoleStudent, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(model.InitialBulkPassword)))
	})

	t.Run("re-import marks every row existing", func(t *testing.T) {
		env := newMemEnv()
		r := newTestReconciler(env)

		csv := "student_id_number,full_name,class_name\n" +
			"2026-00001,Juan dela Cruz,CS-2026-1\n" +
			"2026-00002,Maria Clara,CS-2026-1\n"

		_, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)

		result, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Total)
		assert.Equal(t, 0, result.Summary.Created)
		assert.Equal(t, 2, result.Summary.Existing)
	})

	t.Run("bad rows fail without touching their neighbors", func(t *testing.T) {
		env := newMemEnv()
		r := newTestReconciler(env)

		csv := "student_id_number,full_name,class_name\n" +
			"2026-00001,Juan dela Cruz,CS-2026-1\n" +
			",Missing ID,CS-2026-1\n" +
			"2026-00003,,CS-2026-1\n" +
			"2026-00004,Jose Rizal,CS-2026-1\n"

		result, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Summary.Total)
		assert.Equal(t, 2, result.Summary.Created)
		assert.Equal(t, 2, result.Summary.Failed)

		// Details stay in input order
		require.Len(t, result.Details, 4)
		assert.Equal(t, StatusCreated, result.Details[0].Status)
		assert.Equal(t, StatusFailed, result.Details[1].Status)
		assert.Equal(t, "required field missing", result.Details[1].Message)
		assert.Equal(t, StatusFailed, result.Details[2].Status)
		assert.Equal(t, "required field missing", result.Details[2].Message)
		assert.Equal(t, StatusCreated, result.Details[3].Status)
	})

	t.Run("short rows are skipped without being counted", func(t *testing.T) {
		env := newMemEnv()
		r := newTestReconciler(env)

		csv := "student_id_number,full_name,class_name\n" +
			"2026-00001,Juan dela Cruz,CS-2026-1\n" +
			"2026-00002,Maria Clara\n" +
			"2026-00003,Jose Rizal,CS-2026-1\n"

		result, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Total)
		assert.Equal(t, 2, result.Summary.Created)
		assert.Len(t, result.Details, 2)
	})

	t.Run("tolerates a BOM and CRLF line endings", func(t *testing.T) {
		env := newMemEnv()
		r := newTestReconciler(env)

		csv := "\ufeffstudent_id_number,full_name,class_name\r\n" +
			"2026-00001,Juan dela Cruz,CS-2026-1\r\n"

		result, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.Created)
	})

	t.Run("missing required column aborts the batch", func(t *testing.T) {
		env := newMemEnv()
		r := newTestReconciler(env)

		_, err := r.ImportStudents(ctx, "student_id_number,full_name\n2026-00001,Juan\n")
		assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
	})

	t.Run("taken username fails the row only", func(t *testing.T) {
		env := newMemEnv()
		env.users["2026-00001"] = &model.User{ID: "usr-x", Username: "2026-00001"}
		r := newTestReconciler(env)

		csv := "student_id_number,full_name,class_name\n" +
			"2026-00001,Juan dela Cruz,CS-2026-1\n" +
			"2026-00002,Maria Clara,CS-2026-1\n"

		result, err := r.ImportStudents(ctx, csv)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.Failed)
		assert.Equal(t, 1, result.Summary.Created)
		assert.Equal(t, "username already taken", result.Details[0].Message)
	})
}

func TestImportGrades(t *testing.T) {
	ctx := context.Background()

	t.Run("records scores for enrolled students", func(t *testing.T) {
		env := newMemEnv()
		seedGradeEnv(env)
		r := newTestReconciler(env)

		csv := "student_id_number,score\n2026-00001,88.5\n"

		result, err := r.ImportGrades(ctx, "teacher-user-1", "item-1", csv)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.Updated)
		assert.Equal(t, 0, result.Summary.Failed)

		grade, ok := env.grades["enr-1|item-1"]
		require.True(t, ok)
		assert.Equal(t, model.GradeStatusGraded, grade.Status)
		assert.Equal(t, 88.5, *grade.Score)
		assert.Equal(t, "teacher-user-1", grade.GradedBy)
	})

	t.Run("per-row failure reasons", func(t *testing.T) {
		env := newMemEnv()
		seedGradeEnv(env)
		// A student known to the registrar but not enrolled in the course
		env.students["2026-00099"] = &model.StudentProfile{ID: "stu-99", StudentIDNumber: "2026-00099"}
		r := newTestReconciler(env)

		csv := "student_id_number,score\n" +
			"2026-00001,abc\n" +
			"9999-00000,80\n" +
			"2026-00099,80\n" +
			"2026-00001,75\n"

		result, err := r.ImportGrades(ctx, "teacher-user-1", "item-1", csv)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Summary.Total)
		assert.Equal(t, 3, result.Summary.Failed)
		assert.Equal(t, 1, result.Summary.Updated)

		assert.Equal(t, "score not numeric", result.Details[0].Message)
		assert.Equal(t, "student not found", result.Details[1].Message)
		assert.Equal(t, "student not enrolled", result.Details[2].Message)
		assert.Equal(t, StatusUpdated, result.Details[3].Status)
	})

	t.Run("out-of-range score fails the row", func(t *testing.T) {
		env := newMemEnv()
		seedGradeEnv(env)
		r := newTestReconciler(env)

		result, err := r.ImportGrades(ctx, "teacher-user-1", "item-1", "student_id_number,score\n2026-00001,101\n")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.Failed)
		assert.NotEmpty(t, result.Details[0].Message)
	})

	t.Run("unknown grade item", func(t *testing.T) {
		env := newMemEnv()
		seedGradeEnv(env)
		r := newTestReconciler(env)

		_, err := r.ImportGrades(ctx, "teacher-user-1", "nope", "student_id_number,score\n2026-00001,80\n")
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})

	t.Run("caller must be a teacher of the course", func(t *testing.T) {
		env := newMemEnv()
		seedGradeEnv(env)
		env.teachers["other-teacher-user"] = &model.TeacherProfile{ID: "teacher-2", UserID: "other-teacher-user"}
		r := newTestReconciler(env)

		csv := "student_id_number,score\n2026-00001,80\n"

		_, err := r.ImportGrades(ctx, "not-a-teacher", "item-1", csv)
		assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

		_, err = r.ImportGrades(ctx, "other-teacher-user", "item-1", csv)
		assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
	})
}
