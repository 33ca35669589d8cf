package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"acadsys/internal/config"
	"acadsys/internal/model"
	"acadsys/internal/store"
)

// Fixed IDs so the seeder is re-runnable against a wiped database and the
// frontend/test credentials stay stable.
const (
	AdminUserID   = "admin-001"
	TeacherUserID = "teacher-001"
	TeacherID     = "teacher-profile-001"
	StudentUserID = "student-001"
	StudentID     = "student-profile-001"

	CommonPassword = "password"

	CurrentSemester = "2026-Fall"

	ClassID      = "class-cs-2026-1"
	CourseID     = "course-cs101"
	AssignmentID = "assign-cs101"
	ClassroomID  = "room-a101"
	EnrollmentID = "enroll-001"
)

func main() {
	log.Println("Starting Database Seeder...")

	if err := config.LoadEnv(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := store.Connect(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(CommonPassword), cfg.Security.BCryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()

	seedUser(ctx, db, &model.User{
		ID: AdminUserID, Username: "admin", PasswordHash: string(hash),
		Role: model.RoleAdmin, CreatedAt: now,
	})
	seedUser(ctx, db, &model.User{
		ID: TeacherUserID, Username: "prof.tan", PasswordHash: string(hash),
		Role: model.RoleTeacher, CreatedAt: now,
	})
	seedUser(ctx, db, &model.User{
		ID: StudentUserID, Username: "2026-00001", PasswordHash: string(hash),
		Role: model.RoleStudent, CreatedAt: now,
	})

	if err := db.InsertTeacherProfile(ctx, &model.TeacherProfile{
		ID: TeacherID, UserID: TeacherUserID, TeacherIDNumber: "T-1001",
		FullName: "Maria Tan", Title: "Associate Professor", CreatedAt: now,
	}); err != nil {
		logSeedErr("teacher profile", err)
	}

	if err := db.InsertClass(ctx, &model.Class{
		ID: ClassID, Name: "CS-2026-1", CreatedAt: now,
	}); err != nil {
		logSeedErr("class", err)
	}

	if err := db.InsertStudentProfile(ctx, &model.StudentProfile{
		ID: StudentID, UserID: StudentUserID, StudentIDNumber: "2026-00001",
		FullName: "Juan dela Cruz", ClassID: ClassID, CreatedAt: now,
	}); err != nil {
		logSeedErr("student profile", err)
	}

	if err := db.InsertCourse(ctx, &model.Course{
		ID: CourseID, Code: "CS101", Name: "Introduction to Computing",
		Credits: 3, Department: "Computer Science", CreatedAt: now,
	}); err != nil {
		logSeedErr("course", err)
	}

	if err := db.InsertAssignment(ctx, &model.TeachingAssignment{
		ID: AssignmentID, TeacherID: TeacherID, CourseID: CourseID,
		Semester: CurrentSemester, CreatedAt: now,
	}); err != nil {
		logSeedErr("teaching assignment", err)
	}

	if err := db.InsertClassroom(ctx, &model.Classroom{
		ID: ClassroomID, Name: "A101", Building: "Science Hall",
		Capacity: 45, CreatedAt: now,
	}); err != nil {
		logSeedErr("classroom", err)
	}

	if err := db.InsertEnrollment(ctx, &model.Enrollment{
		ID: EnrollmentID, StudentID: StudentID, CourseID: CourseID,
		Semester: CurrentSemester, Status: model.StatusEnrolled, EnrolledAt: now,
	}); err != nil {
		logSeedErr("enrollment", err)
	}

	log.Println("Seeding complete.")
	log.Printf("Login with admin / prof.tan / 2026-00001, password %q", CommonPassword)
}

func seedUser(ctx context.Context, db *store.Mongo, user *model.User) {
	if err := db.InsertUser(ctx, user); err != nil {
		logSeedErr("user "+user.Username, err)
	}
}

// logSeedErr downgrades duplicate-key errors: re-running the seeder over an
// already seeded database is expected.
func logSeedErr(what string, err error) {
	if store.IsDuplicateKey(err) {
		log.Printf("Skipping %s: already seeded", what)
		return
	}
	log.Fatalf("Failed to seed %s: %v", what, err)
}
