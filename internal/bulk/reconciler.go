// ============================================================================
// internal/bulk/reconciler.go
// Row-by-row CSV import reconciliation for students and grades
// ============================================================================

package bulk

import (
	"context"
	"log"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"acadsys/internal/apperr"
	"acadsys/internal/grading"
	"acadsys/internal/model"
	"acadsys/internal/store"
)

// Directory is the lookup/creation contract the reconciler drives per row
type Directory interface {
	StudentProfileByIDNumber(ctx context.Context, idNumber string) (*model.StudentProfile, error)
	InsertStudentProfile(ctx context.Context, profile *model.StudentProfile) error
	ClassByName(ctx context.Context, name string) (*model.Class, error)
	InsertClass(ctx context.Context, class *model.Class) error
	InsertUser(ctx context.Context, user *model.User) error

	GradeItemByID(ctx context.Context, id string) (*model.GradeItem, error)
	TeacherProfileByUserID(ctx context.Context, userID string) (*model.TeacherProfile, error)
	AssignmentExists(ctx context.Context, teacherID, courseID string) (bool, error)
	EnrollmentByStudentCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
}

// Reconciler classifies every import row into exactly one outcome without
// ever aborting the batch on a single bad row.
type Reconciler struct {
	dir        Directory
	ledger     *grading.Ledger
	bcryptCost int
}

// NewReconciler creates a bulk import reconciler
func NewReconciler(dir Directory, ledger *grading.Ledger, bcryptCost int) *Reconciler {
	return &Reconciler{dir: dir, ledger: ledger, bcryptCost: bcryptCost}
}

// ============================================================================
// Outcomes
// ============================================================================

// Row statuses
const (
	StatusCreated  = "created"
	StatusUpdated  = "updated"
	StatusExisting = "existing"
	StatusFailed   = "failed"
)

// RowResult is the outcome of one input row, keyed by its identifying field
type RowResult struct {
	StudentIDNumber string `json:"student_id_number"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
}

// Summary aggregates the per-row outcomes of one batch
type Summary struct {
	Total    int `json:"total"`
	Created  int `json:"created,omitempty"`
	Updated  int `json:"updated,omitempty"`
	Existing int `json:"existing,omitempty"`
	Failed   int `json:"failed"`
}

// Result is the full response of one batch call; Details preserves input
// row order.
type Result struct {
	Summary Summary     `json:"summary"`
	Details []RowResult `json:"details"`
}

func (r *Result) record(key, status, message string) {
	r.Summary.Total++
	switch status {
	case StatusCreated:
		r.Summary.Created++
	case StatusUpdated:
		r.Summary.Updated++
	case StatusExisting:
		r.Summary.Existing++
	case StatusFailed:
		r.Summary.Failed++
	}
	r.Details = append(r.Details, RowResult{StudentIDNumber: key, Status: status, Message: message})
}

// ============================================================================
// CSV Parsing
// ============================================================================

// csvTable is a parsed import file: a lowercased header plus data rows
type csvTable struct {
	header []string
	rows   [][]string
}

// parseCSV splits UTF-8 (BOM-tolerant) text into header and rows. Fields
// are split on bare commas with no quoting or escaping: a literal comma
// inside a field is not supported. Empty lines are dropped.
func parseCSV(data string) (*csvTable, error) {
	data = strings.TrimPrefix(data, "\ufeff")

	var lines []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, apperr.New(apperr.CodeInvalidArgument, "file is empty")
	}

	table := &csvTable{}
	for _, field := range strings.Split(lines[0], ",") {
		table.header = append(table.header, strings.ToLower(strings.TrimSpace(field)))
	}
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		table.rows = append(table.rows, fields)
	}
	return table, nil
}

// columnIndex locates a header column by name
func (t *csvTable) columnIndex(name string) int {
	for i, col := range t.header {
		if col == name {
			return i
		}
	}
	return -1
}

// requireColumns resolves the index of every required column
func (t *csvTable) requireColumns(names ...string) (map[string]int, error) {
	indices := make(map[string]int, len(names))
	for _, name := range names {
		idx := t.columnIndex(name)
		if idx < 0 {
			return nil, apperr.New(apperr.CodeInvalidArgument, "missing required column %q", name)
		}
		indices[name] = idx
	}
	return indices, nil
}

// ============================================================================
// Student Import
// ============================================================================

// ImportStudents reconciles a student CSV batch. Every well-formed row ends
// up created, existing, or failed; a row shorter than the header is skipped
// without being counted at all.
func (r *Reconciler) ImportStudents(ctx context.Context, data string) (*Result, error) {
	table, err := parseCSV(data)
	if err != nil {
		return nil, err
	}
	cols, err := table.requireColumns("student_id_number", "full_name", "class_name")
	if err != nil {
		return nil, err
	}
	emailIdx := table.columnIndex("email")

	result := &Result{Details: []RowResult{}}
	for _, row := range table.rows {
		if len(row) < len(table.header) {
			// Malformed field count: the row is dropped silently rather than
			// recorded as a failure.
			continue
		}

		idNumber := row[cols["student_id_number"]]
		fullName := row[cols["full_name"]]
		className := row[cols["class_name"]]

		if idNumber == "" || fullName == "" || className == "" {
			result.record(idNumber, StatusFailed, "required field missing")
			continue
		}

		email := ""
		if emailIdx >= 0 && emailIdx < len(row) {
			email = row[emailIdx]
		}

		status, message := r.importStudentRow(ctx, idNumber, fullName, className, email)
		result.record(idNumber, status, message)
	}
	return result, nil
}

// importStudentRow processes one student row. Store failures are converted
// to a failed outcome for this row only; the loop never aborts.
func (r *Reconciler) importStudentRow(ctx context.Context, idNumber, fullName, className, email string) (status, message string) {
	_, err := r.dir.StudentProfileByIDNumber(ctx, idNumber)
	if err == nil {
		return StatusExisting, "student already exists"
	}
	if !store.IsNotFound(err) {
		log.Printf("WARN: student import lookup failed for %s: %v", idNumber, err)
		return StatusFailed, "lookup failed"
	}

	class, err := r.dir.ClassByName(ctx, className)
	if store.IsNotFound(err) {
		class = &model.Class{ID: model.GenerateClassID(), Name: className}
		if err := r.dir.InsertClass(ctx, class); err != nil {
			log.Printf("WARN: class create failed for %s: %v", className, err)
			return StatusFailed, "class creation failed"
		}
	} else if err != nil {
		log.Printf("WARN: class lookup failed for %s: %v", className, err)
		return StatusFailed, "lookup failed"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(model.InitialBulkPassword), r.bcryptCost)
	if err != nil {
		return StatusFailed, "account creation failed"
	}

	user := &model.User{
		ID:           model.GenerateUserID(),
		Username:     idNumber,
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	if err := r.dir.InsertUser(ctx, user); err != nil {
		if store.IsDuplicateKey(err) {
			return StatusFailed, "username already taken"
		}
		log.Printf("WARN: user create failed for %s: %v", idNumber, err)
		return StatusFailed, "account creation failed"
	}

	profile := &model.StudentProfile{
		ID:              model.GenerateProfileID(),
		UserID:          user.ID,
		StudentIDNumber: idNumber,
		FullName:        fullName,
		ClassID:         class.ID,
		Email:           email,
	}
	if err := r.dir.InsertStudentProfile(ctx, profile); err != nil {
		log.Printf("WARN: profile create failed for %s: %v", idNumber, err)
		return StatusFailed, "profile creation failed"
	}

	return StatusCreated, ""
}

// ============================================================================
// Grade Import
// ============================================================================

// ImportGrades reconciles a grade CSV batch against one grade item. The
// caller must hold a teaching assignment for the item's course; per-row
// resolution failures are recorded without touching sibling rows.
func (r *Reconciler) ImportGrades(ctx context.Context, callerUserID, gradeItemID, data string) (*Result, error) {
	item, err := r.dir.GradeItemByID(ctx, gradeItemID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "grade item not found")
		}
		return nil, apperr.Internal(err)
	}

	teacher, err := r.dir.TeacherProfileByUserID(ctx, callerUserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeForbidden, "caller is not a teacher")
		}
		return nil, apperr.Internal(err)
	}
	teaches, err := r.dir.AssignmentExists(ctx, teacher.ID, item.CourseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !teaches {
		return nil, apperr.New(apperr.CodeForbidden, "caller does not teach this course")
	}

	table, err := parseCSV(data)
	if err != nil {
		return nil, err
	}
	cols, err := table.requireColumns("student_id_number", "score")
	if err != nil {
		return nil, err
	}

	result := &Result{Details: []RowResult{}}
	for _, row := range table.rows {
		if len(row) < len(table.header) {
			continue
		}

		idNumber := row[cols["student_id_number"]]
		rawScore := row[cols["score"]]

		if idNumber == "" || rawScore == "" {
			result.record(idNumber, StatusFailed, "required field missing")
			continue
		}

		status, message := r.importGradeRow(ctx, item, callerUserID, idNumber, rawScore)
		result.record(idNumber, status, message)
	}
	return result, nil
}

// importGradeRow resolves one student's enrollment and records the score
func (r *Reconciler) importGradeRow(ctx context.Context, item *model.GradeItem, gradedBy, idNumber, rawScore string) (status, message string) {
	score, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		return StatusFailed, "score not numeric"
	}

	profile, err := r.dir.StudentProfileByIDNumber(ctx, idNumber)
	if err != nil {
		if store.IsNotFound(err) {
			return StatusFailed, "student not found"
		}
		log.Printf("WARN: grade import lookup failed for %s: %v", idNumber, err)
		return StatusFailed, "lookup failed"
	}

	enrollment, err := r.dir.EnrollmentByStudentCourse(ctx, profile.ID, item.CourseID)
	if err != nil {
		if store.IsNotFound(err) {
			return StatusFailed, "student not enrolled"
		}
		log.Printf("WARN: enrollment lookup failed for %s: %v", idNumber, err)
		return StatusFailed, "lookup failed"
	}

	if _, err := r.ledger.RecordScore(ctx, enrollment.ID, item.ID, score, gradedBy); err != nil {
		return StatusFailed, apperr.MessageOf(err)
	}
	return StatusUpdated, ""
}
