// ============================================================================
// internal/grading/summary.go
// Semester grade summaries and course score statistics
// ============================================================================

package grading

import (
	"context"

	"github.com/montanaflynn/stats"

	"acadsys/internal/apperr"
	"acadsys/internal/model"
	"acadsys/internal/store"
)

// ItemScore is one grade item's entry in an enrollment breakdown
type ItemScore struct {
	GradeItemID string   `json:"grade_item_id"`
	Name        string   `json:"name"`
	Weight      float64  `json:"weight"`
	Score       *float64 `json:"score,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// CourseSummary is one enrollment's aggregated result
type CourseSummary struct {
	EnrollmentID string      `json:"enrollment_id"`
	CourseID     string      `json:"course_id"`
	CourseCode   string      `json:"course_code"`
	CourseName   string      `json:"course_name"`
	Credits      float64     `json:"credits"`
	Items        []ItemScore `json:"items"`
	FinalScore   float64     `json:"final_score"` // rounded to 1 decimal place
	GradePoint   float64     `json:"grade_point"`
	AllPublished bool        `json:"all_published"`
}

// SemesterSummary aggregates a student's semester into course results and GPA
type SemesterSummary struct {
	StudentID string          `json:"student_id"`
	Semester  string          `json:"semester,omitempty"`
	Courses   []CourseSummary `json:"courses"`
	GPA       float64         `json:"gpa"` // rounded to 2 decimal places
}

// SemesterSummary builds the per-course breakdown and credit-weighted GPA
// for one student and semester. Final scores are aggregated raw and only
// rounded for display; the GPA uses the unrounded banding input.
func (l *Ledger) SemesterSummary(ctx context.Context, studentID, semester string) (*SemesterSummary, error) {
	if studentID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "student_id is required")
	}

	enrollments, err := l.store.EnrollmentsByStudentSemester(ctx, studentID, semester)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	summary := &SemesterSummary{StudentID: studentID, Semester: semester}
	var results []CourseResult

	for _, enrollment := range enrollments {
		course, err := l.store.CourseByID(ctx, enrollment.CourseID)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, apperr.Internal(err)
		}

		items, err := l.store.GradeItemsByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		grades, err := l.store.GradesByEnrollment(ctx, enrollment.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}

		byItem := make(map[string]model.Grade, len(grades))
		allPublished := len(grades) > 0
		for _, grade := range grades {
			byItem[grade.GradeItemID] = grade
			if grade.Status != model.GradeStatusPublished {
				allPublished = false
			}
		}

		entry := CourseSummary{
			EnrollmentID: enrollment.ID,
			CourseID:     course.ID,
			CourseCode:   course.Code,
			CourseName:   course.Name,
			Credits:      course.Credits,
		}
		for _, item := range items {
			itemScore := ItemScore{
				GradeItemID: item.ID,
				Name:        item.Name,
				Weight:      item.Weight,
			}
			if grade, ok := byItem[item.ID]; ok {
				itemScore.Score = grade.Score
				itemScore.Status = grade.Status
			}
			entry.Items = append(entry.Items, itemScore)
		}

		final := aggregateScore(items, grades)
		entry.FinalScore = RoundTo(final, 1)
		entry.GradePoint = ScoreToGradePoint(final)
		entry.AllPublished = allPublished

		summary.Courses = append(summary.Courses, entry)
		results = append(results, CourseResult{GradePoint: entry.GradePoint, Credits: course.Credits})
	}

	summary.GPA = SemesterGPA(results)
	return summary, nil
}

// ============================================================================
// Course Statistics
// ============================================================================

// CourseStats summarizes the distribution of final scores across a course
type CourseStats struct {
	CourseID string  `json:"course_id"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
}

// CourseStats computes distribution statistics over the final scores of
// every enrollment that has at least one grade row in the course.
func (l *Ledger) CourseStats(ctx context.Context, courseID string) (*CourseStats, error) {
	if courseID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "course_id is required")
	}

	items, err := l.store.GradeItemsByCourse(ctx, courseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	grades, err := l.store.GradesByCourse(ctx, courseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	byEnrollment := make(map[string][]model.Grade)
	for _, grade := range grades {
		byEnrollment[grade.EnrollmentID] = append(byEnrollment[grade.EnrollmentID], grade)
	}

	scores := make([]float64, 0, len(byEnrollment))
	for _, enrollmentGrades := range byEnrollment {
		scores = append(scores, aggregateScore(items, enrollmentGrades))
	}

	result := &CourseStats{CourseID: courseID, Count: len(scores)}
	if len(scores) == 0 {
		return result, nil
	}

	data := stats.Float64Data(scores)
	if result.Mean, err = stats.Mean(data); err != nil {
		return nil, apperr.Internal(err)
	}
	if result.Median, err = stats.Median(data); err != nil {
		return nil, apperr.Internal(err)
	}
	if result.StdDev, err = stats.StandardDeviation(data); err != nil {
		return nil, apperr.Internal(err)
	}
	if result.Max, err = stats.Max(data); err != nil {
		return nil, apperr.Internal(err)
	}
	if result.Min, err = stats.Min(data); err != nil {
		return nil, apperr.Internal(err)
	}

	result.Mean = RoundTo(result.Mean, 2)
	result.Median = RoundTo(result.Median, 2)
	result.StdDev = RoundTo(result.StdDev, 2)
	return result, nil
}
