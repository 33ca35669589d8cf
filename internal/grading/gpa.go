// ============================================================================
// internal/grading/gpa.go
// Score-to-grade-point banding and credit-weighted GPA computation
// ============================================================================

package grading

import "math"

// gradeBand maps a minimum final score to a grade-point value
type gradeBand struct {
	MinScore   float64
	GradePoint float64
}

// gradeBands is evaluated top-down, first match wins. Each band is
// lower-inclusive: 90.0 earns 4.0, 89.9 earns 3.7.
var gradeBands = []gradeBand{
	{90, 4.0},
	{85, 3.7},
	{80, 3.3},
	{75, 3.0},
	{70, 2.7},
	{65, 2.3},
	{60, 2.0},
}

// ScoreToGradePoint converts a final score to its banded grade-point value
func ScoreToGradePoint(score float64) float64 {
	for _, band := range gradeBands {
		if score >= band.MinScore {
			return band.GradePoint
		}
	}
	return 0.0
}

// CourseResult is one course's contribution to a semester GPA
type CourseResult struct {
	GradePoint float64
	Credits    float64
}

// SemesterGPA computes the credit-weighted GPA over a semester's courses,
// rounded to 2 decimal places. A semester with zero total credits (e.g. no
// enrollments) yields 0.0 rather than dividing by zero.
func SemesterGPA(courses []CourseResult) float64 {
	var totalPoints, totalCredits float64
	for _, c := range courses {
		totalPoints += c.GradePoint * c.Credits
		totalCredits += c.Credits
	}

	if totalCredits == 0 {
		return 0.0
	}
	return RoundTo(totalPoints/totalCredits, 2)
}

// RoundTo rounds half away from zero to the given number of decimal places.
// Final scores round to 1 place for display, GPA to 2, and always after
// aggregation so rounding error never compounds across grade items.
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
