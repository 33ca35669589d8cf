package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreToGradePoint(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		want  float64
	}{
		{"top of scale", 100, 4.0},
		{"exact band boundary 90", 90.0, 4.0},
		{"just below 90", 89.9, 3.7},
		{"exact band boundary 85", 85.0, 3.7},
		{"exact band boundary 80", 80.0, 3.3},
		{"exact band boundary 75", 75.0, 3.0},
		{"exact band boundary 70", 70.0, 2.7},
		{"exact band boundary 65", 65.0, 2.3},
		{"exact band boundary 60", 60.0, 2.0},
		{"just below passing", 59.9, 0.0},
		{"zero", 0, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScoreToGradePoint(tc.score))
		})
	}
}

func TestSemesterGPA(t *testing.T) {
	t.Run("credit weighted average", func(t *testing.T) {
		results := []CourseResult{
			{GradePoint: 4.0, Credits: 3},
			{GradePoint: 3.0, Credits: 3},
		}
		assert.Equal(t, 3.5, SemesterGPA(results))
	})

	t.Run("rounds to two decimal places", func(t *testing.T) {
		results := []CourseResult{
			{GradePoint: 4.0, Credits: 1},
			{GradePoint: 3.0, Credits: 2},
		}
		// (4 + 6) / 3 = 3.333...
		assert.Equal(t, 3.33, SemesterGPA(results))
	})

	t.Run("unequal credits pull toward heavier course", func(t *testing.T) {
		results := []CourseResult{
			{GradePoint: 4.0, Credits: 5},
			{GradePoint: 2.0, Credits: 1},
		}
		// (20 + 2) / 6 = 3.666...
		assert.Equal(t, 3.67, SemesterGPA(results))
	})

	t.Run("zero total credits yields zero, not NaN", func(t *testing.T) {
		assert.Equal(t, 0.0, SemesterGPA(nil))
		assert.Equal(t, 0.0, SemesterGPA([]CourseResult{{GradePoint: 4.0, Credits: 0}}))
	})
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 86.7, RoundTo(86.65, 1))
	assert.Equal(t, 3.33, RoundTo(3.3333, 2))
	assert.Equal(t, 3.34, RoundTo(3.335, 2))
	assert.Equal(t, 0.0, RoundTo(0, 2))
}
