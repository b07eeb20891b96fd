package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusworks/seatwise/pkg/core/model"
)

func TestHeuristic_TopPerformerSameDepartment(t *testing.T) {
	// Top CGPA, full tag overlap, same department: must be Highly Recommended
	student := model.Student{
		ID:           "s1",
		DepartmentID: "cs",
		CGPA:         10,
		InterestTags: []string{"programming", "algorithms"},
	}
	course := model.Course{
		ID:              "c1",
		DepartmentID:    "cs",
		DifficultyLevel: 7,
		Tags:            []string{"programming", "algorithms"},
	}

	result := NewScorer(nil).Score(student, course)

	assert.GreaterOrEqual(t, result.Score, 75.0)
	assert.Equal(t, LabelHighlyRecommended, result.Label)
	assert.Equal(t, "heuristic", result.Strategy)
}

func TestHeuristic_PoorFitIsChallenging(t *testing.T) {
	// Zero tag overlap, different department, large difficulty mismatch
	student := model.Student{
		ID:           "s1",
		DepartmentID: "history",
		CGPA:         9.8,
		InterestTags: []string{"archives", "museums"},
	}
	course := model.Course{
		ID:              "c1",
		DepartmentID:    "cs",
		DifficultyLevel: 1,
		Tags:            []string{"programming", "algorithms"},
	}

	result := NewScorer(nil).Score(student, course)

	assert.Less(t, result.Score, 50.0)
	assert.Equal(t, LabelChallenging, result.Label)
}

func TestHeuristic_MissingDataDegradesGracefully(t *testing.T) {
	// No academic history, no interests: still a score, never an error
	student := model.Student{ID: "s1"}
	course := model.Course{ID: "c1", DepartmentID: "cs", DifficultyLevel: 5}

	score := Heuristic{}.Score(student, course)

	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestHeuristic_ScoreClampedTo100(t *testing.T) {
	student := model.Student{
		ID:              "s1",
		DepartmentID:    "cs",
		CGPA:            10,
		QualifyingMarks: 100,
		InterestTags:    []string{"a"},
	}
	course := model.Course{
		ID:              "c1",
		DepartmentID:    "cs",
		DifficultyLevel: 10,
		Tags:            []string{"a"},
	}

	score := Heuristic{}.Score(student, course)
	assert.LessOrEqual(t, score, 100.0)
}

func TestNormalizedMerit_PrefersCGPA(t *testing.T) {
	assert.Equal(t, 85.0, NormalizedMerit(model.Student{CGPA: 8.5, QualifyingMarks: 40}))
	assert.Equal(t, 40.0, NormalizedMerit(model.Student{QualifyingMarks: 40}))
	assert.Equal(t, 62.5, NormalizedMerit(model.Student{AvgMarks: 62.5}))
	assert.Equal(t, 0.0, NormalizedMerit(model.Student{}))
}

func TestTagOverlap(t *testing.T) {
	tests := []struct {
		name     string
		student  []string
		course   []string
		expected float64
	}{
		{"full overlap", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"half overlap", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"no overlap", []string{"a"}, []string{"b"}, 0.0},
		{"empty student tags", nil, []string{"a"}, 0.0},
		{"both empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TagOverlap(tt.student, tt.course), 1e-9)
		})
	}
}

func TestLabelBoundaries(t *testing.T) {
	assert.Equal(t, LabelHighlyRecommended, Label(75))
	assert.Equal(t, LabelGoodFit, Label(74.9))
	assert.Equal(t, LabelGoodFit, Label(50))
	assert.Equal(t, LabelChallenging, Label(49.9))
}
