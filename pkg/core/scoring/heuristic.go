package scoring

import (
	"math"

	"github.com/campusworks/seatwise/pkg/core/model"
)

// Heuristic weights. They sum to 1 so the final score stays on the 0-100
// scale of the individual components.
const (
	WeightAcademic        = 0.40
	WeightDeptAffinity    = 0.20
	WeightTagOverlap      = 0.25
	WeightDifficultyMatch = 0.15

	// Department affinity component values
	deptAffinitySame  = 100.0
	deptAffinityOther = 40.0
)

// Heuristic scores a student/course pair with a weighted sum of academic
// performance, department affinity, interest-tag overlap and difficulty
// match. It needs no trained artifact and is the fallback strategy when no
// model has been fit.
type Heuristic struct{}

func (Heuristic) Name() string { return StrategyHeuristic }

// Score returns a suitability score clamped to [0, 100]. Missing student
// data (no academic history, no interests) contributes neutrally instead of
// failing the whole score.
func (Heuristic) Score(student model.Student, course model.Course) float64 {
	academic := NormalizedMerit(student)

	affinity := deptAffinityOther
	if student.DepartmentID != "" && student.DepartmentID == course.DepartmentID {
		affinity = deptAffinitySame
	}

	tagScore := TagOverlap(student.InterestTags, course.Tags) * 100

	difficultyScore := difficultyMatch(academic, difficultyOrDefault(course))

	score := WeightAcademic*academic +
		WeightDeptAffinity*affinity +
		WeightTagOverlap*tagScore +
		WeightDifficultyMatch*difficultyScore

	return clampScore(score)
}

// NormalizedMerit maps the student's merit metric onto a 0-100 scale.
// CGPA (0-10) is preferred when present; qualifying marks and average
// subject marks are already percentages. A student with no academic data
// scores zero here.
func NormalizedMerit(student model.Student) float64 {
	switch {
	case student.CGPA > 0:
		return clampScore(student.CGPA * 10)
	case student.QualifyingMarks > 0:
		return clampScore(student.QualifyingMarks)
	case student.AvgMarks > 0:
		return clampScore(student.AvgMarks)
	}
	return 0
}

// difficultyMatch scores how well the student's estimated ability (academic
// score mapped to the 0-10 difficulty scale) matches the course difficulty:
// inverse distance, scaled to 0-100.
func difficultyMatch(academic float64, difficulty int) float64 {
	ability := academic / 10
	distance := math.Abs(ability - float64(difficulty))
	match := (1 - distance/9) * 100
	if match < 0 {
		return 0
	}
	return match
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
