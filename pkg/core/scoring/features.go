package scoring

import "github.com/campusworks/seatwise/pkg/core/model"

// FeatureNames lists the model features in vector order
var FeatureNames = []string{
	"cgpa",
	"avg_marks",
	"qualifying_marks",
	"same_department",
	"tag_overlap",
	"difficulty_level",
	"credits",
}

const (
	// DefaultDifficulty is assumed when a course has no difficulty set
	DefaultDifficulty = 5

	// DefaultCredits is assumed when a course has no credits set
	DefaultCredits = 3
)

// FeatureVector builds the numeric feature vector for a student/course pair.
// Missing attributes contribute their zero value rather than failing.
func FeatureVector(student model.Student, course model.Course) []float64 {
	sameDept := 0.0
	if student.DepartmentID != "" && student.DepartmentID == course.DepartmentID {
		sameDept = 1.0
	}

	return []float64{
		student.CGPA,
		student.AvgMarks,
		student.QualifyingMarks,
		sameDept,
		TagOverlap(student.InterestTags, course.Tags),
		float64(difficultyOrDefault(course)),
		float64(creditsOrDefault(course)),
	}
}

// TagOverlap computes the Jaccard similarity between two tag sets (0 to 1).
// Empty sets yield zero overlap.
func TagOverlap(studentTags, courseTags []string) float64 {
	setA := make(map[string]bool, len(studentTags))
	for _, tag := range studentTags {
		setA[tag] = true
	}
	setB := make(map[string]bool, len(courseTags))
	for _, tag := range courseTags {
		setB[tag] = true
	}

	intersection := 0
	for tag := range setA {
		if setB[tag] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func difficultyOrDefault(course model.Course) int {
	if course.DifficultyLevel < 1 || course.DifficultyLevel > 10 {
		return DefaultDifficulty
	}
	return course.DifficultyLevel
}

func creditsOrDefault(course model.Course) int {
	if course.Credits <= 0 {
		return DefaultCredits
	}
	return course.Credits
}

// TargetScore maps a historical allocation outcome to a training target.
// Earlier preference ranks mean a better fit and a higher score.
func TargetScore(status model.AllocationStatus, rank int) float64 {
	switch status {
	case model.StatusAllocated:
		if rank <= 1 {
			return 100
		}
		switch rank {
		case 2:
			return 85
		case 3:
			return 70
		default:
			return max(40, 100-float64(rank)*15)
		}
	case model.StatusWaitlisted:
		return 40
	default:
		return 20
	}
}
