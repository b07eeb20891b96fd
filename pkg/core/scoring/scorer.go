package scoring

import "github.com/campusworks/seatwise/pkg/core/model"

// Recommendation labels shared by both strategies
const (
	LabelHighlyRecommended = "Highly Recommended"
	LabelGoodFit           = "Good Fit"
	LabelChallenging       = "Challenging"
)

// Strategy names as reported by Strategy.Name
const (
	StrategyHeuristic  = "heuristic"
	StrategyRegression = "regression"
)

// Strategy scores a student/course pair on a 0-100 scale. Implementations
// must be pure reads: no mutation of student, course or allocation state,
// safe to call repeatedly and concurrently.
type Strategy interface {
	Name() string
	Score(student model.Student, course model.Course) float64
}

// Result is a labeled suitability score
type Result struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`

	// Strategy names which scorer produced the result ("regression" or
	// "heuristic")
	Strategy string `json:"strategy"`
}

// Scorer wraps the active scoring strategy. Construct one per call site with
// NewScorer, passing the latest persisted model (or nil); the fallback to
// the heuristic is automatic and invisible to callers.
type Scorer struct {
	strategy Strategy
}

// NewScorer selects the trained model when one is available, falling back to
// the weighted heuristic otherwise.
func NewScorer(trained *Model) *Scorer {
	if trained != nil {
		return &Scorer{strategy: trained}
	}
	return &Scorer{strategy: Heuristic{}}
}

// StrategyName reports which strategy the scorer resolved to.
func (s *Scorer) StrategyName() string {
	return s.strategy.Name()
}

// Score computes the labeled suitability score for the pair.
func (s *Scorer) Score(student model.Student, course model.Course) Result {
	score := s.strategy.Score(student, course)
	return Result{
		Score:    score,
		Label:    Label(score),
		Strategy: s.strategy.Name(),
	}
}

// Label maps a score to its recommendation label.
func Label(score float64) string {
	switch {
	case score >= 75:
		return LabelHighlyRecommended
	case score >= 50:
		return LabelGoodFit
	default:
		return LabelChallenging
	}
}
