package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/scoring"
	"github.com/campusworks/seatwise/pkg/db"
)

// RecommendStore defines the database operations needed for course
// recommendations
type RecommendStore interface {
	GetStudent(ctx context.Context, studentID string) (*db.Student, error)
	GetCoursesByIDs(ctx context.Context, courseIDs []string) ([]db.Course, error)
	LatestScoringModel(ctx context.Context) (*db.ScoringModel, error)
}

// Recommendation is one scored course for a student
type Recommendation struct {
	CourseID   string
	CourseCode string
	CourseName string
	Score      float64
	Label      string
}

// RecommendResult contains the scored courses in descending score order
// along with the strategy that produced them
type RecommendResult struct {
	StudentID       string
	Strategy        string
	Recommendations []Recommendation
}

// RecommendCourses scores the given courses for a student and returns them
// best first. Ties are broken by course code so output order is stable.
//
// The scoring strategy is resolved per call: the latest trained model is
// used when one exists, otherwise the heuristic. A stored artifact that
// fails to deserialize is logged and the heuristic is used instead.
func RecommendCourses(
	ctx context.Context,
	store RecommendStore,
	logger *zap.Logger,
	studentID string,
	courseIDs []string,
) (*RecommendResult, error) {
	logger.Debug("Scoring courses for student",
		zap.String("student_id", studentID),
		zap.Int("courses", len(courseIDs)))

	// Step 1: Load the student
	record, err := store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student %s: %w", studentID, err)
	}
	student := toModelStudent(*record)

	// Step 2: Load the candidate courses
	courses, err := store.GetCoursesByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	logger.Debug("Found courses", zap.Int("count", len(courses)))

	// Step 3: Resolve the scoring strategy
	scorer, err := loadScorer(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	// Step 4: Score every course
	recommendations := make([]Recommendation, 0, len(courses))
	for _, courseRecord := range courses {
		course := toModelCourse(courseRecord)
		result := scorer.Score(student, course)

		recommendations = append(recommendations, Recommendation{
			CourseID:   course.ID,
			CourseCode: course.Code,
			CourseName: course.Name,
			Score:      result.Score,
			Label:      result.Label,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].CourseCode < recommendations[j].CourseCode
	})

	logger.Info("Scored courses",
		zap.String("student_id", studentID),
		zap.String("strategy", scorer.StrategyName()),
		zap.Int("count", len(recommendations)))

	return &RecommendResult{
		StudentID:       studentID,
		Strategy:        scorer.StrategyName(),
		Recommendations: recommendations,
	}, nil
}

// ModelStatusStore defines the database operations needed to report on the
// active scoring model
type ModelStatusStore interface {
	LatestScoringModel(ctx context.Context) (*db.ScoringModel, error)
}

// ModelStatus describes the scoring strategy currently in effect
type ModelStatus struct {
	Strategy  string
	ModelID   string
	TrainedAt time.Time
	Samples   int
	CVR2      float64
}

// GetModelStatus reports which scoring strategy recommendations will use and,
// when a trained model exists, its training metadata.
func GetModelStatus(ctx context.Context, store ModelStatusStore, logger *zap.Logger) (*ModelStatus, error) {
	record, err := store.LatestScoringModel(ctx)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Debug("No trained model, heuristic in effect")
			return &ModelStatus{Strategy: scoring.StrategyHeuristic}, nil
		}
		return nil, fmt.Errorf("failed to fetch scoring model: %w", err)
	}

	return &ModelStatus{
		Strategy:  scoring.StrategyRegression,
		ModelID:   record.ID,
		TrainedAt: record.TrainedAt.UTC(),
		Samples:   record.Samples,
		CVR2:      record.CVR2,
	}, nil
}

// loadScorer builds a Scorer backed by the latest trained model, or the
// heuristic when no usable model exists.
func loadScorer(ctx context.Context, store RecommendStore, logger *zap.Logger) (*scoring.Scorer, error) {
	record, err := store.LatestScoringModel(ctx)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Debug("No trained model, using heuristic")
			return scoring.NewScorer(nil), nil
		}
		return nil, fmt.Errorf("failed to fetch scoring model: %w", err)
	}

	trained, err := scoring.UnmarshalModel(record.Artifact)
	if err != nil {
		logger.Warn("Stored model artifact unusable, falling back to heuristic",
			zap.String("model_id", record.ID),
			zap.Error(err))
		return scoring.NewScorer(nil), nil
	}

	logger.Debug("Using trained model", zap.String("model_id", trained.Version))
	return scoring.NewScorer(trained), nil
}
