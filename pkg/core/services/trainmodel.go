package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/model"
	"github.com/campusworks/seatwise/pkg/core/scoring"
	"github.com/campusworks/seatwise/pkg/db"
)

// TrainModelStore defines the database operations needed for training the
// scoring model
type TrainModelStore interface {
	GetAllocations(ctx context.Context) ([]db.Allocation, error)
	GetStudents(ctx context.Context) ([]db.Student, error)
	GetCourses(ctx context.Context) ([]db.Course, error)
	SaveScoringModel(ctx context.Context, scoringModel db.ScoringModel) error
}

// TrainModelResult reports the training metrics
type TrainModelResult struct {
	ModelID     string
	Samples     int
	CVR2        float64
	Importances map[string]float64
}

// TrainModel fits the suitability regression on historical allocation
// outcomes and persists the artifact.
//
// Each granted allocation becomes a training sample whose target score is
// derived from the preference rank it was granted at; waitlisted and
// unallocated outcomes contribute only when they carry a course reference.
// Training below the sample threshold fails with
// scoring.InsufficientDataError and leaves any existing artifact untouched.
func TrainModel(ctx context.Context, store TrainModelStore, logger *zap.Logger) (*TrainModelResult, error) {
	logger.Debug("Starting model training")

	// Step 1: Collect historical allocations
	allocations, err := store.GetAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations: %w", err)
	}
	logger.Debug("Found historical allocations", zap.Int("count", len(allocations)))

	// Step 2: Load students and courses for feature extraction
	students, err := store.GetStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}
	courses, err := store.GetCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}

	studentsByID := make(map[string]model.Student, len(students))
	for _, record := range students {
		studentsByID[record.ID] = toModelStudent(record)
	}
	coursesByID := make(map[string]model.Course, len(courses))
	for _, record := range courses {
		coursesByID[record.ID] = toModelCourse(record)
	}

	// Step 3: Build the training set
	features, targets := buildTrainingSet(allocations, studentsByID, coursesByID)
	logger.Debug("Built training set", zap.Int("samples", len(features)))

	// Step 4: Fit the regression
	trained, err := scoring.TrainRegression(features, targets)
	if err != nil {
		var insufficientErr *scoring.InsufficientDataError
		if errors.As(err, &insufficientErr) {
			logger.Warn("Not enough training data",
				zap.Int("samples", insufficientErr.Samples),
				zap.Int("required", insufficientErr.Required))
			return nil, err
		}
		return nil, fmt.Errorf("training failed: %w", err)
	}

	logger.Info("Model trained",
		zap.String("model_id", trained.Version),
		zap.Int("samples", trained.Samples),
		zap.Float64("cv_r2", trained.CVR2))

	// Step 5: Persist the artifact
	artifact, err := trained.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize model: %w", err)
	}

	err = store.SaveScoringModel(ctx, db.ScoringModel{
		ID:        trained.Version,
		TrainedAt: trained.TrainedAt,
		Samples:   trained.Samples,
		CVR2:      trained.CVR2,
		Artifact:  artifact,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist model artifact: %w", err)
	}
	logger.Info("Model artifact saved", zap.String("model_id", trained.Version))

	return &TrainModelResult{
		ModelID:     trained.Version,
		Samples:     trained.Samples,
		CVR2:        trained.CVR2,
		Importances: trained.Importances,
	}, nil
}

// buildTrainingSet pairs each historical allocation with its student and
// course attributes. Rows whose student or course can no longer be resolved
// are skipped.
func buildTrainingSet(
	allocations []db.Allocation,
	studentsByID map[string]model.Student,
	coursesByID map[string]model.Course,
) ([][]float64, []float64) {
	var features [][]float64
	var targets []float64

	for _, allocation := range allocations {
		student, ok := studentsByID[allocation.StudentID]
		if !ok {
			continue
		}
		course, ok := coursesByID[allocation.CourseID]
		if !ok {
			continue
		}

		features = append(features, scoring.FeatureVector(student, course))
		targets = append(targets, scoring.TargetScore(
			model.AllocationStatus(allocation.Status),
			allocation.PreferenceRank,
		))
	}

	return features, targets
}
