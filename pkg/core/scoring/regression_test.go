package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/seatwise/pkg/core/model"
)

// trainingSample builds a feature row with the given tag overlap and
// difficulty; remaining features are held constant
func trainingSample(cgpa, overlap float64, difficulty float64) []float64 {
	return []float64{cgpa, cgpa * 10, cgpa * 10, 1, overlap, difficulty, 3}
}

func TestTrainRegression_InsufficientData(t *testing.T) {
	features := [][]float64{
		trainingSample(8, 0.5, 5),
		trainingSample(7, 0.2, 6),
	}
	targets := []float64{85, 70}

	_, err := TrainRegression(features, targets)
	require.Error(t, err)

	var insufficientErr *InsufficientDataError
	require.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, 2, insufficientErr.Samples)
	assert.Equal(t, MinTrainingSamples, insufficientErr.Required)
}

func TestTrainRegression_LearnsOverlapSignal(t *testing.T) {
	// Targets increase with tag overlap; the fitted model must rank a
	// high-overlap pair above a low-overlap one
	features := [][]float64{
		trainingSample(8, 1.0, 5),
		trainingSample(8, 0.8, 5),
		trainingSample(8, 0.6, 5),
		trainingSample(8, 0.4, 5),
		trainingSample(8, 0.2, 5),
		trainingSample(8, 0.0, 5),
	}
	targets := []float64{100, 85, 70, 55, 40, 20}

	trained, err := TrainRegression(features, targets)
	require.NoError(t, err)
	require.Len(t, trained.Weights, len(FeatureNames))

	high := trained.Predict(trainingSample(8, 1.0, 5))
	low := trained.Predict(trainingSample(8, 0.0, 5))
	assert.Greater(t, high, low)

	assert.Equal(t, 6, trained.Samples)
	assert.NotEmpty(t, trained.Version)
	assert.False(t, trained.TrainedAt.IsZero())
}

func TestTrainRegression_ImportancesNormalized(t *testing.T) {
	features := [][]float64{
		trainingSample(9, 1.0, 4),
		trainingSample(8, 0.7, 5),
		trainingSample(7, 0.5, 6),
		trainingSample(6, 0.3, 7),
		trainingSample(5, 0.0, 8),
	}
	targets := []float64{95, 80, 65, 50, 30}

	trained, err := TrainRegression(features, targets)
	require.NoError(t, err)
	require.Len(t, trained.Importances, len(FeatureNames))

	var sum float64
	for _, importance := range trained.Importances {
		assert.GreaterOrEqual(t, importance, 0.0)
		sum += importance
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Constant features carry no signal
	assert.InDelta(t, 0.0, trained.Importances["credits"], 1e-9)
	assert.InDelta(t, 0.0, trained.Importances["same_department"], 1e-9)
}

func TestModel_ArtifactRoundTrip(t *testing.T) {
	features := [][]float64{
		trainingSample(9, 1.0, 4),
		trainingSample(8, 0.7, 5),
		trainingSample(7, 0.5, 6),
		trainingSample(6, 0.3, 7),
		trainingSample(5, 0.0, 8),
	}
	targets := []float64{95, 80, 65, 50, 30}

	trained, err := TrainRegression(features, targets)
	require.NoError(t, err)

	blob, err := trained.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalModel(blob)
	require.NoError(t, err)
	assert.Equal(t, trained.Version, restored.Version)

	probe := trainingSample(8, 0.6, 5)
	assert.InDelta(t, trained.Predict(probe), restored.Predict(probe), 1e-9)
}

func TestUnmarshalModel_RejectsWrongWidth(t *testing.T) {
	_, err := UnmarshalModel([]byte(`{"version":"v1","intercept":1,"weights":[1,2]}`))
	require.Error(t, err)
}

func TestScorer_UsesModelWhenPresent(t *testing.T) {
	student := model.Student{ID: "s1", DepartmentID: "cs", CGPA: 8}
	course := model.Course{ID: "c1", DepartmentID: "cs", DifficultyLevel: 5, Credits: 3}

	trained := &Model{
		Version:   "v1",
		Intercept: 50,
		Weights:   make([]float64, len(FeatureNames)),
	}

	withModel := NewScorer(trained).Score(student, course)
	assert.Equal(t, "regression", withModel.Strategy)
	assert.Equal(t, 50.0, withModel.Score)

	fallback := NewScorer(nil).Score(student, course)
	assert.Equal(t, "heuristic", fallback.Strategy)
}

func TestModel_ScoreClamped(t *testing.T) {
	trained := &Model{
		Intercept: 500,
		Weights:   make([]float64, len(FeatureNames)),
	}
	score := trained.Score(model.Student{}, model.Course{})
	assert.Equal(t, 100.0, score)
}

func TestTargetScore(t *testing.T) {
	tests := []struct {
		status   model.AllocationStatus
		rank     int
		expected float64
	}{
		{model.StatusAllocated, 1, 100},
		{model.StatusAllocated, 2, 85},
		{model.StatusAllocated, 3, 70},
		{model.StatusAllocated, 4, 40},
		{model.StatusAllocated, 10, 40},
		{model.StatusWaitlisted, 0, 40},
		{model.StatusNotAllocated, 0, 20},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TargetScore(tt.status, tt.rank), "status %s rank %d", tt.status, tt.rank)
	}
}
