package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/seatwise/pkg/core/model"
)

// MinTrainingSamples is the minimum number of historical allocation records
// required before a model can be trained.
const MinTrainingSamples = 5

// ridgeLambda is the L2 regularization strength. A small value keeps the
// normal equations well conditioned on tiny training sets.
const ridgeLambda = 1.0

// InsufficientDataError indicates a training request with too few historical
// samples. Any previously persisted model is left untouched.
type InsufficientDataError struct {
	Samples  int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough training data: need at least %d samples, got %d", e.Required, e.Samples)
}

// Model is a ridge regression over the fixed feature vector, trained on
// historical allocation outcomes. It is serialized as the persisted model
// artifact.
type Model struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`

	// Intercept plus one weight per feature, in FeatureNames order
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`

	Samples int `json:"samples"`

	// CVR2 is the cross-validated R² from training (0 when too few samples
	// for folding)
	CVR2 float64 `json:"cv_r2"`

	// Importances maps feature name to its normalized contribution share
	Importances map[string]float64 `json:"feature_importances"`
}

func (m *Model) Name() string { return StrategyRegression }

// Score predicts a suitability score for the pair, clamped to [0, 100].
func (m *Model) Score(student model.Student, course model.Course) float64 {
	return clampScore(m.Predict(FeatureVector(student, course)))
}

// Predict evaluates the regression on a raw feature vector.
func (m *Model) Predict(features []float64) float64 {
	prediction := m.Intercept
	for i, weight := range m.Weights {
		if i < len(features) {
			prediction += weight * features[i]
		}
	}
	return prediction
}

// Marshal serializes the model into the opaque artifact blob.
func (m *Model) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return data, nil
}

// UnmarshalModel restores a model from a persisted artifact blob.
func UnmarshalModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact: %w", err)
	}
	if len(m.Weights) != len(FeatureNames) {
		return nil, fmt.Errorf("model artifact has %d weights, expected %d", len(m.Weights), len(FeatureNames))
	}
	return &m, nil
}

// TrainRegression fits a ridge regression on the given samples.
//
// It reports the cross-validated R² (k-fold, k = min(5, n)) and per-feature
// importances (absolute weight scaled by feature spread, normalized to sum
// to 1). Fails with InsufficientDataError below MinTrainingSamples.
func TrainRegression(features [][]float64, targets []float64) (*Model, error) {
	n := len(features)
	if n < MinTrainingSamples {
		return nil, &InsufficientDataError{Samples: n, Required: MinTrainingSamples}
	}
	if len(targets) != n {
		return nil, fmt.Errorf("feature/target length mismatch: %d vs %d", n, len(targets))
	}
	for i, row := range features {
		if len(row) != len(FeatureNames) {
			return nil, fmt.Errorf("sample %d has %d features, expected %d", i, len(row), len(FeatureNames))
		}
	}

	// Cross-validated accuracy before the final fit
	cvR2 := crossValidate(features, targets)

	intercept, weights, err := fitRidge(features, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to fit regression: %w", err)
	}

	return &Model{
		Version:     uuid.New().String(),
		TrainedAt:   time.Now().UTC(),
		Intercept:   intercept,
		Weights:     weights,
		Samples:     n,
		CVR2:        cvR2,
		Importances: featureImportances(features, weights),
	}, nil
}

// fitRidge solves the regularized normal equations (XᵀX + λI)w = Xᵀy with an
// unpenalized intercept column.
func fitRidge(features [][]float64, targets []float64) (float64, []float64, error) {
	dims := len(FeatureNames) + 1 // intercept first

	// Build XᵀX and Xᵀy over the augmented design matrix
	xtx := make([][]float64, dims)
	for i := range xtx {
		xtx[i] = make([]float64, dims)
	}
	xty := make([]float64, dims)

	row := make([]float64, dims)
	for s, sample := range features {
		row[0] = 1
		copy(row[1:], sample)
		for i := 0; i < dims; i++ {
			for j := 0; j < dims; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * targets[s]
		}
	}

	// Regularize the feature weights only, not the intercept
	for i := 1; i < dims; i++ {
		xtx[i][i] += ridgeLambda
	}

	solution, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return 0, nil, err
	}
	return solution[0], solution[1:], nil
}

// solveLinearSystem performs Gaussian elimination with partial pivoting.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	// Work on copies; callers may reuse their matrices
	m := make([][]float64, n)
	for i := range a {
		m[i] = append([]float64(nil), a[i]...)
		m[i] = append(m[i], b[i])
	}

	for col := 0; col < n; col++ {
		// Pivot on the largest absolute value in the column
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	// Back substitution
	solution := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * solution[j]
		}
		solution[i] = sum / m[i][i]
	}
	return solution, nil
}

// crossValidate runs k-fold cross-validation (k = min(5, n)) and returns the
// mean R² across folds. Folds are contiguous so the result is deterministic.
func crossValidate(features [][]float64, targets []float64) float64 {
	n := len(features)
	k := 5
	if n < k {
		k = n
	}
	if k < 2 {
		return 0
	}

	var total float64
	folds := 0
	for fold := 0; fold < k; fold++ {
		start := fold * n / k
		end := (fold + 1) * n / k
		if end <= start {
			continue
		}

		trainX := make([][]float64, 0, n-(end-start))
		trainY := make([]float64, 0, n-(end-start))
		for i := 0; i < n; i++ {
			if i >= start && i < end {
				continue
			}
			trainX = append(trainX, features[i])
			trainY = append(trainY, targets[i])
		}
		if len(trainX) == 0 {
			continue
		}

		intercept, weights, err := fitRidge(trainX, trainY)
		if err != nil {
			continue
		}
		heldOut := &Model{Intercept: intercept, Weights: weights}

		predictions := make([]float64, 0, end-start)
		actuals := make([]float64, 0, end-start)
		for i := start; i < end; i++ {
			predictions = append(predictions, heldOut.Predict(features[i]))
			actuals = append(actuals, targets[i])
		}
		total += rSquared(actuals, predictions)
		folds++
	}

	if folds == 0 {
		return 0
	}
	return total / float64(folds)
}

// rSquared computes the coefficient of determination. A constant actual
// series yields 0 rather than dividing by zero.
func rSquared(actuals, predictions []float64) float64 {
	var mean float64
	for _, y := range actuals {
		mean += y
	}
	mean /= float64(len(actuals))

	var ssRes, ssTot float64
	for i, y := range actuals {
		ssRes += (y - predictions[i]) * (y - predictions[i])
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// featureImportances estimates each feature's contribution as the absolute
// weight scaled by the feature's standard deviation, normalized to sum to 1.
func featureImportances(features [][]float64, weights []float64) map[string]float64 {
	n := float64(len(features))
	importances := make(map[string]float64, len(FeatureNames))

	var total float64
	raw := make([]float64, len(FeatureNames))
	for j := range FeatureNames {
		var mean float64
		for _, row := range features {
			mean += row[j]
		}
		mean /= n

		var variance float64
		for _, row := range features {
			variance += (row[j] - mean) * (row[j] - mean)
		}
		variance /= n

		raw[j] = math.Abs(weights[j]) * math.Sqrt(variance)
		total += raw[j]
	}

	for j, name := range FeatureNames {
		if total > 0 {
			importances[name] = raw[j] / total
		} else {
			importances[name] = 0
		}
	}
	return importances
}
