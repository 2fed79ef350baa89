package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeightedLogisticClassifier(t *testing.T) {
	t.Run("RejectsEmptyCoefficients", func(t *testing.T) {
		_, err := NewWeightedLogisticClassifier("v1", nil, 0, nil)
		assert.Error(t, err)
	})

	t.Run("RejectsWeightDimensionMismatch", func(t *testing.T) {
		_, err := NewWeightedLogisticClassifier("v1",
			[]float64{0.5, -0.5}, 0, []float64{1.0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not match coefficient dimension")
	})

	t.Run("ReportsDimensionAndVersion", func(t *testing.T) {
		c, err := NewWeightedLogisticClassifier("v2",
			[]float64{0.5, -0.5}, 0.1, []float64{1.0, 1.0})
		require.NoError(t, err)
		assert.Equal(t, 2, c.Dimension())
		assert.Equal(t, "v2", c.Version())
	})
}

func TestPositiveProbability(t *testing.T) {
	t.Run("ZeroLogitIsHalf", func(t *testing.T) {
		c, err := NewWeightedLogisticClassifier("v1",
			[]float64{1.0, 1.0}, 0, []float64{1.0, 1.0})
		require.NoError(t, err)

		p, err := c.PositiveProbability([]float64{0, 0})
		require.NoError(t, err)
		assert.Equal(t, 0.5, p)
	})

	t.Run("AppliesFeatureWeightsBeforeScoring", func(t *testing.T) {
		c, err := NewWeightedLogisticClassifier("v1",
			[]float64{1.0, 1.0}, 0, []float64{2.0, 0.0})
		require.NoError(t, err)

		// z = 1*(1*2) + 1*(1*0) = 2
		p, err := c.PositiveProbability([]float64{1.0, 1.0})
		require.NoError(t, err)
		assert.InDelta(t, 1.0/(1.0+math.Exp(-2.0)), p, 1e-12)
	})

	t.Run("InterceptShiftsLogit", func(t *testing.T) {
		c, err := NewWeightedLogisticClassifier("v1",
			[]float64{1.0}, -1.5, []float64{1.0})
		require.NoError(t, err)

		p, err := c.PositiveProbability([]float64{0})
		require.NoError(t, err)
		assert.InDelta(t, 1.0/(1.0+math.Exp(1.5)), p, 1e-12)
	})

	t.Run("ProbabilityStaysInUnitInterval", func(t *testing.T) {
		c, err := NewWeightedLogisticClassifier("v1",
			[]float64{100.0}, 0, []float64{1.0})
		require.NoError(t, err)

		high, err := c.PositiveProbability([]float64{10})
		require.NoError(t, err)
		low, err := c.PositiveProbability([]float64{-10})
		require.NoError(t, err)

		assert.LessOrEqual(t, high, 1.0)
		assert.GreaterOrEqual(t, low, 0.0)
	})

	t.Run("DimensionMismatchIsScoringError", func(t *testing.T) {
		c, err := NewWeightedLogisticClassifier("v1",
			[]float64{1.0, 1.0}, 0, []float64{1.0, 1.0})
		require.NoError(t, err)

		_, err = c.PositiveProbability([]float64{1.0})
		require.Error(t, err)

		var analysisErr *Error
		require.True(t, errors.As(err, &analysisErr))
		assert.Equal(t, ErrCodeScoring, analysisErr.Code)
	})
}

type failingClassifier struct {
	dim int
}

func (f *failingClassifier) PositiveProbability([]float64) (float64, error) {
	return 0, NewScoringError("induced failure", nil)
}
func (f *failingClassifier) Dimension() int  { return f.dim }
func (f *failingClassifier) Version() string { return "failing" }

func TestEnsemble(t *testing.T) {
	newHead := func(t *testing.T, version string, coeffs []float64) *WeightedLogisticClassifier {
		t.Helper()
		weights := make([]float64, len(coeffs))
		for i := range weights {
			weights[i] = 1.0
		}
		c, err := NewWeightedLogisticClassifier(version, coeffs, 0, weights)
		require.NoError(t, err)
		return c
	}

	t.Run("RequiresBothHeads", func(t *testing.T) {
		_, err := NewEnsemble(newHead(t, "control", []float64{1}), nil)
		assert.Error(t, err)

		_, err = NewEnsemble(nil, newHead(t, "alz", []float64{1}))
		assert.Error(t, err)
	})

	t.Run("RejectsDimensionMismatch", func(t *testing.T) {
		_, err := NewEnsemble(
			newHead(t, "control", []float64{1, 1}),
			newHead(t, "alz", []float64{1}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension mismatch")
	})

	t.Run("ScoresBothHeadsIndependently", func(t *testing.T) {
		e, err := NewEnsemble(
			newHead(t, "control", []float64{2.0}),
			newHead(t, "alz", []float64{-2.0}))
		require.NoError(t, err)

		controlProb, alzProb, err := e.Score([]float64{1.0})
		require.NoError(t, err)

		assert.InDelta(t, 1.0/(1.0+math.Exp(-2.0)), controlProb, 1e-12)
		assert.InDelta(t, 1.0/(1.0+math.Exp(2.0)), alzProb, 1e-12)
	})

	t.Run("HeadFailureFailsTheScore", func(t *testing.T) {
		e, err := NewEnsemble(newHead(t, "control", []float64{1}), &failingClassifier{dim: 1})
		require.NoError(t, err)

		_, _, err = e.Score([]float64{1.0})
		require.Error(t, err)

		var analysisErr *Error
		require.True(t, errors.As(err, &analysisErr))
		assert.Equal(t, ErrCodeScoring, analysisErr.Code)
	})
}
