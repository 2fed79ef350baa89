package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVectorizer(t *testing.T) *TFIDFVectorizer {
	t.Helper()
	v, err := NewTFIDFVectorizer("test-v1",
		map[string]int{"noun": 0, "verb": 1, "determiner": 2},
		[]float64{1.0, 2.0, 3.0})
	require.NoError(t, err)
	return v
}

func TestNewTFIDFVectorizer(t *testing.T) {
	t.Run("RejectsEmptyVocabulary", func(t *testing.T) {
		_, err := NewTFIDFVectorizer("v1", map[string]int{}, nil)
		assert.Error(t, err)
	})

	t.Run("RejectsShapeMismatch", func(t *testing.T) {
		_, err := NewTFIDFVectorizer("v1",
			map[string]int{"noun": 0, "verb": 1},
			[]float64{1.0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shape mismatch")
	})

	t.Run("RejectsOutOfRangeIndex", func(t *testing.T) {
		_, err := NewTFIDFVectorizer("v1",
			map[string]int{"noun": 3},
			[]float64{1.0})
		assert.Error(t, err)
	})

	t.Run("RejectsDuplicateIndex", func(t *testing.T) {
		_, err := NewTFIDFVectorizer("v1",
			map[string]int{"noun": 0, "verb": 0},
			[]float64{1.0, 2.0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple terms")
	})

	t.Run("ReportsDimensionAndVersion", func(t *testing.T) {
		v := newTestVectorizer(t)
		assert.Equal(t, 3, v.Dimension())
		assert.Equal(t, "test-v1", v.Version())
	})
}

func TestVectorize(t *testing.T) {
	t.Run("WeightsTermFrequencyByIDF", func(t *testing.T) {
		v := newTestVectorizer(t)

		vec, err := v.Vectorize("noun verb verb")
		require.NoError(t, err)
		require.Len(t, vec, 3)

		// Raw weights 1.0 and 2*2.0 before normalization.
		norm := math.Sqrt(1.0 + 16.0)
		assert.InDelta(t, 1.0/norm, vec[0], 1e-12)
		assert.InDelta(t, 4.0/norm, vec[1], 1e-12)
		assert.Equal(t, 0.0, vec[2])
	})

	t.Run("OutputIsL2Normalized", func(t *testing.T) {
		v := newTestVectorizer(t)

		vec, err := v.Vectorize("noun determiner verb noun")
		require.NoError(t, err)

		var norm float64
		for _, x := range vec {
			norm += x * x
		}
		assert.InDelta(t, 1.0, norm, 1e-12)
	})

	t.Run("PunctuationSplitsTokens", func(t *testing.T) {
		v := newTestVectorizer(t)

		plain, err := v.Vectorize("noun verb")
		require.NoError(t, err)
		punctuated, err := v.Vectorize("noun,verb")
		require.NoError(t, err)

		assert.Equal(t, plain, punctuated)
	})

	t.Run("UnicodePunctuationSplitsTokens", func(t *testing.T) {
		v := newTestVectorizer(t)

		plain, err := v.Vectorize("noun verb")
		require.NoError(t, err)
		punctuated, err := v.Vectorize("noun“verb”")
		require.NoError(t, err)

		assert.Equal(t, plain, punctuated)
	})

	t.Run("UnknownTermsAreIgnored", func(t *testing.T) {
		v := newTestVectorizer(t)

		withUnknown, err := v.Vectorize("noun mystery verb")
		require.NoError(t, err)
		without, err := v.Vectorize("noun verb")
		require.NoError(t, err)

		assert.Equal(t, without, withUnknown)
	})

	t.Run("NoVocabularyOverlapYieldsZeroVector", func(t *testing.T) {
		v := newTestVectorizer(t)

		vec, err := v.Vectorize("completely unknown words")
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0}, vec)
	})

	t.Run("EmptyTextFails", func(t *testing.T) {
		v := newTestVectorizer(t)

		_, err := v.Vectorize("   ")
		require.Error(t, err)

		var analysisErr *Error
		require.True(t, errors.As(err, &analysisErr))
		assert.Equal(t, ErrCodeVectorization, analysisErr.Code)
	})
}
