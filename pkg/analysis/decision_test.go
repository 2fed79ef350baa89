package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	t.Run("ControlGreaterPredictsOne", func(t *testing.T) {
		prediction, confidence := Decide(0.7, 0.3)
		assert.Equal(t, 1, prediction)
		assert.Equal(t, 0.7, confidence)
	})

	t.Run("AlzheimerGreaterPredictsZero", func(t *testing.T) {
		prediction, confidence := Decide(0.2, 0.9)
		assert.Equal(t, 0, prediction)
		assert.Equal(t, 0.2, confidence)
	})

	t.Run("ExactTiePredictsZero", func(t *testing.T) {
		prediction, _ := Decide(0.5, 0.5)
		assert.Equal(t, 0, prediction)
	})

	t.Run("ConfidenceIsAlwaysControlProbability", func(t *testing.T) {
		// Even when the condition class wins, confidence reports the
		// control head's probability.
		_, confidence := Decide(0.1, 0.9)
		assert.Equal(t, 0.1, confidence)

		_, confidence = Decide(0.85, 0.1)
		assert.Equal(t, 0.85, confidence)
	})
}
