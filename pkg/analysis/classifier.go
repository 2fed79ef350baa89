package analysis

import (
	"fmt"
	"math"
)

// WeightedLogisticClassifier is a pre-trained logistic-regression head
// paired with its per-feature weight vector. The weights are applied
// element-wise to the incoming feature vector before scoring, producing a
// new vector; the shared state is never written to, so one instance serves
// all concurrent requests.
type WeightedLogisticClassifier struct {
	version      string
	coefficients []float64
	intercept    float64
	weights      []float64
}

// NewWeightedLogisticClassifier validates artifact shapes and builds a
// classifier. Coefficients and weights must agree on dimensionality; an
// incompatible artifact is rejected here, at load time, rather than on the
// first request.
func NewWeightedLogisticClassifier(version string, coefficients []float64, intercept float64, weights []float64) (*WeightedLogisticClassifier, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("classifier %s: empty coefficient vector", version)
	}
	if len(weights) != len(coefficients) {
		return nil, fmt.Errorf("classifier %s: weight vector dimension %d does not match coefficient dimension %d",
			version, len(weights), len(coefficients))
	}
	return &WeightedLogisticClassifier{
		version:      version,
		coefficients: coefficients,
		intercept:    intercept,
		weights:      weights,
	}, nil
}

// Dimension returns the feature dimensionality the classifier expects.
func (c *WeightedLogisticClassifier) Dimension() int {
	return len(c.coefficients)
}

// Version returns the artifact version.
func (c *WeightedLogisticClassifier) Version() string {
	return c.version
}

// PositiveProbability applies the weight vector element-wise and returns
// the positive-class probability of the weighted features.
func (c *WeightedLogisticClassifier) PositiveProbability(features []float64) (float64, error) {
	if len(features) != len(c.coefficients) {
		return 0, NewScoringError(
			fmt.Sprintf("feature vector dimension %d does not match model dimension %d", len(features), len(c.coefficients)), nil)
	}

	z := c.intercept
	for i, x := range features {
		z += c.coefficients[i] * (x * c.weights[i])
	}

	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Ensemble holds the two independently trained heads: one framed as "is
// this control speech", the other as "is this impaired speech". The two
// probabilities are never averaged or calibrated against each other; they
// feed the decision rule as-is.
type Ensemble struct {
	Control   BinaryClassifier
	Alzheimer BinaryClassifier
}

// NewEnsemble validates that both heads expect the same feature space.
func NewEnsemble(control, alzheimer BinaryClassifier) (*Ensemble, error) {
	if control == nil || alzheimer == nil {
		return nil, fmt.Errorf("ensemble requires both classifier heads")
	}
	if control.Dimension() != alzheimer.Dimension() {
		return nil, fmt.Errorf("ensemble dimension mismatch: control %d, alzheimer %d",
			control.Dimension(), alzheimer.Dimension())
	}
	return &Ensemble{Control: control, Alzheimer: alzheimer}, nil
}

// Score invokes both heads on the same feature vector. A failure of either
// head fails the request; there is no silent default.
func (e *Ensemble) Score(features []float64) (controlProb, alzheimerProb float64, err error) {
	controlProb, err = e.Control.PositiveProbability(features)
	if err != nil {
		return 0, 0, err
	}
	alzheimerProb, err = e.Alzheimer.PositiveProbability(features)
	if err != nil {
		return 0, 0, err
	}
	return controlProb, alzheimerProb, nil
}
