package analysis

// Decide applies the decision rule to the two positive-class probabilities.
//
// prediction is 1 when the control probability strictly exceeds the
// alzheimer probability, 0 otherwise; exact equality therefore predicts 0.
// confidence always reports the control head's positive probability,
// regardless of which class wins — this asymmetric convention is inherited
// from the trained scoring logic and must not be "fixed" to the winning
// class's probability.
func Decide(controlProb, alzheimerProb float64) (prediction int, confidence float64) {
	if controlProb > alzheimerProb {
		prediction = 1
	}
	return prediction, controlProb
}
