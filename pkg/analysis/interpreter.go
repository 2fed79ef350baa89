package analysis

import (
	"fmt"
	"strings"
)

const conditionNarrative = `The linguistic analysis suggests patterns consistent with cognitive decline associated with Alzheimer's disease.

Key findings:
• Model confidence: %s
• Alzheimer's probability: %s
• Control probability: %s
• Risk assessment: %s

Clinical considerations:
- Speech patterns show characteristics commonly observed in early-stage dementia
- Reduced semantic fluency and syntactic complexity may be present
- Consider comprehensive neuropsychological evaluation
- Monitor for changes in language production over time

Note: This analysis is a screening tool and should not replace comprehensive clinical assessment.`

const controlNarrative = `The linguistic analysis shows speech patterns within normal cognitive ranges.

Key findings:
• Model confidence: %s
• Control probability: %s
• Alzheimer's probability: %s
• Risk assessment: %s

Clinical considerations:
- Language production appears typical for cognitive age
- Maintain regular cognitive monitoring as part of preventive care
- Continue healthy lifestyle practices for brain health

Note: This analysis is a screening tool. Regular cognitive assessments are recommended for ongoing health monitoring.`

// Interpret maps the decision outputs to a risk tier and a templated
// clinical narrative.
//
// The tier thresholds are fixed: at confidence >= 0.8 the prediction decides
// High versus Low; the 0.6-0.8 band and everything below both map to Medium.
// Template choice depends on the prediction alone, never on the tier.
func Interpret(prediction int, confidence, controlProb, alzheimerProb float64) (RiskLevel, string) {
	var risk RiskLevel
	switch {
	case confidence >= 0.8 && prediction == 1:
		risk = RiskHigh
	case confidence >= 0.8:
		risk = RiskLow
	default:
		// Covers both the moderately confident band and genuinely
		// uncertain cases below 0.6.
		risk = RiskMedium
	}

	var narrative string
	if prediction == 1 {
		narrative = fmt.Sprintf(conditionNarrative,
			percent(confidence), percent(alzheimerProb), percent(controlProb), risk)
	} else {
		narrative = fmt.Sprintf(controlNarrative,
			percent(confidence), percent(controlProb), percent(alzheimerProb), risk)
	}

	return risk, strings.TrimSpace(narrative)
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
