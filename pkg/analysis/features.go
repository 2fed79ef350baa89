package analysis

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// ExtractFeatures computes the human-facing descriptive statistics from the
// original transcript. It deliberately re-annotates the raw text instead of
// reusing the projection pipeline's annotation: the transformed modeling
// representation and the reporting statistics must not cross-contaminate.
func ExtractFeatures(ctx context.Context, annotator Annotator, text string) (LinguisticFeatures, error) {
	ann, err := annotator.Annotate(ctx, text)
	if err != nil {
		return LinguisticFeatures{}, NewFeatureExtractionError("failed to annotate text for feature extraction", err)
	}

	features := LinguisticFeatures{
		POSDistribution: make(map[POSCategory]int),
	}

	var alphaTokens []string
	for _, tok := range ann.Tokens {
		if tok.IsSpace() || tok.IsPunct() {
			continue
		}
		features.WordCount++

		category, ok := posCategoryNames[tok.Tag]
		if !ok {
			category = CategoryOther
		}
		features.POSDistribution[category]++

		if isAlphabetic(tok.Text) {
			alphaTokens = append(alphaTokens, strings.ToLower(tok.Text))
		}
	}

	features.SentenceCount = len(ann.Sentences)

	if features.SentenceCount > 0 {
		avg := float64(features.WordCount) / float64(features.SentenceCount)
		features.AvgWordsPerSentence = roundTo(avg, 2)
	}

	if len(alphaTokens) > 0 {
		unique := make(map[string]struct{}, len(alphaTokens))
		for _, w := range alphaTokens {
			unique[w] = struct{}{}
		}
		features.LexicalDiversity = roundTo(float64(len(unique))/float64(len(alphaTokens)), 3)
	}

	return features, nil
}

// zeroFeatures is the graceful-degradation fallback when extraction fails:
// the classification result matters more than the descriptive statistics.
func zeroFeatures() LinguisticFeatures {
	return LinguisticFeatures{POSDistribution: map[POSCategory]int{}}
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func roundTo(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}
