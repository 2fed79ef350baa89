package analysis

import (
	"fmt"
	"math"
	"strings"
)

// extendedPunctuation is the punctuation set the vectorizer's fit-time
// tokenizer split on: ASCII punctuation plus the extended marks observed in
// clinical transcripts. The inference-time tokenizer must match it exactly;
// a mismatch silently degrades every downstream probability rather than
// failing, which is why the set is fixed here and covered by tests.
const extendedPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" + "“”¨«»®´·º½¾¿¡§£₤‘’"

// TFIDFVectorizer maps projected text into the fixed feature space of a
// fitted term-frequency/inverse-document-frequency vocabulary. It is fully
// configured at construction, including its tokenization rule, and is
// immutable afterwards: concurrent requests share one instance without
// synchronization.
type TFIDFVectorizer struct {
	version    string
	vocabulary map[string]int
	idf        []float64
	punct      map[rune]bool
}

// NewTFIDFVectorizer builds a vectorizer from a fitted vocabulary and its
// per-term idf weights. The vocabulary maps each term to its index in the
// feature vector; indices must form a dense range covered by idf.
func NewTFIDFVectorizer(version string, vocabulary map[string]int, idf []float64) (*TFIDFVectorizer, error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("vectorizer vocabulary is empty")
	}
	if len(idf) != len(vocabulary) {
		return nil, fmt.Errorf("vectorizer shape mismatch: %d vocabulary terms, %d idf weights", len(vocabulary), len(idf))
	}
	seen := make([]bool, len(idf))
	for term, idx := range vocabulary {
		if idx < 0 || idx >= len(idf) {
			return nil, fmt.Errorf("vocabulary term %q has out-of-range index %d", term, idx)
		}
		if seen[idx] {
			return nil, fmt.Errorf("vocabulary index %d assigned to multiple terms", idx)
		}
		seen[idx] = true
	}

	punct := make(map[rune]bool, len(extendedPunctuation))
	for _, r := range extendedPunctuation {
		punct[r] = true
	}

	return &TFIDFVectorizer{
		version:    version,
		vocabulary: vocabulary,
		idf:        idf,
		punct:      punct,
	}, nil
}

// Dimension returns the fixed length of produced feature vectors.
func (v *TFIDFVectorizer) Dimension() int {
	return len(v.idf)
}

// Version returns the artifact version the vectorizer was built from.
func (v *TFIDFVectorizer) Version() string {
	return v.version
}

// Vectorize transforms projected text into an L2-normalized tf-idf vector.
func (v *TFIDFVectorizer) Vectorize(text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewVectorizationError("cannot vectorize empty text", nil)
	}

	vec := make([]float64, len(v.idf))
	for _, term := range v.tokenize(text) {
		if idx, ok := v.vocabulary[term]; ok {
			vec[idx] += v.idf[idx]
		}
	}

	// L2 normalization, matching the fitted transform.
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec, nil
}

// tokenize applies the fit-time tokenization rule: every punctuation
// character becomes its own token boundary, then the text splits on
// whitespace.
func (v *TFIDFVectorizer) tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if v.punct[r] {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}
