package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnnotator lets tests control annotation output without loading the
// real English model.
type stubAnnotator struct {
	annotateFn func(ctx context.Context, text string) (*Annotation, error)
}

func (s *stubAnnotator) Annotate(ctx context.Context, text string) (*Annotation, error) {
	return s.annotateFn(ctx, text)
}

func (s *stubAnnotator) Name() string { return "stub" }

// wordTagger is a deterministic annotator: whitespace tokens, every word
// tagged as a noun, the whole input as one sentence.
func wordTagger() *stubAnnotator {
	return &stubAnnotator{
		annotateFn: func(_ context.Context, text string) (*Annotation, error) {
			var tokens []Token
			for _, w := range splitWords(text) {
				tokens = append(tokens, Token{Text: w, Tag: "NOUN"})
			}
			return &Annotation{Tokens: tokens, Sentences: []string{text}}, nil
		},
	}
}

func splitWords(text string) []string {
	var words []string
	var current []rune
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
			continue
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}

func fixedAnnotator(ann *Annotation) *stubAnnotator {
	return &stubAnnotator{
		annotateFn: func(context.Context, string) (*Annotation, error) {
			return ann, nil
		},
	}
}

func TestExtractFeatures(t *testing.T) {
	ctx := context.Background()

	t.Run("CountsWordsAndSentences", func(t *testing.T) {
		ann := &Annotation{
			Tokens: []Token{
				{Text: "The", Tag: "DET"},
				{Text: "dog", Tag: "NOUN"},
				{Text: "barked", Tag: "VERB"},
				{Text: ".", Tag: "PUNCT"},
				{Text: "  ", Tag: "SPACE"},
				{Text: "It", Tag: "PRON"},
				{Text: "ran", Tag: "VERB"},
				{Text: "fast", Tag: "ADV"},
				{Text: ".", Tag: "PUNCT"},
			},
			Sentences: []string{"The dog barked.", "It ran fast."},
		}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "The dog barked.  It ran fast.")
		require.NoError(t, err)

		assert.Equal(t, 6, features.WordCount)
		assert.Equal(t, 2, features.SentenceCount)
		assert.Equal(t, 3.0, features.AvgWordsPerSentence)
		assert.Equal(t, 1.0, features.LexicalDiversity)
	})

	t.Run("POSDistributionExcludesSpaceAndPunctuation", func(t *testing.T) {
		ann := &Annotation{
			Tokens: []Token{
				{Text: "The", Tag: "DET"},
				{Text: "dog", Tag: "NOUN"},
				{Text: ".", Tag: "PUNCT"},
				{Text: " ", Tag: "SPACE"},
			},
			Sentences: []string{"The dog."},
		}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "The dog.")
		require.NoError(t, err)

		assert.Equal(t, map[POSCategory]int{
			CategoryDeterminer: 1,
			CategoryNoun:       1,
		}, features.POSDistribution)
	})

	t.Run("LexicalDiversityIsCaseInsensitive", func(t *testing.T) {
		ann := &Annotation{
			Tokens: []Token{
				{Text: "The", Tag: "DET"},
				{Text: "dog", Tag: "NOUN"},
				{Text: "the", Tag: "DET"},
				{Text: "dog", Tag: "NOUN"},
			},
			Sentences: []string{"The dog the dog"},
		}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "The dog the dog")
		require.NoError(t, err)

		assert.Equal(t, 0.5, features.LexicalDiversity)
	})

	t.Run("NonAlphabeticTokensCountAsWordsButNotDiversity", func(t *testing.T) {
		ann := &Annotation{
			Tokens: []Token{
				{Text: "42", Tag: "NUM"},
				{Text: "dogs", Tag: "NOUN"},
			},
			Sentences: []string{"42 dogs"},
		}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "42 dogs")
		require.NoError(t, err)

		assert.Equal(t, 2, features.WordCount)
		assert.Equal(t, 1, features.POSDistribution[CategoryNumeral])
		assert.Equal(t, 1.0, features.LexicalDiversity)
	})

	t.Run("UnknownTagsFallIntoOther", func(t *testing.T) {
		ann := &Annotation{
			Tokens:    []Token{{Text: "um", Tag: "FILLER"}},
			Sentences: []string{"um"},
		}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "um")
		require.NoError(t, err)

		assert.Equal(t, 1, features.POSDistribution[CategoryOther])
	})

	t.Run("AverageRoundsToTwoPlaces", func(t *testing.T) {
		tokens := make([]Token, 7)
		for i := range tokens {
			tokens[i] = Token{Text: "word", Tag: "NOUN"}
		}
		ann := &Annotation{
			Tokens:    tokens,
			Sentences: []string{"a", "b", "c"},
		}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "seven words over three sentences")
		require.NoError(t, err)

		assert.Equal(t, 2.33, features.AvgWordsPerSentence)
	})

	t.Run("NoSentencesLeavesAverageZero", func(t *testing.T) {
		ann := &Annotation{Tokens: []Token{{Text: "word", Tag: "NOUN"}}}

		features, err := ExtractFeatures(ctx, fixedAnnotator(ann), "word")
		require.NoError(t, err)

		assert.Equal(t, 0.0, features.AvgWordsPerSentence)
	})

	t.Run("AnnotationFailureIsFeatureExtractionError", func(t *testing.T) {
		failing := &stubAnnotator{
			annotateFn: func(context.Context, string) (*Annotation, error) {
				return nil, errors.New("model unavailable")
			},
		}

		_, err := ExtractFeatures(ctx, failing, "some text")
		require.Error(t, err)

		var analysisErr *Error
		require.True(t, errors.As(err, &analysisErr))
		assert.Equal(t, ErrCodeFeatureExtraction, analysisErr.Code)
	})
}
