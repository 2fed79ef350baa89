package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProseAnnotator(t *testing.T) {
	annotator, err := NewProseAnnotator()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("TagsAreUniversalCodes", func(t *testing.T) {
		ann, err := annotator.Annotate(ctx, "The quick brown fox jumps over the lazy dog.")
		require.NoError(t, err)
		require.NotEmpty(t, ann.Tokens)

		for _, tok := range ann.Tokens {
			_, known := posCategoryNames[tok.Tag]
			assert.True(t, known, "token %q carries unmapped tag %q", tok.Text, tok.Tag)
		}
	})

	t.Run("SegmentsSentences", func(t *testing.T) {
		ann, err := annotator.Annotate(ctx, "The dog barked. The cat ran away.")
		require.NoError(t, err)

		assert.Len(t, ann.Sentences, 2)
	})

	t.Run("PunctuationBecomesPunctTokens", func(t *testing.T) {
		ann, err := annotator.Annotate(ctx, "Yes, it works.")
		require.NoError(t, err)

		var punct int
		for _, tok := range ann.Tokens {
			if tok.IsPunct() {
				punct++
			}
		}
		assert.GreaterOrEqual(t, punct, 2)
	})

	t.Run("MultipleSpacesSurviveAsSpaceTokens", func(t *testing.T) {
		ann, err := annotator.Annotate(ctx, "hello  world")
		require.NoError(t, err)

		var space *Token
		for i := range ann.Tokens {
			if ann.Tokens[i].IsSpace() {
				space = &ann.Tokens[i]
				break
			}
		}
		require.NotNil(t, space, "expected a SPACE token for the double space")
		assert.Equal(t, "  ", space.Text)
	})

	t.Run("SingleSpacesProduceNoSpaceTokens", func(t *testing.T) {
		ann, err := annotator.Annotate(ctx, "hello world")
		require.NoError(t, err)

		for _, tok := range ann.Tokens {
			assert.False(t, tok.IsSpace())
		}
	})

	t.Run("TokenOrderFollowsText", func(t *testing.T) {
		ann, err := annotator.Annotate(ctx, "one two three")
		require.NoError(t, err)
		require.Len(t, ann.Tokens, 3)

		assert.Equal(t, "one", ann.Tokens[0].Text)
		assert.Equal(t, "two", ann.Tokens[1].Text)
		assert.Equal(t, "three", ann.Tokens[2].Text)
	})

	t.Run("CancelledContextFailsFast", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := annotator.Annotate(cancelled, "some text")
		require.Error(t, err)

		var analysisErr *Error
		require.True(t, errors.As(err, &analysisErr))
		assert.Equal(t, ErrCodeAnnotation, analysisErr.Code)
	})

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "prose-en-v2", annotator.Name())
	})
}
