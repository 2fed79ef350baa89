package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectPOS(t *testing.T) {
	t.Run("AppendsCategoryNameToEveryToken", func(t *testing.T) {
		tokens := []Token{
			{Text: "The", Tag: "DET"},
			{Text: "dog", Tag: "NOUN"},
			{Text: "barked", Tag: "VERB"},
			{Text: ".", Tag: "PUNCT"},
		}

		got := ProjectPOS(tokens)
		assert.Equal(t, "The determiner dog noun barked verb . punctuation", got)
	})

	t.Run("UsesMultiWordCategoryNames", func(t *testing.T) {
		tokens := []Token{
			{Text: "and", Tag: "CCONJ"},
			{Text: "because", Tag: "SCONJ"},
			{Text: "London", Tag: "PROPN"},
		}

		got := ProjectPOS(tokens)
		assert.Equal(t, "and coordinating conjunction because subordinating conjunction London proper noun", got)
	})

	t.Run("UnknownTagPassesThrough", func(t *testing.T) {
		tokens := []Token{
			{Text: "um", Tag: "FILLER"},
		}

		assert.Equal(t, "um FILLER", ProjectPOS(tokens))
	})

	t.Run("TokenTextMatchingACategoryNameIsNotRewritten", func(t *testing.T) {
		// A word that happens to equal a category name must survive as
		// text; only tag codes are substituted.
		tokens := []Token{
			{Text: "noun", Tag: "NOUN"},
			{Text: "verb", Tag: "NOUN"},
		}

		assert.Equal(t, "noun noun verb noun", ProjectPOS(tokens))
	})

	t.Run("PreservesTokenOrder", func(t *testing.T) {
		tokens := []Token{
			{Text: "slowly", Tag: "ADV"},
			{Text: "walked", Tag: "VERB"},
			{Text: "home", Tag: "NOUN"},
		}

		assert.Equal(t, "slowly adverb walked verb home noun", ProjectPOS(tokens))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Equal(t, "", ProjectPOS(nil))
		assert.Equal(t, "", ProjectPOS([]Token{}))
	})

	t.Run("SpaceTokensProject", func(t *testing.T) {
		tokens := []Token{
			{Text: "hello", Tag: "INTJ"},
			{Text: "  ", Tag: "SPACE"},
			{Text: "there", Tag: "ADV"},
		}

		assert.Equal(t, "hello interjection    space there adverb", ProjectPOS(tokens))
	})
}
