package analysis

import "strings"

// ProjectPOS rewrites an annotated token stream into the transformed text
// representation the classifiers were fitted on: for every token, its
// literal text followed by its full POS category name, all joined by single
// spaces in token order.
//
// Substitution happens per token, before joining. Operating on the joined
// string instead would let a category name or word fragment collide with a
// tag code produced by an earlier substitution, so that form is deliberately
// avoided. Tag codes without an entry in the category table pass through
// unchanged; annotator vocabularies grow and an unknown tag is not an error.
func ProjectPOS(tokens []Token) string {
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		b.WriteByte(' ')
		if name, ok := posCategoryNames[tok.Tag]; ok {
			b.WriteString(string(name))
		} else {
			b.WriteString(tok.Tag)
		}
	}
	return b.String()
}
