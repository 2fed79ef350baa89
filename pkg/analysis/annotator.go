package analysis

import (
	"context"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// pennToUniversal maps the tagger's Penn Treebank tags onto the universal
// tag codes the rest of the pipeline works with. The projection follows the
// standard PTB-to-universal convention; tags not listed fall back to X.
var pennToUniversal = map[string]string{
	"JJ": "ADJ", "JJR": "ADJ", "JJS": "ADJ",
	"RB": "ADV", "RBR": "ADV", "RBS": "ADV", "WRB": "ADV",
	"NN": "NOUN", "NNS": "NOUN",
	"NNP": "PROPN", "NNPS": "PROPN",
	"VB": "VERB", "VBD": "VERB", "VBG": "VERB", "VBN": "VERB", "VBP": "VERB", "VBZ": "VERB",
	"MD": "AUX",
	"IN": "ADP",
	"CC": "CCONJ",
	"DT": "DET", "PDT": "DET", "WDT": "DET",
	"PRP": "PRON", "PRP$": "PRON", "WP": "PRON", "WP$": "PRON", "EX": "PRON",
	"CD": "NUM",
	"RP": "PART", "TO": "PART", "POS": "PART",
	"UH": "INTJ",
	"SYM": "SYM", "$": "SYM", "#": "SYM",
	".": "PUNCT", ",": "PUNCT", ":": "PUNCT",
	"``": "PUNCT", "''": "PUNCT", "\"": "PUNCT",
	"-LRB-": "PUNCT", "-RRB-": "PUNCT", "(": "PUNCT", ")": "PUNCT",
	"HYPH": "PUNCT", "NFP": "PUNCT",
	"FW": "X", "LS": "X",
}

// ProseAnnotator tags tokens and segments sentences using the prose English
// model. The model is embedded in the library, so construction only fails if
// the tagger itself cannot be initialized. Instances are immutable and safe
// for concurrent use.
type ProseAnnotator struct{}

// NewProseAnnotator constructs the annotator and verifies the underlying
// model by running it once. A failure here is fatal for the process: the
// pipeline cannot run without annotation.
func NewProseAnnotator() (*ProseAnnotator, error) {
	a := &ProseAnnotator{}
	if _, err := a.Annotate(context.Background(), "The model loads."); err != nil {
		return nil, NewAnnotationError("annotator model unavailable", err)
	}
	return a, nil
}

// Name returns the annotator model identifier.
func (a *ProseAnnotator) Name() string {
	return "prose-en-v2"
}

// Annotate segments text into POS-tagged tokens and sentences. Whitespace
// runs other than a single separating space are represented as SPACE tokens
// so every character position of the document survives into the token stream.
func (a *ProseAnnotator) Annotate(ctx context.Context, text string) (*Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewAnnotationError("annotation cancelled", err)
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, NewAnnotationError("failed to annotate document", err)
	}

	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))

	// Walk the original text alongside the token stream so inter-token
	// whitespace can be recovered; the projector needs every position
	// represented, not just the word and punctuation tokens.
	cursor := 0
	for _, tok := range raw {
		if idx := strings.Index(text[cursor:], tok.Text); idx >= 0 {
			gap := text[cursor : cursor+idx]
			if isSpaceRun(gap) && gap != " " {
				tokens = append(tokens, Token{Text: gap, Tag: "SPACE"})
			}
			cursor += idx + len(tok.Text)
		}

		tag, ok := pennToUniversal[tok.Tag]
		if !ok {
			tag = "X"
		}
		tokens = append(tokens, Token{Text: tok.Text, Tag: tag})
	}

	sents := doc.Sentences()
	sentences := make([]string, 0, len(sents))
	for _, s := range sents {
		if strings.TrimSpace(s.Text) != "" {
			sentences = append(sentences, s.Text)
		}
	}

	return &Annotation{Tokens: tokens, Sentences: sentences}, nil
}

func isSpaceRun(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
