package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// POSCategory is the universal part-of-speech category assigned to a token.
// The names are the full category names used by the projected text
// representation the classifiers were trained on, so their exact spellings
// (including internal spaces) are load-bearing.
type POSCategory string

const (
	CategoryAdjective     POSCategory = "adjective"
	CategoryAdposition    POSCategory = "adposition"
	CategoryAdverb        POSCategory = "adverb"
	CategoryAuxiliary     POSCategory = "auxiliary"
	CategoryConjunction   POSCategory = "conjunction"
	CategoryCoordConj     POSCategory = "coordinating conjunction"
	CategoryDeterminer    POSCategory = "determiner"
	CategoryInterjection  POSCategory = "interjection"
	CategoryNoun          POSCategory = "noun"
	CategoryNumeral       POSCategory = "numeral"
	CategoryParticle      POSCategory = "particle"
	CategoryPronoun       POSCategory = "pronoun"
	CategoryProperNoun    POSCategory = "proper noun"
	CategoryPunctuation   POSCategory = "punctuation"
	CategorySubordConj    POSCategory = "subordinating conjunction"
	CategorySymbol        POSCategory = "symbol"
	CategoryVerb          POSCategory = "verb"
	CategoryOther         POSCategory = "other"
	CategorySpace         POSCategory = "space"
)

// posCategoryNames maps the annotator's universal tag codes to full category
// names. Codes absent from this table pass through the projector unchanged.
var posCategoryNames = map[string]POSCategory{
	"ADJ":   CategoryAdjective,
	"ADP":   CategoryAdposition,
	"ADV":   CategoryAdverb,
	"AUX":   CategoryAuxiliary,
	"CONJ":  CategoryConjunction,
	"CCONJ": CategoryCoordConj,
	"DET":   CategoryDeterminer,
	"INTJ":  CategoryInterjection,
	"NOUN":  CategoryNoun,
	"NUM":   CategoryNumeral,
	"PART":  CategoryParticle,
	"PRON":  CategoryPronoun,
	"PROPN": CategoryProperNoun,
	"PUNCT": CategoryPunctuation,
	"SCONJ": CategorySubordConj,
	"SYM":   CategorySymbol,
	"VERB":  CategoryVerb,
	"X":     CategoryOther,
	"SPACE": CategorySpace,
}

// Token is a single annotated token of the input document. Ordering within
// the annotated sequence mirrors the original text and is never mutated.
type Token struct {
	Text string `json:"text"`
	Tag  string `json:"tag"` // universal tag code (NOUN, VERB, ...)
}

// IsSpace reports whether the token is a whitespace token.
func (t Token) IsSpace() bool {
	return t.Tag == "SPACE"
}

// IsPunct reports whether the token is a punctuation token.
func (t Token) IsPunct() bool {
	return t.Tag == "PUNCT"
}

// Annotation is the annotator's output for one document: the ordered token
// stream plus the detected sentence segmentation.
type Annotation struct {
	Tokens    []Token  `json:"tokens"`
	Sentences []string `json:"sentences"`
}

// RiskLevel is the coarse clinical risk tier derived from the decision rule.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// LinguisticFeatures holds the human-facing descriptive statistics computed
// from the original (untransformed) transcript.
type LinguisticFeatures struct {
	WordCount           int                 `json:"word_count"`
	SentenceCount       int                 `json:"sentence_count"`
	AvgWordsPerSentence float64             `json:"avg_words_per_sentence"`
	LexicalDiversity    float64             `json:"lexical_diversity"`
	POSDistribution     map[POSCategory]int `json:"pos_distribution"`
}

// AnalysisResult is the terminal record of one analysis. It is created once
// per request and never mutated afterwards; persistence, if any, is the
// caller's concern.
type AnalysisResult struct {
	ID                   uuid.UUID          `json:"id"`
	Prediction           int                `json:"prediction"` // 1 = condition-indicated, 0 = control-like
	Confidence           float64            `json:"confidence"` // control probability, by convention
	ControlProbability   float64            `json:"control_probability"`
	AlzheimerProbability float64            `json:"alzheimer_probability"`
	RiskLevel            RiskLevel          `json:"risk_level"`
	ClinicalInterpretation string           `json:"clinical_interpretation"`
	LinguisticFeatures   LinguisticFeatures `json:"linguistic_features"`
	PreprocessedText     string             `json:"preprocessed_text"` // POS-projected text, diagnostic only
	ProcessingTime       time.Duration      `json:"processing_time"`
	ModelVersion         string             `json:"model_version"`
	ProcessedAt          time.Time          `json:"processed_at"`
}

// BatchItem is the per-document outcome of a batch analysis. Exactly one of
// Result and Error is set; Index identifies the input the outcome belongs to.
type BatchItem struct {
	Index     int             `json:"index"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorCode ErrorCode       `json:"error_code,omitempty"`
}

// ModelInfo describes the loaded model artifacts.
type ModelInfo struct {
	AnnotatorName     string `json:"annotator"`
	VectorizerVersion string `json:"vectorizer_version"`
	ControlVersion    string `json:"control_model_version"`
	AlzheimerVersion  string `json:"alzheimer_model_version"`
	FeatureDimension  int    `json:"feature_dimension"`
}

// Annotator segments text into tokens and sentences and assigns exactly one
// POS tag per token, whitespace and punctuation included.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*Annotation, error)
	Name() string
}

// Vectorizer maps projected text into the fixed-dimension feature space the
// classifiers were fitted on. Implementations are immutable once constructed
// and safe for concurrent use.
type Vectorizer interface {
	Vectorize(text string) ([]float64, error)
	Dimension() int
	Version() string
}

// BinaryClassifier is a probabilistic binary classifier: given a feature
// vector it returns the positive-class probability in [0,1]. The ensemble's
// two heads (control and condition) both sit behind this interface so model
// backends can be swapped without touching the decision rule.
type BinaryClassifier interface {
	PositiveProbability(features []float64) (float64, error)
	Dimension() int
	Version() string
}

// ServiceMetrics tracks rolling analysis counters for the service.
type ServiceMetrics struct {
	TotalAnalyses         int64                 `json:"total_analyses"`
	SuccessfulAnalyses    int64                 `json:"successful_analyses"`
	FailedAnalyses        int64                 `json:"failed_analyses"`
	AverageProcessingTime time.Duration         `json:"average_processing_time"`
	AnalysesByRisk        map[RiskLevel]int64   `json:"analyses_by_risk"`
	LastAnalysisAt        *time.Time            `json:"last_analysis_at"`
	ErrorRate             float64               `json:"error_rate"`
}
