package analysis

import "fmt"

// ErrorCode identifies a failure class in the analysis pipeline.
type ErrorCode string

const (
	// ErrCodeInput marks rejected input (missing or outside length bounds).
	ErrCodeInput ErrorCode = "INPUT"
	// ErrCodeAnnotation marks an unavailable or misconfigured annotator.
	// Fatal at process scope: no request can be served without it.
	ErrCodeAnnotation ErrorCode = "ANNOTATION"
	// ErrCodeVectorization marks a per-request transform failure.
	ErrCodeVectorization ErrorCode = "VECTORIZATION"
	// ErrCodeScoring marks a per-request classifier invocation failure.
	ErrCodeScoring ErrorCode = "SCORING"
	// ErrCodeFeatureExtraction marks a descriptive-statistics failure. The
	// service degrades to zeroed features instead of surfacing it.
	ErrCodeFeatureExtraction ErrorCode = "FEATURE_EXTRACTION"
)

// Error is a typed pipeline error carrying the failure class and the
// component that raised it. Retrying inside the pipeline is never useful
// (the computation is deterministic), so no error here is retryable.
type Error struct {
	Code      ErrorCode
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Component, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Component, e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInputError reports rejected input.
func NewInputError(message string) *Error {
	return &Error{Code: ErrCodeInput, Component: "input", Message: message}
}

// NewAnnotationError reports an annotator failure.
func NewAnnotationError(message string, err error) *Error {
	return &Error{Code: ErrCodeAnnotation, Component: "annotator", Message: message, Err: err}
}

// NewVectorizationError reports a vectorizer transform failure.
func NewVectorizationError(message string, err error) *Error {
	return &Error{Code: ErrCodeVectorization, Component: "vectorizer", Message: message, Err: err}
}

// NewScoringError reports a classifier invocation failure.
func NewScoringError(message string, err error) *Error {
	return &Error{Code: ErrCodeScoring, Component: "classifier", Message: message, Err: err}
}

// NewFeatureExtractionError reports a descriptive-statistics failure.
func NewFeatureExtractionError(message string, err error) *Error {
	return &Error{Code: ErrCodeFeatureExtraction, Component: "features", Message: message, Err: err}
}
