package analysis

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cogniscreen/cogniscreen/pkg/logger"
)

// Service runs the full screening pipeline over speech transcripts. All
// model state lives in the immutable artifact bundle, so a single Service
// instance serves every concurrent request.
type Service struct {
	bundle *Bundle
	config *ServiceConfig
	logger *logger.Logger

	// Metrics and monitoring
	metrics *ServiceMetrics
	tracer  trace.Tracer

	// Concurrency control
	mu        sync.RWMutex
	semaphore chan struct{}
}

// ServiceConfig contains configuration for the analysis service
type ServiceConfig struct {
	MaxConcurrentAnalyses int           `yaml:"max_concurrent_analyses"`
	DefaultTimeout        time.Duration `yaml:"default_timeout"`
	MinTextLength         int           `yaml:"min_text_length"`
	MaxTextLength         int           `yaml:"max_text_length"`
	MaxBatchSize          int           `yaml:"max_batch_size"`
}

// DefaultServiceConfig returns default service configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxConcurrentAnalyses: 10,
		DefaultTimeout:        30 * time.Second,
		MinTextLength:         10,
		MaxTextLength:         10000,
		MaxBatchSize:          50,
	}
}

// NewService creates a new analysis service around a loaded artifact bundle.
func NewService(bundle *Bundle, config *ServiceConfig, log *logger.Logger) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &Service{
		bundle: bundle,
		config: config,
		logger: log.WithField("component", "analysis_service"),
		metrics: &ServiceMetrics{
			AnalysesByRisk: make(map[RiskLevel]int64),
		},
		tracer:    otel.Tracer("analysis-service"),
		semaphore: make(chan struct{}, config.MaxConcurrentAnalyses),
	}
}

// Analyze runs one transcript through the pipeline: annotate, project,
// vectorize, score both heads, decide, interpret, and extract descriptive
// features. A feature-extraction failure degrades to zeroed features; every
// other stage failure fails the request.
func (s *Service) Analyze(ctx context.Context, text string) (*AnalysisResult, error) {
	// Acquire semaphore for concurrency control
	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	startTime := time.Now()

	ctx, span := s.tracer.Start(ctx, "analyze_transcript")
	defer span.End()

	span.SetAttributes(
		attribute.Int("input.length", len(text)),
	)

	if err := s.validateInput(text); err != nil {
		span.RecordError(err)
		s.updateMetrics(false, time.Since(startTime), "")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()

	annotation, err := s.bundle.Annotator.Annotate(ctx, text)
	if err != nil {
		span.RecordError(err)
		s.updateMetrics(false, time.Since(startTime), "")
		return nil, NewAnnotationError("failed to annotate transcript", err)
	}

	projected := ProjectPOS(annotation.Tokens)

	features, err := s.bundle.Vectorizer.Vectorize(projected)
	if err != nil {
		span.RecordError(err)
		s.updateMetrics(false, time.Since(startTime), "")
		return nil, NewVectorizationError("failed to vectorize projected text", err)
	}

	controlProb, alzheimerProb, err := s.bundle.Ensemble.Score(features)
	if err != nil {
		span.RecordError(err)
		s.updateMetrics(false, time.Since(startTime), "")
		return nil, err
	}

	prediction, confidence := Decide(controlProb, alzheimerProb)
	risk, interpretation := Interpret(prediction, confidence, controlProb, alzheimerProb)

	linguistic, err := ExtractFeatures(ctx, s.bundle.Annotator, text)
	if err != nil {
		// Degrade rather than fail: the classification outcome is the
		// clinically relevant part of the result.
		s.logger.WithError(err).Warn("Feature extraction failed, returning zeroed features")
		span.RecordError(err)
		linguistic = zeroFeatures()
	}

	processingTime := time.Since(startTime)

	result := &AnalysisResult{
		ID:                     uuid.New(),
		Prediction:             prediction,
		Confidence:             confidence,
		ControlProbability:     controlProb,
		AlzheimerProbability:   alzheimerProb,
		RiskLevel:              risk,
		ClinicalInterpretation: interpretation,
		LinguisticFeatures:     linguistic,
		PreprocessedText:       projected,
		ProcessingTime:         processingTime,
		ModelVersion:           s.bundle.Vectorizer.Version(),
		ProcessedAt:            time.Now().UTC(),
	}

	s.updateMetrics(true, processingTime, risk)

	span.SetAttributes(
		attribute.Int("analysis.prediction", prediction),
		attribute.Float64("analysis.confidence", confidence),
		attribute.String("analysis.risk_level", string(risk)),
		attribute.Int64("processing.time_ms", processingTime.Milliseconds()),
	)

	return result, nil
}

// AnalyzeBatch analyzes multiple transcripts in parallel. Each input gets
// its own outcome keyed by index; one bad transcript never aborts the rest.
func (s *Service) AnalyzeBatch(ctx context.Context, texts []string) ([]BatchItem, error) {
	if len(texts) == 0 {
		return []BatchItem{}, nil
	}

	if len(texts) > s.config.MaxBatchSize {
		return nil, NewInputError("batch size exceeds maximum")
	}

	ctx, span := s.tracer.Start(ctx, "analyze_batch")
	defer span.End()

	span.SetAttributes(attribute.Int("batch.size", len(texts)))

	items := make([]BatchItem, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(index int, input string) {
			defer wg.Done()

			item := BatchItem{Index: index}
			result, err := s.Analyze(ctx, input)
			if err != nil {
				item.Error = err.Error()
				item.ErrorCode = errorCodeOf(err)
			} else {
				item.Result = result
			}
			items[index] = item
		}(i, text)
	}

	wg.Wait()

	successCount := 0
	for _, item := range items {
		if item.Result != nil {
			successCount++
		}
	}

	span.SetAttributes(
		attribute.Int("batch.successful", successCount),
		attribute.Int("batch.failed", len(texts)-successCount),
	)

	return items, nil
}

// ModelInfo describes the loaded artifacts.
func (s *Service) ModelInfo() ModelInfo {
	return ModelInfo{
		AnnotatorName:     s.bundle.Annotator.Name(),
		VectorizerVersion: s.bundle.Vectorizer.Version(),
		ControlVersion:    s.bundle.Ensemble.Control.Version(),
		AlzheimerVersion:  s.bundle.Ensemble.Alzheimer.Version(),
		FeatureDimension:  s.bundle.Vectorizer.Dimension(),
	}
}

// GetMetrics returns a snapshot of the rolling service metrics.
func (s *Service) GetMetrics() ServiceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := *s.metrics
	snapshot.AnalysesByRisk = make(map[RiskLevel]int64, len(s.metrics.AnalysesByRisk))
	for k, v := range s.metrics.AnalysesByRisk {
		snapshot.AnalysesByRisk[k] = v
	}
	return snapshot
}

// HealthCheck exercises the full pipeline against a known-good transcript.
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.Analyze(ctx, "The quick brown fox jumps over the lazy dog near the river bank.")
	return err
}

func (s *Service) validateInput(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NewInputError("text is required")
	}
	// Length bounds count characters, not bytes.
	length := utf8.RuneCountInString(trimmed)
	if length < s.config.MinTextLength {
		return NewInputError("text is too short for reliable analysis")
	}
	if length > s.config.MaxTextLength {
		return NewInputError("text exceeds maximum supported length")
	}
	return nil
}

// updateMetrics updates service metrics
func (s *Service) updateMetrics(success bool, processingTime time.Duration, risk RiskLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalAnalyses++

	if success {
		s.metrics.SuccessfulAnalyses++
		if risk != "" {
			s.metrics.AnalysesByRisk[risk]++
		}
	} else {
		s.metrics.FailedAnalyses++
	}

	totalTime := s.metrics.AverageProcessingTime * time.Duration(s.metrics.TotalAnalyses-1)
	s.metrics.AverageProcessingTime = (totalTime + processingTime) / time.Duration(s.metrics.TotalAnalyses)

	s.metrics.ErrorRate = float64(s.metrics.FailedAnalyses) / float64(s.metrics.TotalAnalyses)

	now := time.Now()
	s.metrics.LastAnalysisAt = &now
}

// errorCodeOf extracts the pipeline error code, defaulting to SCORING for
// errors raised outside the typed taxonomy.
func errorCodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrCodeScoring
}
