package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscreen/cogniscreen/internal/server/response"
	"github.com/cogniscreen/cogniscreen/pkg/analysis"
	"github.com/cogniscreen/cogniscreen/pkg/logger"
)

func newAnalysisHandler(t *testing.T) *AnalysisHandler {
	t.Helper()

	annotator, err := analysis.NewProseAnnotator()
	require.NoError(t, err)

	vectorizer, err := analysis.NewTFIDFVectorizer("tfidf-test",
		map[string]int{"noun": 0, "verb": 1, "determiner": 2},
		[]float64{1.0, 1.0, 1.0})
	require.NoError(t, err)

	control, err := analysis.NewWeightedLogisticClassifier("control-test",
		[]float64{1.0, 1.0, 1.0}, 0, []float64{1.0, 1.0, 1.0})
	require.NoError(t, err)
	alzheimer, err := analysis.NewWeightedLogisticClassifier("alz-test",
		[]float64{-1.0, -1.0, -1.0}, 0, []float64{1.0, 1.0, 1.0})
	require.NoError(t, err)

	ensemble, err := analysis.NewEnsemble(control, alzheimer)
	require.NoError(t, err)

	quiet := logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: logger.JSONFormat,
		Output: io.Discard,
	})

	service := analysis.NewService(&analysis.Bundle{
		Annotator:  annotator,
		Vectorizer: vectorizer,
		Ensemble:   ensemble,
	}, nil, quiet)

	return NewAnalysisHandler(service, nil)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()
	var envelope response.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestAnalyzeDemo(t *testing.T) {
	handler := newAnalysisHandler(t)

	t.Run("AnalyzesWithoutAuthentication", func(t *testing.T) {
		body := `{"text": "The dog chased the ball across the yard. The children laughed."}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/demo", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.AnalyzeDemo(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		envelope := decodeEnvelope(t, rec)
		assert.True(t, envelope.Success)

		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, data, "prediction")
		assert.Contains(t, data, "risk_level")
		assert.Contains(t, data, "clinical_interpretation")
		assert.Contains(t, data, "linguistic_features")
		assert.Contains(t, data, "control_probability")
		assert.Contains(t, data, "alzheimer_probability")
	})

	t.Run("TooShortTextIs422", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/demo", strings.NewReader(`{"text": "hi"}`))
		rec := httptest.NewRecorder()

		handler.AnalyzeDemo(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		envelope := decodeEnvelope(t, rec)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, response.ErrorCodeInvalidInput, envelope.Error.Code)
	})

	t.Run("MalformedJSONIs400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/demo", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		handler.AnalyzeDemo(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownFieldsAreRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/demo",
			strings.NewReader(`{"text": "long enough transcript text", "surprise": true}`))
		rec := httptest.NewRecorder()

		handler.AnalyzeDemo(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GetIs405", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/demo", nil)
		rec := httptest.NewRecorder()

		handler.AnalyzeDemo(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAuthenticatedAnalysisEndpointsRequireUser(t *testing.T) {
	handler := newAnalysisHandler(t)

	cases := []struct {
		name   string
		method string
		serve  func(w http.ResponseWriter, r *http.Request)
		body   string
	}{
		{"Analyze", http.MethodPost, handler.Analyze, `{"text": "some transcript text"}`},
		{"AnalyzeBatch", http.MethodPost, handler.AnalyzeBatch, `{"texts": ["some transcript text"]}`},
		{"ModelInfo", http.MethodGet, handler.ModelInfo, ""},
		{"Metrics", http.MethodGet, handler.Metrics, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, "/api/v1/analysis", body)
			rec := httptest.NewRecorder()

			tc.serve(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
