package handlers

import (
	"errors"
	"net/http"

	"github.com/cogniscreen/cogniscreen/internal/database"
	"github.com/cogniscreen/cogniscreen/internal/server/response"
	"github.com/cogniscreen/cogniscreen/pkg/analysis"
)

// AnalysisHandler handles transcript analysis requests
type AnalysisHandler struct {
	service  *analysis.Service
	patients *database.PatientService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, patients *database.PatientService) *AnalysisHandler {
	return &AnalysisHandler{service: service, patients: patients}
}

// AnalysisRequest represents a single-transcript analysis request. The
// patient reference is optional and only used to verify ownership; results
// are never stored.
type AnalysisRequest struct {
	Text      string `json:"text"`
	PatientID string `json:"patient_id,omitempty"`
}

// BatchAnalysisRequest represents a batch analysis request
type BatchAnalysisRequest struct {
	Texts []string `json:"texts"`
}

// Analyze handles POST /api/v1/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))
	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	var req AnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.PatientID != "" {
		if _, err := h.patients.GetPatient(r.Context(), user.ID, req.PatientID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				rw.Error(http.StatusNotFound, response.ErrorCodePatientNotFound, "Patient not found", nil)
				return
			}
			rw.InternalServerError("Failed to verify patient", nil)
			return
		}
	}

	result, err := h.service.Analyze(r.Context(), req.Text)
	if err != nil {
		h.writeAnalysisError(rw, err)
		return
	}

	rw.Success(result, nil)
}

// AnalyzeDemo handles POST /api/v1/analysis/demo. Same pipeline as
// Analyze, no authentication; intended for evaluation before onboarding.
func (h *AnalysisHandler) AnalyzeDemo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))

	var req AnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Analyze(r.Context(), req.Text)
	if err != nil {
		h.writeAnalysisError(rw, err)
		return
	}

	rw.Success(result, nil)
}

// AnalyzeBatch handles POST /api/v1/analysis/batch
func (h *AnalysisHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))
	if getCurrentUser(r.Context()) == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	var req BatchAnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Texts) == 0 {
		rw.BadRequest("At least one transcript is required", nil)
		return
	}

	items, err := h.service.AnalyzeBatch(r.Context(), req.Texts)
	if err != nil {
		h.writeAnalysisError(rw, err)
		return
	}

	rw.Success(items, nil)
}

// ModelInfo handles GET /api/v1/analysis/model
func (h *AnalysisHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))
	if getCurrentUser(r.Context()) == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	rw.Success(h.service.ModelInfo(), nil)
}

// Metrics handles GET /api/v1/analysis/metrics
func (h *AnalysisHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	rw := response.NewResponseWriter(w, getRequestID(r))
	if getCurrentUser(r.Context()) == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	rw.Success(h.service.GetMetrics(), nil)
}

// writeAnalysisError maps pipeline errors to HTTP responses. Input
// problems are the caller's fault; everything else is a server-side
// failure of the pipeline.
func (h *AnalysisHandler) writeAnalysisError(rw *response.ResponseWriter, err error) {
	var pipelineErr *analysis.Error
	if errors.As(err, &pipelineErr) {
		switch pipelineErr.Code {
		case analysis.ErrCodeInput:
			rw.Error(http.StatusUnprocessableEntity, response.ErrorCodeInvalidInput, pipelineErr.Message, nil)
		case analysis.ErrCodeAnnotation:
			rw.Error(http.StatusServiceUnavailable, response.ErrorCodeModelUnavailable,
				"Language annotation is unavailable", nil)
		default:
			rw.Error(http.StatusInternalServerError, response.ErrorCodeAnalysisFailed,
				"Analysis failed", string(pipelineErr.Code))
		}
		return
	}

	rw.InternalServerError("Analysis failed", nil)
}
