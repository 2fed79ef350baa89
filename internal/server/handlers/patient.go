package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cogniscreen/cogniscreen/internal/database"
	"github.com/cogniscreen/cogniscreen/internal/database/models"
	"github.com/cogniscreen/cogniscreen/internal/server/response"
)

// PatientHandler handles patient management requests. All operations are
// scoped to the authenticated clinician's own patients.
type PatientHandler struct {
	patients *database.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patients *database.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// PatientRequest represents a patient creation/update request
type PatientRequest struct {
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	DateOfBirth           time.Time `json:"date_of_birth"`
	Gender                string    `json:"gender"`
	Phone                 string    `json:"phone,omitempty"`
	Email                 string    `json:"email,omitempty"`
	Address               string    `json:"address,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	MedicalHistory        string    `json:"medical_history,omitempty"`
	EducationLevel        string    `json:"education_level,omitempty"`
	Occupation            string    `json:"occupation,omitempty"`
	DominantHand          string    `json:"dominant_hand,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
}

// HandlePatients handles /api/v1/patients and /api/v1/patients/{code}
func (h *PatientHandler) HandlePatients(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/patients"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w, r)
		}
		return
	}

	code := path
	switch r.Method {
	case http.MethodGet:
		h.Get(w, r, code)
	case http.MethodPut:
		h.Update(w, r, code)
	case http.MethodDelete:
		h.Deactivate(w, r, code)
	default:
		methodNotAllowed(w, r)
	}
}

// Create handles POST /api/v1/patients
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	rw := response.NewResponseWriter(w, getRequestID(r))
	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	var req PatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validatePatient(&req); len(errs) > 0 {
		rw.ValidationError(errs)
		return
	}

	code, err := h.patients.NextPatientCode(r.Context())
	if err != nil {
		rw.InternalServerError("Failed to allocate patient code", nil)
		return
	}

	patient := &models.Patient{
		Code:                  code,
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalHistory:        req.MedicalHistory,
		EducationLevel:        req.EducationLevel,
		Occupation:            req.Occupation,
		DominantHand:          req.DominantHand,
		Notes:                 req.Notes,
		DoctorID:              user.ID,
		IsActive:              true,
	}
	if patient.DominantHand == "" {
		patient.DominantHand = models.HandRight
	}

	if err := h.patients.CreatePatient(r.Context(), patient); err != nil {
		rw.InternalServerError("Failed to create patient", nil)
		return
	}

	rw.Created(patient)
}

// List handles GET /api/v1/patients
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	rw := response.NewResponseWriter(w, getRequestID(r))
	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	page, pageSize, offset := getPagination(r.Context())

	patients, err := h.patients.ListPatients(r.Context(), user.ID, pageSize, offset)
	if err != nil {
		rw.InternalServerError("Failed to list patients", nil)
		return
	}

	totalCount, err := h.patients.CountPatients(r.Context(), user.ID)
	if err != nil {
		rw.InternalServerError("Failed to count patients", nil)
		return
	}

	rw.Paginated(patients, page, pageSize, totalCount)
}

// Get handles GET /api/v1/patients/{code}
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request, code string) {
	rw := response.NewResponseWriter(w, getRequestID(r))
	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	patient, err := h.patients.GetPatient(r.Context(), user.ID, code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Error(http.StatusNotFound, response.ErrorCodePatientNotFound, "Patient not found", nil)
			return
		}
		rw.InternalServerError("Failed to get patient", nil)
		return
	}

	rw.Success(patient, nil)
}

// Update handles PUT /api/v1/patients/{code}
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request, code string) {
	rw := response.NewResponseWriter(w, getRequestID(r))
	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	patient, err := h.patients.GetPatient(r.Context(), user.ID, code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Error(http.StatusNotFound, response.ErrorCodePatientNotFound, "Patient not found", nil)
			return
		}
		rw.InternalServerError("Failed to get patient", nil)
		return
	}

	var req PatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validatePatient(&req); len(errs) > 0 {
		rw.ValidationError(errs)
		return
	}

	patient.FirstName = strings.TrimSpace(req.FirstName)
	patient.LastName = strings.TrimSpace(req.LastName)
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender
	patient.Phone = req.Phone
	patient.Email = req.Email
	patient.Address = req.Address
	patient.EmergencyContactName = req.EmergencyContactName
	patient.EmergencyContactPhone = req.EmergencyContactPhone
	patient.MedicalHistory = req.MedicalHistory
	patient.EducationLevel = req.EducationLevel
	patient.Occupation = req.Occupation
	if req.DominantHand != "" {
		patient.DominantHand = req.DominantHand
	}
	patient.Notes = req.Notes

	if err := h.patients.UpdatePatient(r.Context(), patient); err != nil {
		rw.InternalServerError("Failed to update patient", nil)
		return
	}

	rw.Success(patient, nil)
}

// Deactivate handles DELETE /api/v1/patients/{code}
func (h *PatientHandler) Deactivate(w http.ResponseWriter, r *http.Request, code string) {
	rw := response.NewResponseWriter(w, getRequestID(r))
	user := getCurrentUser(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	if err := h.patients.DeactivatePatient(r.Context(), user.ID, code); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Error(http.StatusNotFound, response.ErrorCodePatientNotFound, "Patient not found", nil)
			return
		}
		rw.InternalServerError("Failed to deactivate patient", nil)
		return
	}

	rw.NoContent()
}

func validatePatient(req *PatientRequest) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(req.FirstName) == "" {
		errs["first_name"] = "first name is required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs["last_name"] = "last name is required"
	}
	if req.DateOfBirth.IsZero() {
		errs["date_of_birth"] = "date of birth is required"
	} else if req.DateOfBirth.After(time.Now()) {
		errs["date_of_birth"] = "date of birth must be in the past"
	}
	if !models.ValidGender(req.Gender) {
		errs["gender"] = "gender must be Male, Female, or Other"
	}
	if req.DominantHand != "" &&
		req.DominantHand != models.HandRight &&
		req.DominantHand != models.HandLeft &&
		req.DominantHand != models.HandAmbidextrous {
		errs["dominant_hand"] = "dominant hand must be Right, Left, or Ambidextrous"
	}

	return errs
}
