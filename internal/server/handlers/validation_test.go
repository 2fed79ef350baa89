package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cogniscreen/cogniscreen/internal/database/models"
)

func TestValidateRegistration(t *testing.T) {
	h := &AuthHandler{}

	valid := func() RegisterRequest {
		return RegisterRequest{
			Username: "drsmith",
			Email:    "smith@clinic.example.com",
			Password: "a-strong-password",
			FullName: "Dr. Smith",
			Role:     models.RoleDoctor,
		}
	}

	t.Run("ValidRequest", func(t *testing.T) {
		req := valid()
		assert.Empty(t, h.validateRegistration(&req))
	})

	t.Run("EmptyRoleDefaultsToDoctor", func(t *testing.T) {
		req := valid()
		req.Role = ""
		assert.Empty(t, h.validateRegistration(&req))
		assert.Equal(t, models.RoleDoctor, req.Role)
	})

	t.Run("RejectsBadFields", func(t *testing.T) {
		req := RegisterRequest{
			Username: "ab",
			Email:    "not-an-email",
			Password: "short",
			FullName: "x",
			Role:     "superuser",
		}

		errs := h.validateRegistration(&req)
		assert.Contains(t, errs, "username")
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "password")
		assert.Contains(t, errs, "full_name")
		assert.Contains(t, errs, "role")
	})
}

func TestValidatePatient(t *testing.T) {
	valid := func() PatientRequest {
		return PatientRequest{
			FirstName:   "Margaret",
			LastName:    "Hale",
			DateOfBirth: time.Date(1948, 5, 12, 0, 0, 0, 0, time.UTC),
			Gender:      models.GenderFemale,
		}
	}

	t.Run("ValidRequest", func(t *testing.T) {
		req := valid()
		assert.Empty(t, validatePatient(&req))
	})

	t.Run("RequiredFields", func(t *testing.T) {
		req := PatientRequest{}
		errs := validatePatient(&req)
		assert.Contains(t, errs, "first_name")
		assert.Contains(t, errs, "last_name")
		assert.Contains(t, errs, "date_of_birth")
		assert.Contains(t, errs, "gender")
	})

	t.Run("FutureDateOfBirth", func(t *testing.T) {
		req := valid()
		req.DateOfBirth = time.Now().Add(24 * time.Hour)
		assert.Contains(t, validatePatient(&req), "date_of_birth")
	})

	t.Run("InvalidDominantHand", func(t *testing.T) {
		req := valid()
		req.DominantHand = "Both"
		assert.Contains(t, validatePatient(&req), "dominant_hand")

		req.DominantHand = models.HandAmbidextrous
		assert.Empty(t, validatePatient(&req))
	})
}
