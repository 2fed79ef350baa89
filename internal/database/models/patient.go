package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender values
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Dominant hand values
const (
	HandRight        = "Right"
	HandLeft         = "Left"
	HandAmbidextrous = "Ambidextrous"
)

// Patient represents a patient under a clinician's care. Code is the
// human-facing identifier (P001, P002, ...) assigned at creation.
type Patient struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code string    `gorm:"size:20;unique;not null;index" json:"patient_id"`

	FirstName   string    `gorm:"size:50;not null" json:"first_name"`
	LastName    string    `gorm:"size:50;not null" json:"last_name"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`
	Gender      string    `gorm:"size:10;not null" json:"gender"`

	Phone                 string `gorm:"size:20" json:"phone,omitempty"`
	Email                 string `gorm:"size:100" json:"email,omitempty"`
	Address               string `gorm:"type:text" json:"address,omitempty"`
	EmergencyContactName  string `gorm:"size:100" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `gorm:"size:20" json:"emergency_contact_phone,omitempty"`

	MedicalHistory string `gorm:"type:text" json:"medical_history,omitempty"`
	EducationLevel string `gorm:"size:50" json:"education_level,omitempty"`
	Occupation     string `gorm:"size:100" json:"occupation,omitempty"`
	DominantHand   string `gorm:"size:10;default:'Right'" json:"dominant_hand,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`

	DoctorID uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Relationships
	Doctor *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// ValidGender reports whether the gender value is supported.
func ValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
