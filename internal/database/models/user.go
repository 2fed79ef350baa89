// Package models contains the database models for the screening platform:
// clinician accounts and the patients they manage. Analysis results are
// deliberately not persisted; transcripts are processed in memory only.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleDoctor     = "doctor"
	RoleAdmin      = "admin"
	RoleResearcher = "researcher"
)

// User represents a clinician account
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username       string    `gorm:"size:50;unique;not null;index" json:"username"`
	Email          string    `gorm:"size:100;unique;not null;index" json:"email"`
	HashedPassword string    `gorm:"size:128;not null" json:"-"`
	FullName       string    `gorm:"size:100;not null" json:"full_name"`
	Role           string    `gorm:"size:20;not null;default:'doctor'" json:"role"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Relationships
	Patients []Patient `gorm:"foreignKey:DoctorID" json:"patients,omitempty"`
}

// ValidRole reports whether the role is one of the supported account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleDoctor, RoleAdmin, RoleResearcher:
		return true
	}
	return false
}
