package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cogniscreen/cogniscreen/internal/database/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserService provides account persistence operations
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a user service bound to the connection
func (c *Connection) NewUserService() *UserService {
	return &UserService{db: c.db}
}

// CreateUser persists a new account. Username and email uniqueness is
// enforced by the database; a duplicate surfaces as a constraint error.
func (u *UserService) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves an account by ID
func (u *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves an account by username
func (u *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// UsernameOrEmailTaken reports whether either identifier is already in use
func (u *UserService) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	return count > 0, nil
}

// PatientService provides patient persistence operations. Every query is
// scoped to the owning doctor; clinicians never see each other's patients.
type PatientService struct {
	db *gorm.DB
}

// NewPatientService creates a patient service bound to the connection
func (c *Connection) NewPatientService() *PatientService {
	return &PatientService{db: c.db}
}

// NextPatientCode allocates the next human-facing patient code (P001,
// P002, ...). Codes are global, not per doctor.
func (p *PatientService) NextPatientCode(ctx context.Context) (string, error) {
	var lastCode string
	// Longer codes sort after shorter ones so P1000 outranks P999; a plain
	// lexical sort would re-issue codes past the three-digit range.
	err := p.db.WithContext(ctx).Model(&models.Patient{}).
		Select("code").
		Order("LENGTH(code) DESC, code DESC").
		Limit(1).
		Scan(&lastCode).Error
	if err != nil {
		return "", fmt.Errorf("failed to read last patient code: %w", err)
	}

	next := 1
	if strings.HasPrefix(lastCode, "P") {
		var n int
		if _, err := fmt.Sscanf(lastCode, "P%d", &n); err == nil {
			next = n + 1
		}
	}

	return fmt.Sprintf("P%03d", next), nil
}

// CreatePatient persists a new patient record
func (p *PatientService) CreatePatient(ctx context.Context, patient *models.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	if err := p.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// GetPatient retrieves one active patient owned by the doctor
func (p *PatientService) GetPatient(ctx context.Context, doctorID uuid.UUID, code string) (*models.Patient, error) {
	var patient models.Patient
	err := p.db.WithContext(ctx).
		Where("code = ? AND doctor_id = ? AND is_active = ?", code, doctorID, true).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// ListPatients returns the doctor's active patients, most recent first
func (p *PatientService) ListPatients(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]models.Patient, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var patients []models.Patient
	err := p.db.WithContext(ctx).
		Where("doctor_id = ? AND is_active = ?", doctorID, true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// UpdatePatient persists changes to an existing patient
func (p *PatientService) UpdatePatient(ctx context.Context, patient *models.Patient) error {
	if err := p.db.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// DeactivatePatient soft-deletes a patient owned by the doctor
func (p *PatientService) DeactivatePatient(ctx context.Context, doctorID uuid.UUID, code string) error {
	result := p.db.WithContext(ctx).Model(&models.Patient{}).
		Where("code = ? AND doctor_id = ? AND is_active = ?", code, doctorID, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate patient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPatients returns the number of active patients for a doctor
func (p *PatientService) CountPatients(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Patient{}).
		Where("doctor_id = ? AND is_active = ?", doctorID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}
