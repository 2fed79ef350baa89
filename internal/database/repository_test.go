package database

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cogniscreen/cogniscreen/internal/database/models"
)

// The model defaults use gen_random_uuid(), which only Postgres provides,
// so the test schema is created by hand instead of through AutoMigrate.
const userTableDDL = `CREATE TABLE users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'doctor',
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const patientTableDDL = `CREATE TABLE patients (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	date_of_birth DATETIME NOT NULL,
	gender TEXT NOT NULL,
	phone TEXT,
	email TEXT,
	address TEXT,
	emergency_contact_name TEXT,
	emergency_contact_phone TEXT,
	medical_history TEXT,
	education_level TEXT,
	occupation TEXT,
	dominant_hand TEXT DEFAULT 'Right',
	notes TEXT,
	doctor_id TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled in-memory database would give each connection its own
	// empty schema.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec(userTableDDL).Error)
	require.NoError(t, db.Exec(patientTableDDL).Error)

	return db
}

func seedPatient(t *testing.T, db *gorm.DB, doctorID uuid.UUID, code string) *models.Patient {
	t.Helper()

	patient := &models.Patient{
		ID:           uuid.New(),
		Code:         code,
		FirstName:    "Margaret",
		LastName:     "Hale",
		DateOfBirth:  time.Date(1948, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:       models.GenderFemale,
		DominantHand: models.HandRight,
		DoctorID:     doctorID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func TestNextPatientCode(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstPatient", func(t *testing.T) {
		patients := &PatientService{db: openTestDB(t)}

		code, err := patients.NextPatientCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "P001", code)
	})

	t.Run("SequentialAllocation", func(t *testing.T) {
		patients := &PatientService{db: openTestDB(t)}
		doctorID := uuid.New()
		seedPatient(t, patients.db, doctorID, "P001")
		seedPatient(t, patients.db, doctorID, "P002")

		code, err := patients.NextPatientCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "P003", code)
	})

	t.Run("FourDigitCodesOutrankThreeDigit", func(t *testing.T) {
		// A lexical sort would put P999 ahead of P1000 and re-issue P1000.
		patients := &PatientService{db: openTestDB(t)}
		doctorID := uuid.New()
		seedPatient(t, patients.db, doctorID, "P998")
		seedPatient(t, patients.db, doctorID, "P999")
		seedPatient(t, patients.db, doctorID, "P1000")

		code, err := patients.NextPatientCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "P1001", code)
	})
}

func TestPatientServiceScoping(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	patients := &PatientService{db: db}

	owner := uuid.New()
	other := uuid.New()
	seedPatient(t, db, owner, "P001")

	t.Run("OwnerSeesPatient", func(t *testing.T) {
		patient, err := patients.GetPatient(ctx, owner, "P001")
		require.NoError(t, err)
		assert.Equal(t, "P001", patient.Code)
	})

	t.Run("OtherDoctorDoesNot", func(t *testing.T) {
		_, err := patients.GetPatient(ctx, other, "P001")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListIsScopedToDoctor", func(t *testing.T) {
		seedPatient(t, db, other, "P002")

		listed, err := patients.ListPatients(ctx, owner, 10, 0)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "P001", listed[0].Code)

		count, err := patients.CountPatients(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("DeactivateHidesPatient", func(t *testing.T) {
		require.NoError(t, patients.DeactivatePatient(ctx, owner, "P001"))

		_, err := patients.GetPatient(ctx, owner, "P001")
		assert.ErrorIs(t, err, ErrNotFound)

		err = patients.DeactivatePatient(ctx, owner, "P001")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	users := &UserService{db: openTestDB(t)}

	account := &models.User{
		Username:       "drsmith",
		Email:          "smith@clinic.example.com",
		HashedPassword: "not-a-real-hash",
		FullName:       "Dr. Smith",
		Role:           models.RoleDoctor,
		IsActive:       true,
	}
	require.NoError(t, users.CreateUser(ctx, account))
	require.NotEqual(t, uuid.Nil, account.ID)

	t.Run("GetByUsername", func(t *testing.T) {
		found, err := users.GetUserByUsername(ctx, "drsmith")
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
		assert.Equal(t, "smith@clinic.example.com", found.Email)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		_, err := users.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UsernameOrEmailTaken", func(t *testing.T) {
		taken, err := users.UsernameOrEmailTaken(ctx, "drsmith", "fresh@clinic.example.com")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = users.UsernameOrEmailTaken(ctx, "fresh", "fresh@clinic.example.com")
		require.NoError(t, err)
		assert.False(t, taken)
	})
}
