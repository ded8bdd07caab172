package records

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/curametric/wound-api/internal/care"
	"github.com/curametric/wound-api/models"
)

var _ care.Uploader = (*fakeUploader)(nil)

type fakeUploader struct {
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, filename, dir string) (string, error) {
	f.calls++
	return dir + "/" + filename, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Patient{}, &models.Wound{}, &models.WoundCare{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newWoundCareService(db *gorm.DB) (*WoundCareService, *fakeUploader) {
	uploader := &fakeUploader{}
	guard := care.NewGuard(uploader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewWoundCareService(db, guard), uploader
}

func TestPatientListIsScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	bob := seedUser(t, db, "bob@clinic.cl")
	svc := NewPatientService(db)
	ctx := context.Background()

	first := models.Patient{Name: "Ana"}
	require.NoError(t, svc.Create(ctx, alice.ID, &first))
	second := models.Patient{Name: "Berta"}
	require.NoError(t, svc.Create(ctx, alice.ID, &second))
	other := models.Patient{Name: "Carla"}
	require.NoError(t, svc.Create(ctx, bob.ID, &other))

	alicePatients, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, alicePatients, 2)
	assert.Equal(t, "Ana", alicePatients[0].Name)
	assert.Equal(t, "Berta", alicePatients[1].Name)

	bobPatients, err := svc.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobPatients, 1)
	assert.Equal(t, "Carla", bobPatients[0].Name)
}

func TestForeignRecordReadsAsNotFound(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	bob := seedUser(t, db, "bob@clinic.cl")
	svc := NewPatientService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, svc.Create(ctx, alice.ID, &patient))

	// someone else's record and a nonexistent id must be indistinguishable
	_, foreignErr := svc.Get(ctx, bob.ID, patient.ID)
	_, missingErr := svc.Get(ctx, bob.ID, 99999)
	require.ErrorIs(t, foreignErr, ErrNotFound)
	require.ErrorIs(t, missingErr, ErrNotFound)

	_, err := svc.Update(ctx, bob.ID, patient.ID, &models.Patient{Name: "Hacked"})
	require.ErrorIs(t, err, ErrNotFound)

	owned, err := svc.Get(ctx, alice.ID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", owned.Name)
}

func TestCreateStampsProvenanceAndDefaults(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	svc := NewPatientService(db)
	ctx := context.Background()

	// client-supplied provenance is ignored
	patient := models.Patient{Name: "Ana", CreatedByID: 999, UpdatedByID: 999}
	require.NoError(t, svc.Create(ctx, alice.ID, &patient))

	assert.Equal(t, alice.ID, patient.CreatedByID)
	assert.Equal(t, alice.ID, patient.UpdatedByID)
	assert.Equal(t, "no last name", patient.LastName)
	assert.Equal(t, "no rut", patient.Rut)
	assert.Equal(t, "1900-01-01", patient.DOB.Format("2006-01-02"))
	assert.NotNil(t, patient.CronicDiseases)
}

func TestUpdatePreservesCreator(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	svc := NewPatientService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, svc.Create(ctx, alice.ID, &patient))

	updated, err := svc.Update(ctx, alice.ID, patient.ID, &models.Patient{Name: "Ana Maria", Rut: "12.345.678-9"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "12.345.678-9", updated.Rut)
	assert.Equal(t, alice.ID, updated.CreatedByID)
	assert.Equal(t, alice.ID, updated.UpdatedByID)
}

func TestWoundCreateRequiresOwnedPatient(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	bob := seedUser(t, db, "bob@clinic.cl")
	patientSvc := NewPatientService(db)
	woundSvc := NewWoundService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, patientSvc.Create(ctx, alice.ID, &patient))

	err := woundSvc.Create(ctx, bob.ID, &models.Wound{PatientID: patient.ID})
	require.ErrorIs(t, err, ErrNotFound)

	err = woundSvc.Create(ctx, alice.ID, &models.Wound{PatientID: patient.ID, WoundLocation: "left heel"})
	require.NoError(t, err)

	err = woundSvc.Create(ctx, alice.ID, &models.Wound{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestWoundCareListFiltersByWound(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	patientSvc := NewPatientService(db)
	woundSvc := NewWoundService(db)
	careSvc, _ := newWoundCareService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, patientSvc.Create(ctx, alice.ID, &patient))
	woundA := models.Wound{PatientID: patient.ID, WoundLocation: "left heel"}
	require.NoError(t, woundSvc.Create(ctx, alice.ID, &woundA))
	woundB := models.Wound{PatientID: patient.ID, WoundLocation: "sacrum"}
	require.NoError(t, woundSvc.Create(ctx, alice.ID, &woundB))

	for i := 0; i < 2; i++ {
		_, err := careSvc.Create(ctx, alice.ID, &models.WoundCare{WoundID: woundA.ID, CareDate: models.NewDate(2024, time.June, 1)})
		require.NoError(t, err)
	}
	_, err := careSvc.Create(ctx, alice.ID, &models.WoundCare{WoundID: woundB.ID, CareDate: models.NewDate(2024, time.June, 2)})
	require.NoError(t, err)

	all, err := careSvc.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := careSvc.List(ctx, alice.ID, woundA.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	for _, wc := range onlyA {
		assert.Equal(t, woundA.ID, wc.WoundID)
	}
}

func TestWoundCareValidation(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	patientSvc := NewPatientService(db)
	woundSvc := NewWoundService(db)
	careSvc, uploader := newWoundCareService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, patientSvc.Create(ctx, alice.ID, &patient))
	wound := models.Wound{PatientID: patient.ID}
	require.NoError(t, woundSvc.Create(ctx, alice.ID, &wound))

	_, err := careSvc.Create(ctx, alice.ID, &models.WoundCare{WoundID: wound.ID, WoundHeight: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = careSvc.Create(ctx, alice.ID, &models.WoundCare{WoundID: wound.ID, WoundNecroticTissue: 150})
	require.ErrorIs(t, err, ErrValidation)

	_, err = careSvc.Create(ctx, alice.ID, &models.WoundCare{})
	require.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, uploader.calls, "invalid payloads must be rejected before any transfer I/O")
}

func TestWoundCareDefaults(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	patientSvc := NewPatientService(db)
	woundSvc := NewWoundService(db)
	careSvc, _ := newWoundCareService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, patientSvc.Create(ctx, alice.ID, &patient))
	wound := models.Wound{PatientID: patient.ID}
	require.NoError(t, woundSvc.Create(ctx, alice.ID, &wound))

	wc, err := careSvc.Create(ctx, alice.ID, &models.WoundCare{WoundID: wound.ID})
	require.NoError(t, err)
	assert.Equal(t, "no exudate quantity", wc.WoundExudateQuantity)
	assert.Equal(t, "no exudate quality", wc.WoundExudateQuality)
	assert.Equal(t, "no primary dressing", wc.WoundPrimaryDressing)
	assert.Equal(t, "no notes", wc.WoundCareNotes)
	assert.Equal(t, "1900-01-01", wc.CareDate.Format("2006-01-02"))
	assert.Zero(t, wc.WoundHeight)
}

func TestPatientDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@clinic.cl")
	patientSvc := NewPatientService(db)
	woundSvc := NewWoundService(db)
	careSvc, _ := newWoundCareService(db)
	ctx := context.Background()

	patient := models.Patient{Name: "Ana"}
	require.NoError(t, patientSvc.Create(ctx, alice.ID, &patient))
	wound := models.Wound{PatientID: patient.ID}
	require.NoError(t, woundSvc.Create(ctx, alice.ID, &wound))
	_, err := careSvc.Create(ctx, alice.ID, &models.WoundCare{WoundID: wound.ID})
	require.NoError(t, err)

	require.NoError(t, patientSvc.Delete(ctx, alice.ID, patient.ID))

	var wounds, cares int64
	require.NoError(t, db.Model(&models.Wound{}).Count(&wounds).Error)
	require.NoError(t, db.Model(&models.WoundCare{}).Count(&cares).Error)
	assert.Zero(t, wounds)
	assert.Zero(t, cares)
}
