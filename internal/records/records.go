// Package records exposes the ownership-scoped operations on clinical rows.
// Every query is filtered by created_by, so a record owned by someone else
// is indistinguishable from one that does not exist.
package records

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/curametric/wound-api/internal/care"
	"github.com/curametric/wound-api/models"
)

// ErrNotFound covers both a missing id and a row owned by another user. The
// two cases are deliberately indistinguishable so ids cannot be enumerated.
var ErrNotFound = errors.New("record not found")

// ErrValidation marks a malformed payload, rejected before any store or
// transfer I/O.
var ErrValidation = errors.New("invalid record payload")

type PatientService struct {
	db *gorm.DB
}

func NewPatientService(db *gorm.DB) *PatientService {
	return &PatientService{db: db}
}

// List returns the caller's patients in creation order, oldest first.
func (s *PatientService) List(ctx context.Context, userID uint) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.db.WithContext(ctx).
		Where("created_by_id = ?", userID).
		Order("created_at ASC").
		Find(&patients).Error
	return patients, err
}

func (s *PatientService) Get(ctx context.Context, userID, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.WithContext(ctx).
		Where("id = ? AND created_by_id = ?", id, userID).
		First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// Create stamps the caller as creator and last modifier, ignoring whatever
// provenance the client sent.
func (s *PatientService) Create(ctx context.Context, userID uint, patient *models.Patient) error {
	patient.ID = 0
	patient.ApplyDefaults()
	patient.CreatedByID = userID
	patient.UpdatedByID = userID
	return s.db.WithContext(ctx).Create(patient).Error
}

func (s *PatientService) Update(ctx context.Context, userID, id uint, in *models.Patient) (*models.Patient, error) {
	patient, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patient.Name = in.Name
	patient.LastName = in.LastName
	patient.Rut = in.Rut
	patient.DOB = in.DOB
	patient.CronicDiseases = in.CronicDiseases
	patient.Predispositions = in.Predispositions
	patient.ApplyDefaults()
	patient.UpdatedByID = userID

	if err := s.db.WithContext(ctx).Save(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete removes the patient and everything under it. The cascade runs in
// one transaction so partially deleted patients are never observable.
func (s *PatientService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		woundIDs := tx.Model(&models.Wound{}).Select("id").Where("patient_id = ?", id)
		if err := tx.Where("wound_id IN (?)", woundIDs).Delete(&models.WoundCare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", id).Delete(&models.Wound{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Patient{}, id).Error
	})
}

type WoundService struct {
	db *gorm.DB
}

func NewWoundService(db *gorm.DB) *WoundService {
	return &WoundService{db: db}
}

func (s *WoundService) List(ctx context.Context, userID uint) ([]models.Wound, error) {
	var wounds []models.Wound
	err := s.db.WithContext(ctx).
		Where("created_by_id = ?", userID).
		Order("created_at ASC").
		Find(&wounds).Error
	return wounds, err
}

func (s *WoundService) Get(ctx context.Context, userID, id uint) (*models.Wound, error) {
	var wound models.Wound
	err := s.db.WithContext(ctx).
		Where("id = ? AND created_by_id = ?", id, userID).
		First(&wound).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wound, nil
}

// Create attaches a wound to one of the caller's patients. A patient id the
// caller does not own reads as not found.
func (s *WoundService) Create(ctx context.Context, userID uint, wound *models.Wound) error {
	if wound.PatientID == 0 {
		return fmt.Errorf("%w: patient is required", ErrValidation)
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ? AND created_by_id = ?", wound.PatientID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	wound.ID = 0
	wound.ApplyDefaults()
	wound.CreatedByID = userID
	wound.UpdatedByID = userID
	return s.db.WithContext(ctx).Create(wound).Error
}

func (s *WoundService) Update(ctx context.Context, userID, id uint, in *models.Wound) (*models.Wound, error) {
	wound, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	wound.WoundLocation = in.WoundLocation
	wound.WoundOrigin = in.WoundOrigin
	wound.WoundOriginDate = in.WoundOriginDate
	wound.ApplyDefaults()
	wound.UpdatedByID = userID

	if err := s.db.WithContext(ctx).Save(wound).Error; err != nil {
		return nil, err
	}
	return wound, nil
}

func (s *WoundService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wound_id = ?", id).Delete(&models.WoundCare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Wound{}, id).Error
	})
}

// WoundCareService routes every write through the photo guard, so a care
// record is only committed once its photo, if any, is durably stored.
type WoundCareService struct {
	db    *gorm.DB
	guard *care.Guard
}

func NewWoundCareService(db *gorm.DB, guard *care.Guard) *WoundCareService {
	return &WoundCareService{db: db, guard: guard}
}

// List returns the caller's care records oldest first; woundID filters to a
// single wound when non-zero.
func (s *WoundCareService) List(ctx context.Context, userID, woundID uint) ([]models.WoundCare, error) {
	q := s.db.WithContext(ctx).Where("created_by_id = ?", userID)
	if woundID != 0 {
		q = q.Where("wound_id = ?", woundID)
	}
	var cares []models.WoundCare
	err := q.Order("created_at ASC").Find(&cares).Error
	return cares, err
}

func (s *WoundCareService) Get(ctx context.Context, userID, id uint) (*models.WoundCare, error) {
	var wc models.WoundCare
	err := s.db.WithContext(ctx).
		Where("id = ? AND created_by_id = ?", id, userID).
		First(&wc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wc, nil
}

func (s *WoundCareService) Create(ctx context.Context, userID uint, wc *models.WoundCare) (*models.WoundCare, error) {
	if wc.WoundID == 0 {
		return nil, fmt.Errorf("%w: wound is required", ErrValidation)
	}
	wound, err := s.ownedWound(ctx, userID, wc.WoundID)
	if err != nil {
		return nil, err
	}
	if err := validateWoundCare(wc); err != nil {
		return nil, err
	}

	wc.ID = 0
	wc.ApplyDefaults()
	wc.CreatedByID = userID
	wc.UpdatedByID = userID
	if err := s.guard.Save(ctx, s.db, wound.PatientID, wc); err != nil {
		return nil, err
	}
	return wc, nil
}

func (s *WoundCareService) Update(ctx context.Context, userID, id uint, in *models.WoundCare) (*models.WoundCare, error) {
	wc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	// the record stays on its wound; moving visits between wounds is not a thing
	wound, err := s.ownedWound(ctx, userID, wc.WoundID)
	if err != nil {
		return nil, err
	}
	if err := validateWoundCare(in); err != nil {
		return nil, err
	}

	wc.CareDate = in.CareDate
	wc.WoundHeight = in.WoundHeight
	wc.WoundWidth = in.WoundWidth
	wc.WoundDepth = in.WoundDepth
	wc.WoundNecroticTissue = in.WoundNecroticTissue
	wc.WoundSloughedTissue = in.WoundSloughedTissue
	wc.WoundGranulationTissue = in.WoundGranulationTissue
	wc.WoundExudateQuantity = in.WoundExudateQuantity
	wc.WoundExudateQuality = in.WoundExudateQuality
	wc.WoundDebridement = in.WoundDebridement
	wc.WoundPrimaryDressing = in.WoundPrimaryDressing
	wc.WoundSecondaryDressing = in.WoundSecondaryDressing
	wc.WoundNextCare = in.WoundNextCare
	wc.WoundCareNotes = in.WoundCareNotes
	wc.WoundPhoto = in.WoundPhoto
	wc.ApplyDefaults()
	wc.UpdatedByID = userID

	if err := s.guard.Save(ctx, s.db, wound.PatientID, wc); err != nil {
		return nil, err
	}
	return wc, nil
}

func (s *WoundCareService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.WoundCare{}, id).Error
}

func (s *WoundCareService) ownedWound(ctx context.Context, userID, woundID uint) (*models.Wound, error) {
	var wound models.Wound
	err := s.db.WithContext(ctx).
		Where("id = ? AND created_by_id = ?", woundID, userID).
		First(&wound).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wound, nil
}

func validateWoundCare(wc *models.WoundCare) error {
	if wc.WoundHeight < 0 || wc.WoundWidth < 0 || wc.WoundDepth < 0 {
		return fmt.Errorf("%w: dimensions must not be negative", ErrValidation)
	}
	for _, pct := range []float64{wc.WoundNecroticTissue, wc.WoundSloughedTissue, wc.WoundGranulationTissue} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: tissue percentages must be between 0 and 100", ErrValidation)
		}
	}
	return nil
}
