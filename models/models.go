package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is an authenticated clinician. Every clinical row carries a
// created_by reference to the user that made it, and that reference is the
// whole authorization model: records are visible and mutable to their
// creator only.
type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `json:"username" gorm:"size:255;not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	FirstName string    `json:"first_name" gorm:"size:255"`
	LastName  string    `json:"last_name" gorm:"size:255"`
	Password  string    `json:"-" gorm:"size:255"`
}

type Patient struct {
	ID              uint              `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Name            string            `json:"name" gorm:"size:100;not null"`
	LastName        string            `json:"last_name" gorm:"size:100;not null"`
	Rut             string            `json:"rut" gorm:"size:12;not null"`
	DOB             Date              `json:"dob"`
	CronicDiseases  datatypes.JSONMap `json:"cronic_diseases"`
	Predispositions datatypes.JSONMap `json:"predispositions"`
	CreatedByID     uint              `json:"created_by" gorm:"not null;index"`
	UpdatedByID     uint              `json:"updated_by" gorm:"not null"`
	CreatedBy       *User             `json:"-" gorm:"foreignKey:CreatedByID"`
	UpdatedBy       *User             `json:"-" gorm:"foreignKey:UpdatedByID"`
	Wounds          []Wound           `json:"wounds,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

type Wound struct {
	ID              uint        `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	PatientID       uint        `json:"patient" gorm:"not null;index"`
	WoundLocation   string      `json:"wound_location" gorm:"size:100;not null"`
	WoundOrigin     string      `json:"wound_origin" gorm:"size:100;not null"`
	WoundOriginDate Date        `json:"wound_origin_date"`
	CreatedByID     uint        `json:"created_by" gorm:"not null;index"`
	UpdatedByID     uint        `json:"updated_by" gorm:"not null"`
	CreatedBy       *User       `json:"-" gorm:"foreignKey:CreatedByID"`
	UpdatedBy       *User       `json:"-" gorm:"foreignKey:UpdatedByID"`
	WoundCares      []WoundCare `json:"wound_cares,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

// WoundCare is one dated clinical assessment of a wound. WoundPhoto holds
// either nothing, a base64 data URI the client staged locally, or the
// store-relative reference of an already uploaded photo. A committed row
// never holds a local payload: the save path uploads first and rewrites the
// field before the write.
type WoundCare struct {
	ID                     uint              `json:"id" gorm:"primarykey"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	WoundID                uint              `json:"wound" gorm:"not null;index"`
	CareDate               Date              `json:"care_date"`
	WoundHeight            float64           `json:"wound_height"`
	WoundWidth             float64           `json:"wound_width"`
	WoundDepth             float64           `json:"wound_depth"`
	WoundNecroticTissue    float64           `json:"wound_necrotic_tissue"`
	WoundSloughedTissue    float64           `json:"wound_sloughed_tissue"`
	WoundGranulationTissue float64           `json:"wound_granulation_tissue"`
	WoundExudateQuantity   string            `json:"wound_exudate_quantity"`
	WoundExudateQuality    string            `json:"wound_exudate_quality"`
	WoundDebridement       bool              `json:"wound_debridement"`
	WoundPrimaryDressing   string            `json:"wound_primary_dressing"`
	WoundSecondaryDressing datatypes.JSONMap `json:"wound_secondary_dressing"`
	WoundNextCare          Date              `json:"wound_next_care"`
	WoundCareNotes         string            `json:"wound_care_notes"`
	WoundPhoto             string            `json:"wound_photo"`
	CreatedByID            uint              `json:"created_by" gorm:"not null;index"`
	UpdatedByID            uint              `json:"updated_by" gorm:"not null"`
	CreatedBy              *User             `json:"-" gorm:"foreignKey:CreatedByID"`
	UpdatedBy              *User             `json:"-" gorm:"foreignKey:UpdatedByID"`
}

// defaultDate mirrors the 1900-01-01 placeholder the clinical forms use for
// unset dates. Absence is not a persisted state for any of these fields.
func defaultDate() Date {
	return NewDate(1900, time.January, 1)
}

// ApplyDefaults backfills unset fields so every persisted row carries the
// documented placeholder values instead of empty strings or zero dates.
func (p *Patient) ApplyDefaults() {
	if p.Name == "" {
		p.Name = "no name"
	}
	if p.LastName == "" {
		p.LastName = "no last name"
	}
	if p.Rut == "" {
		p.Rut = "no rut"
	}
	if p.DOB.IsZero() {
		p.DOB = defaultDate()
	}
	if p.CronicDiseases == nil {
		p.CronicDiseases = datatypes.JSONMap{}
	}
	if p.Predispositions == nil {
		p.Predispositions = datatypes.JSONMap{}
	}
}

func (w *Wound) ApplyDefaults() {
	if w.WoundLocation == "" {
		w.WoundLocation = "no wound location"
	}
	if w.WoundOrigin == "" {
		w.WoundOrigin = "no wound cause"
	}
	if w.WoundOriginDate.IsZero() {
		w.WoundOriginDate = defaultDate()
	}
}

func (wc *WoundCare) ApplyDefaults() {
	if wc.CareDate.IsZero() {
		wc.CareDate = defaultDate()
	}
	if wc.WoundExudateQuantity == "" {
		wc.WoundExudateQuantity = "no exudate quantity"
	}
	if wc.WoundExudateQuality == "" {
		wc.WoundExudateQuality = "no exudate quality"
	}
	if wc.WoundPrimaryDressing == "" {
		wc.WoundPrimaryDressing = "no primary dressing"
	}
	if wc.WoundSecondaryDressing == nil {
		wc.WoundSecondaryDressing = datatypes.JSONMap{}
	}
	if wc.WoundNextCare.IsZero() {
		wc.WoundNextCare = defaultDate()
	}
	if wc.WoundCareNotes == "" {
		wc.WoundCareNotes = "no notes"
	}
}
