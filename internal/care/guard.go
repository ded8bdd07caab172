package care

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/curametric/wound-api/models"
)

// Uploader pushes a payload to the remote media store and returns the
// store-relative reference it was stored under.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, dir string) (string, error)
}

// Guard runs the upload-then-commit sequence for wound care records. A local
// photo payload must be durably stored before the row is written, and any
// upload failure aborts the write, so a committed record's photo field is
// always resolvable against the store.
type Guard struct {
	uploader Uploader
	log      *slog.Logger
}

func NewGuard(uploader Uploader, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{uploader: uploader, log: log}
}

// Prepare rewrites a local photo payload into a durable reference by
// uploading it under the wound's day folder. Empty and already-durable
// references pass through byte-identical, so re-saving a stored record never
// re-uploads. Uploader errors propagate unmodified.
func (g *Guard) Prepare(ctx context.Context, patientID uint, wc *models.WoundCare) error {
	if ClassifyPhoto(wc.WoundPhoto) != PhotoLocal {
		return nil
	}

	data, filename, err := DecodePhoto(wc.WoundPhoto)
	if err != nil {
		return err
	}
	dir := PhotoDir(patientID, wc.WoundID, wc.CareDate.Time)
	ref, err := g.uploader.Upload(ctx, data, filename, dir)
	if err != nil {
		g.log.Error("wound care save aborted, photo upload failed",
			"wound_care_id", wc.ID, "wound_id", wc.WoundID, "error", err)
		return err
	}
	wc.WoundPhoto = ref
	return nil
}

// Save runs Prepare and only then commits the row; on a Prepare failure the
// store is never touched. Zero ID inserts, anything else writes the full
// row.
func (g *Guard) Save(ctx context.Context, db *gorm.DB, patientID uint, wc *models.WoundCare) error {
	if err := g.Prepare(ctx, patientID, wc); err != nil {
		return err
	}

	tx := db.WithContext(ctx)
	var err error
	if wc.ID == 0 {
		err = tx.Create(wc).Error
	} else {
		err = tx.Save(wc).Error
	}
	if err != nil {
		g.log.Error("wound care commit failed", "wound_care_id", wc.ID, "wound_id", wc.WoundID, "error", err)
		return err
	}
	g.log.Info("wound care saved", "wound_care_id", wc.ID, "wound_id", wc.WoundID, "photo", wc.WoundPhoto)
	return nil
}
