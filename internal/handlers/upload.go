package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/curametric/wound-api/internal/auth"
	"github.com/curametric/wound-api/internal/care"
	"github.com/curametric/wound-api/internal/ftpstore"
	"github.com/curametric/wound-api/models"
)

// UploadWoundPhotoHandler takes a multipart photo for one of the caller's
// wounds, stores it under the wound's day folder and returns the durable
// reference for the client to put in its care record. Uploading the same
// filename for the same wound and day overwrites the remote object.
func UploadWoundPhotoHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB, store *ftpstore.Store) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	woundID, err := strconv.ParseUint(r.FormValue("wound"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	careDate := time.Now()
	if raw := r.FormValue("care_date"); raw != "" {
		careDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
			return
		}
	}

	// a wound owned by someone else reads as not found
	var wound models.Wound
	if err := db.WithContext(r.Context()).
		Where("id = ? AND created_by_id = ?", woundID, userID).
		First(&wound).Error; err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}

	dir := care.PhotoDir(wound.PatientID, wound.ID, careDate)
	ref, err := store.Upload(r.Context(), data, header.Filename, dir)
	if err != nil {
		respondError(w, "upload wound photo", err)
		return
	}

	log.Printf("wound photo uploaded: %s", ref)
	respondJSON(w, http.StatusOK, map[string]any{
		"wound_photo": ref,
		"url":         store.PublicURL(ref),
	})
}
