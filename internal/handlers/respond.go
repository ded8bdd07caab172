package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/curametric/wound-api/internal/care"
	"github.com/curametric/wound-api/internal/ftpstore"
	"github.com/curametric/wound-api/internal/records"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps domain errors onto HTTP statuses. Messages stay generic;
// the details are in the server log, not the response.
func respondError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)

	var uploadErr *ftpstore.UploadError
	switch {
	case errors.Is(err, records.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
	case errors.Is(err, records.ErrValidation), errors.Is(err, care.ErrInvalidPhoto):
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
	case errors.As(err, &uploadErr):
		respondJSON(w, http.StatusBadGateway, map[string]any{"error": "photo upload failed"})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func urlID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
