package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/curametric/wound-api/internal/auth"
	"github.com/curametric/wound-api/internal/records"
	"github.com/curametric/wound-api/models"
)

// ListWoundCaresHandler returns the caller's care records in chronological
// order, optionally narrowed to one wound via ?wound=<id>.
func ListWoundCaresHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundCareService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var woundID uint
	if raw := r.URL.Query().Get("wound"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
			return
		}
		woundID = uint(parsed)
	}

	cares, err := svc.List(r.Context(), userID, woundID)
	if err != nil {
		respondError(w, "list wound cares", err)
		return
	}
	respondJSON(w, http.StatusOK, cares)
}

// CreateWoundCareHandler saves a new care record. When the payload carries a
// locally staged photo the save only goes through once the photo is durably
// stored; an upload failure rejects the whole mutation.
func CreateWoundCareHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundCareService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var in models.WoundCare
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	wc, err := svc.Create(r.Context(), userID, &in)
	if err != nil {
		respondError(w, "create wound care", err)
		return
	}
	respondJSON(w, http.StatusCreated, wc)
}

func GetWoundCareHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundCareService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
		return
	}
	wc, err := svc.Get(r.Context(), userID, id)
	if err != nil {
		respondError(w, "get wound care", err)
		return
	}
	respondJSON(w, http.StatusOK, wc)
}

func UpdateWoundCareHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundCareService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
		return
	}
	var in models.WoundCare
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	wc, err := svc.Update(r.Context(), userID, id, &in)
	if err != nil {
		respondError(w, "update wound care", err)
		return
	}
	respondJSON(w, http.StatusOK, wc)
}

func DeleteWoundCareHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundCareService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
		return
	}
	if err := svc.Delete(r.Context(), userID, id); err != nil {
		respondError(w, "delete wound care", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
