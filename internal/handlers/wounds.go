package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/curametric/wound-api/internal/auth"
	"github.com/curametric/wound-api/internal/records"
	"github.com/curametric/wound-api/models"
)

func ListWoundsHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	wounds, err := svc.List(r.Context(), userID)
	if err != nil {
		respondError(w, "list wounds", err)
		return
	}
	respondJSON(w, http.StatusOK, wounds)
}

func CreateWoundHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var wound models.Wound
	if err := json.NewDecoder(r.Body).Decode(&wound); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if err := svc.Create(r.Context(), userID, &wound); err != nil {
		respondError(w, "create wound", err)
		return
	}
	respondJSON(w, http.StatusCreated, wound)
}

func GetWoundHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundService) {
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
	wound, err := svc.Get(r.Context(), userID, id)
	if err != nil {
		respondError(w, "get wound", err)
		return
	}
	respondJSON(w, http.StatusOK, wound)
}

func UpdateWoundHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundService) {
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
	var in models.Wound
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	wound, err := svc.Update(r.Context(), userID, id, &in)
	if err != nil {
		respondError(w, "update wound", err)
		return
	}
	respondJSON(w, http.StatusOK, wound)
}

func DeleteWoundHandler(w http.ResponseWriter, r *http.Request, svc *records.WoundService) {
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
		respondError(w, "delete wound", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
