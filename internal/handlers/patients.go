package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/curametric/wound-api/internal/auth"
	"github.com/curametric/wound-api/internal/records"
	"github.com/curametric/wound-api/models"
)

func ListPatientsHandler(w http.ResponseWriter, r *http.Request, svc *records.PatientService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	patients, err := svc.List(r.Context(), userID)
	if err != nil {
		respondError(w, "list patients", err)
		return
	}
	respondJSON(w, http.StatusOK, patients)
}

func CreatePatientHandler(w http.ResponseWriter, r *http.Request, svc *records.PatientService) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var patient models.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if err := svc.Create(r.Context(), userID, &patient); err != nil {
		respondError(w, "create patient", err)
		return
	}
	respondJSON(w, http.StatusCreated, patient)
}

func GetPatientHandler(w http.ResponseWriter, r *http.Request, svc *records.PatientService) {
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
	patient, err := svc.Get(r.Context(), userID, id)
	if err != nil {
		respondError(w, "get patient", err)
		return
	}
	respondJSON(w, http.StatusOK, patient)
}

func UpdatePatientHandler(w http.ResponseWriter, r *http.Request, svc *records.PatientService) {
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
	var in models.Patient
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	patient, err := svc.Update(r.Context(), userID, id, &in)
	if err != nil {
		respondError(w, "update patient", err)
		return
	}
	respondJSON(w, http.StatusOK, patient)
}

func DeletePatientHandler(w http.ResponseWriter, r *http.Request, svc *records.PatientService) {
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
		respondError(w, "delete patient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
