package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/markbates/goth/gothic"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/curametric/wound-api/internal/auth"
	"github.com/curametric/wound-api/models"
)

// GoogleLoginHandler exchanges a Google ID token for a local access token.
// This is the mobile client's login: the app obtains the ID token itself and
// posts it here as {"token": ...}. A failed verification answers with one
// generic message and provisions nothing.
func GoogleLoginHandler(w http.ResponseWriter, r *http.Request, bridge *auth.Bridge, issuer *auth.Issuer) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid credential"})
		return
	}

	user, created, err := bridge.Exchange(r.Context(), body.Token)
	if err != nil {
		log.Println("google login rejected:", err)
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid credential"})
		return
	}
	if created {
		log.Println("new user provisioned:", user.Username)
	}

	token, err := issuer.Issue(user)
	if err != nil {
		log.Println("failed to issue token:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"jwt": token})
}

// UserLoginHandler finishes the browser OAuth flow and stores the resolved
// user id in the session cookie.
func UserLoginHandler(w http.ResponseWriter, r *http.Request, bridge *auth.Bridge) {
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Println("oauth callback failed:", err)
		http.Error(w, "Not Authorized", http.StatusUnauthorized)
		return
	}

	user, _, err := bridge.FindOrCreate(r.Context(), &auth.Claims{Email: gothUser.Email, Name: gothUser.Name})
	if err != nil {
		log.Println("failed to resolve user:", err)
		http.Error(w, "Failed to resolve user", http.StatusInternalServerError)
		return
	}

	session, err := gothic.Store.Get(r, "_gothic_session")
	if err != nil {
		log.Println("failed to get session:", err)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		log.Println("failed to save session:", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/api/profile", http.StatusTemporaryRedirect)
}

// RegisterUserHandler creates a user from direct credentials, the
// non-Google way in.
func RegisterUserHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "username and password are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}

	user := models.User{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  string(hash),
	}
	if err := db.WithContext(r.Context()).Create(&user).Error; err != nil {
		log.Println("failed to create user:", err)
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "could not create user"})
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// GetUserHandler returns the authenticated user's own profile.
func GetUserHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]any{"error": "record not found"})
			return
		}
		respondError(w, "get user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
