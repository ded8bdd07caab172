package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/markbates/goth/gothic"
)

// UserMiddleware authenticates /api requests. Mobile clients send a bearer
// token from the identity exchange; the browser flow rides on the goth
// session cookie instead. Either way the resolved user id lands in the
// request context under "userID".
func UserMiddleware(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				id, err := issuer.Parse(raw)
				if err != nil {
					http.Error(w, "Not Authorized", http.StatusUnauthorized)
					return
				}
				ctx := context.WithValue(r.Context(), "userID", strconv.FormatUint(uint64(id), 10))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			userID, ok := sessionUserID(r)
			if !ok {
				http.Error(w, "Not Authorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionUserID(r *http.Request) (string, bool) {
	session, err := gothic.Store.Get(r, "_gothic_session")
	if err != nil {
		return "", false
	}
	switch id := session.Values["user_id"].(type) {
	case uint:
		return strconv.FormatUint(uint64(id), 10), true
	case string:
		if id != "" {
			return id, true
		}
	}
	return "", false
}

// UserID pulls the authenticated user id out of a request context.
func UserID(ctx context.Context) (uint, bool) {
	s, ok := ctx.Value("userID").(string)
	if !ok || s == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
