package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/curametric/wound-api/models"
)

// ErrInvalidToken marks a bearer token that failed validation.
var ErrInvalidToken = errors.New("invalid token")

const defaultTokenTTL = 24 * time.Hour

// Issuer mints and validates the short-lived access tokens handed back after
// an identity exchange or login.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue signs an HS256 token bound to the user id.
func (i *Issuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates a bearer token and returns the user id it is bound to.
func (i *Issuer) Parse(token string) (uint, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, sub)
	}
	return uint(id), nil
}
