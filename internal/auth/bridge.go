package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/curametric/wound-api/models"
)

// ErrInvalidAssertion is the only error surfaced for a failed identity
// exchange. Which verification step failed stays out of it, so callers learn
// nothing beyond "invalid credential".
var ErrInvalidAssertion = errors.New("invalid credential")

// Claims are the verified fields the bridge needs from an identity
// assertion.
type Claims struct {
	Email string
	Name  string
}

// AssertionVerifier checks a third-party identity assertion (signature,
// audience, expiry) and returns its verified claims.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*Claims, error)
}

// Bridge exchanges verified third-party assertions for local users,
// provisioning a user the first time an identity shows up.
type Bridge struct {
	db       *gorm.DB
	verifier AssertionVerifier
}

func NewBridge(db *gorm.DB, verifier AssertionVerifier) *Bridge {
	return &Bridge{db: db, verifier: verifier}
}

// Exchange verifies the assertion and resolves the user behind it, creating
// one on first sight. The bool reports whether this call provisioned the
// user. No user is ever created for a failed verification.
func (b *Bridge) Exchange(ctx context.Context, assertion string) (*models.User, bool, error) {
	claims, err := b.verifier.Verify(ctx, assertion)
	if err != nil {
		if errors.Is(err, ErrInvalidAssertion) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if claims.Email == "" {
		return nil, false, ErrInvalidAssertion
	}
	return b.FindOrCreate(ctx, claims)
}

// FindOrCreate resolves the user whose username is the verified email. The
// unique username index makes concurrent first logins safe: the loser's
// insert fails and falls back to reading the winner's row, so exactly one
// user exists and at most one caller sees it as newly provisioned.
func (b *Bridge) FindOrCreate(ctx context.Context, claims *Claims) (*models.User, bool, error) {
	db := b.db.WithContext(ctx)

	var user models.User
	err := db.Where("username = ?", claims.Email).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{
		Username:  claims.Email,
		Email:     claims.Email,
		FirstName: claims.Name,
	}
	if createErr := db.Create(&user).Error; createErr != nil {
		// lost the race against a concurrent first login; take their row
		if err := db.Where("username = ?", claims.Email).First(&user).Error; err != nil {
			return nil, false, createErr
		}
		return &user, false, nil
	}
	return &user, true, nil
}
