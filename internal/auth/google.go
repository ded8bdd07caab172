package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id. Signature, issuer, audience and expiry checks all happen inside
// idtoken.Validate; any of them failing comes back wrapped in
// ErrInvalidAssertion.
type GoogleVerifier struct {
	ClientID string
}

func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Claims, error) {
	payload, err := idtoken.Validate(ctx, assertion, v.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", ErrInvalidAssertion)
	}
	name, _ := payload.Claims["name"].(string)
	return &Claims{Email: email, Name: name}, nil
}
