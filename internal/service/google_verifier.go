package service

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrInvalidGoogleToken = errors.New("invalid google token")

// GoogleIdentity is what a verified Google ID token asserts about the caller.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleIdentity, error)
}

type idTokenVerifier struct {
	audience string
}

// NewGoogleVerifier validates ID tokens issued for the given OAuth client ID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &idTokenVerifier{audience: clientID}
}

func (v *idTokenVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	if v.audience == "" {
		return nil, fmt.Errorf("%w: GOOGLE_CLIENT_ID is not configured", ErrInvalidGoogleToken)
	}
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	return &GoogleIdentity{Subject: payload.Subject, Email: email, EmailVerified: verified}, nil
}
