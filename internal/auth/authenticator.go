package auth

import (
	"errors"

	"github.com/AnshRaj112/devicehub-backend/internal/credentials"
)

// HeaderToken carries the device's bearer token.
const HeaderToken = "X-API-Token"

var ErrUnauthorized = errors.New("invalid or missing API token")

// TokenResolver maps a token to the device it was issued for.
type TokenResolver interface {
	Resolve(token string) (string, error)
}

// Authenticator turns a raw token into a device id.
type Authenticator struct {
	tokens TokenResolver
}

func NewAuthenticator(tokens TokenResolver) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate returns ErrUnauthorized for a missing token or one the store does not know.
func (a *Authenticator) Authenticate(rawToken string) (string, error) {
	if rawToken == "" {
		return "", ErrUnauthorized
	}
	deviceID, err := a.tokens.Resolve(rawToken)
	if err != nil {
		if errors.Is(err, credentials.ErrInvalidCredential) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	return deviceID, nil
}
