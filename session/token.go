package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockroom/utils"
)

const tokenPrefix = "token_"

// TokenSource creates token strings. Clients treat tokens as opaque; the
// store only checks membership and expiry.
type TokenSource interface {
	NewToken(username string, issuedAt, expiresAt time.Time) (string, error)
}

// OpaqueTokens builds tokens from 244 bits of crypto/rand entropy. Neither the
// username nor the time is embedded.
type OpaqueTokens struct{}

func (OpaqueTokens) NewToken(string, time.Time, time.Time) (string, error) {
	a, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	b, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return tokenPrefix + compact(a) + compact(b), nil
}

// SignedTokens issues HS256 JWTs with a random jti.
type SignedTokens struct {
	Secret []byte
}

func (t SignedTokens) NewToken(username string, issuedAt, expiresAt time.Time) (string, error) {
	if len(t.Secret) == 0 {
		return "", errors.New("signed tokens need a secret")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return utils.GenerateSessionJWT(t.Secret, username, id.String(), issuedAt, expiresAt)
}

func compact(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
