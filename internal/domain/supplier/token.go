package supplier

import (
	"context"
	"errors"
	"time"
)

// TokenPair is the access/refresh credential bundle issued by the platform's
// authentication endpoint. It is replaced wholesale on every successful
// refresh and never partially mutated.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Validate checks the structural invariants of a token pair.
func (p *TokenPair) Validate() error {
	if p.AccessToken == "" {
		return errors.New("supplier: access token is empty")
	}
	if p.RefreshToken == "" {
		return errors.New("supplier: refresh token is empty")
	}
	if p.AccessExpiresAt.After(p.RefreshExpiresAt) {
		return errors.New("supplier: access expiry after refresh expiry")
	}
	return nil
}

// AccessValid reports whether the access token is usable at now, with at
// least buffer of validity remaining.
func (p *TokenPair) AccessValid(now time.Time, buffer time.Duration) bool {
	return now.Add(buffer).Before(p.AccessExpiresAt)
}

// AccessExpired reports whether the access token is hard-expired at now.
func (p *TokenPair) AccessExpired(now time.Time) bool {
	return !now.Before(p.AccessExpiresAt)
}

// RefreshValid reports whether the refresh token can still be exchanged at now.
func (p *TokenPair) RefreshValid(now time.Time) bool {
	return now.Before(p.RefreshExpiresAt)
}

// TokenStore is the port for the durable token record shared by all process
// instances. Load returns ErrTokenNotFound when no record exists yet.
type TokenStore interface {
	Load(ctx context.Context) (*TokenPair, error)
	Save(ctx context.Context, pair *TokenPair) error
}
