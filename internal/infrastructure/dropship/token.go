package dropship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// TokenManagerDeps bundles constructor inputs for the token manager.
// Authenticate and Refresh perform the actual platform calls; they are
// supplied by the client so the manager stays free of HTTP concerns.
type TokenManagerDeps struct {
	Store             supplier.TokenStore
	Authenticate      func(ctx context.Context) (*supplier.TokenPair, error)
	Refresh           func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error)
	Clock             func() time.Time
	Logger            *zap.Logger
	RefreshBuffer     time.Duration
	StaleServeCeiling time.Duration
}

// TokenManager owns the in-process hot copy of the platform token pair.
// The platform's authentication endpoint tolerates roughly one call per
// several minutes, so concurrent callers that need a renewal share a single
// in-flight operation, and a rate-limited renewal degrades to serving the
// stale token rather than failing the caller.
type TokenManager struct {
	store        supplier.TokenStore
	authenticate func(ctx context.Context) (*supplier.TokenPair, error)
	refresh      func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error)
	clock        func() time.Time
	logger       *zap.Logger

	refreshBuffer     time.Duration
	staleServeCeiling time.Duration

	mu  sync.RWMutex
	hot *supplier.TokenPair

	sf singleflight.Group
}

// NewTokenManager creates a token manager with the supplied dependencies.
func NewTokenManager(deps TokenManagerDeps) (*TokenManager, error) {
	if deps.Store == nil {
		return nil, errors.New("dropship: token store is required")
	}
	if deps.Authenticate == nil || deps.Refresh == nil {
		return nil, errors.New("dropship: authenticate and refresh operations are required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.RefreshBuffer <= 0 {
		deps.RefreshBuffer = defaultRefreshBuffer
	}
	if deps.StaleServeCeiling <= 0 {
		deps.StaleServeCeiling = defaultStaleServeCeiling
	}
	return &TokenManager{
		store:             deps.Store,
		authenticate:      deps.Authenticate,
		refresh:           deps.Refresh,
		clock:             clock,
		logger:            logger,
		refreshBuffer:     deps.RefreshBuffer,
		staleServeCeiling: deps.StaleServeCeiling,
	}, nil
}

// AccessToken returns a usable access token, renewing it when needed. While
// the hot copy is inside its validity window no network or store access
// happens at all.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if pair := m.current(); pair != nil && pair.AccessValid(m.clock(), m.refreshBuffer) {
		return pair.AccessToken, nil
	}

	token, err, _ := m.sf.Do("token", func() (any, error) {
		return m.renew(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// Invalidate drops the hot copy, forcing the next caller through the store
// and, if needed, a renewal. Used when the platform rejects a token early.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.hot = nil
	m.mu.Unlock()
}

func (m *TokenManager) current() *supplier.TokenPair {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hot
}

func (m *TokenManager) setHot(pair *supplier.TokenPair) {
	m.mu.Lock()
	m.hot = pair
	m.mu.Unlock()
}

// renew obtains a fresh access token, preferring the cheapest source that
// works: the hot copy a concurrent flight just renewed, the durable record
// another instance refreshed, a refresh-token exchange, and finally a full
// authentication.
func (m *TokenManager) renew(ctx context.Context) (string, error) {
	now := m.clock()

	if pair := m.current(); pair != nil && pair.AccessValid(now, m.refreshBuffer) {
		return pair.AccessToken, nil
	}

	if pair, err := m.store.Load(ctx); err == nil && pair != nil {
		m.setHot(pair)
		if pair.AccessValid(now, m.refreshBuffer) {
			m.logger.Debug("adopted token renewed by another instance")
			return pair.AccessToken, nil
		}
	} else if err != nil && !errors.Is(err, supplier.ErrTokenNotFound) {
		m.logger.Warn("token store load failed", zap.Error(err))
	}

	stale := m.current()

	var pair *supplier.TokenPair
	var err error
	if stale != nil && stale.RefreshValid(now) {
		pair, err = m.refresh(ctx, stale.RefreshToken)
		if err != nil && !errors.Is(err, supplier.ErrRateLimited) {
			m.logger.Warn("token refresh failed, re-authenticating", zap.Error(err))
			pair, err = m.authenticate(ctx)
		}
	} else {
		pair, err = m.authenticate(ctx)
	}
	if err != nil {
		return m.degrade(now, stale, err)
	}

	if verr := pair.Validate(); verr != nil {
		return "", fmt.Errorf("%w: %v", supplier.ErrMalformedResponse, verr)
	}
	m.setHot(pair)
	if serr := m.store.Save(ctx, pair); serr != nil {
		// The instance keeps working off the hot copy; only cold starts on
		// other instances miss out until the next successful save.
		m.logger.Warn("token store save failed", zap.Error(serr))
	}
	m.logger.Info("platform token renewed",
		zap.Time("accessExpiresAt", pair.AccessExpiresAt),
		zap.Time("refreshExpiresAt", pair.RefreshExpiresAt),
	)
	return pair.AccessToken, nil
}

// degrade decides whether a failed renewal can still be served from the stale
// pair. Degraded availability beats a hard failure as long as the stale token
// is not catastrophically old.
func (m *TokenManager) degrade(now time.Time, stale *supplier.TokenPair, cause error) (string, error) {
	if stale == nil {
		return "", fmt.Errorf("%w: %v", supplier.ErrAuthUnavailable, cause)
	}
	if errors.Is(cause, supplier.ErrRateLimited) {
		if now.Before(stale.AccessExpiresAt.Add(m.staleServeCeiling)) {
			m.logger.Warn("auth endpoint rate limited, serving stale access token",
				zap.Time("accessExpiresAt", stale.AccessExpiresAt))
			return stale.AccessToken, nil
		}
		return "", fmt.Errorf("%w: %v", supplier.ErrAuthUnavailable, cause)
	}
	if !stale.AccessExpired(now) {
		// Near-expiry renewal failed but the current token is still live.
		m.logger.Warn("token renewal failed, serving current token until expiry", zap.Error(cause))
		return stale.AccessToken, nil
	}
	return "", fmt.Errorf("%w: %v", supplier.ErrAuthUnavailable, cause)
}
