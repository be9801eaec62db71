package dropship

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchlab/backend/internal/domain/supplier"
	"github.com/launchlab/backend/internal/infrastructure/cache"
)

// tokenFixture drives a TokenManager with a controllable clock and counted
// authentication operations.
type tokenFixture struct {
	store     *cache.MemoryTokenStore
	now       time.Time
	authCalls int32
	authFn    func(ctx context.Context) (*supplier.TokenPair, error)
	refCalls  int32
	refFn     func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error)
}

func newTokenFixture(now time.Time) *tokenFixture {
	return &tokenFixture{store: cache.NewMemoryTokenStore(), now: now}
}

func (f *tokenFixture) pair(token string, accessIn, refreshIn time.Duration) *supplier.TokenPair {
	return &supplier.TokenPair{
		AccessToken:      token,
		RefreshToken:     "ref-" + token,
		AccessExpiresAt:  f.now.Add(accessIn),
		RefreshExpiresAt: f.now.Add(refreshIn),
	}
}

func (f *tokenFixture) manager(t *testing.T) *TokenManager {
	t.Helper()
	mgr, err := NewTokenManager(TokenManagerDeps{
		Store: f.store,
		Authenticate: func(ctx context.Context) (*supplier.TokenPair, error) {
			atomic.AddInt32(&f.authCalls, 1)
			if f.authFn == nil {
				t.Fatal("unexpected authenticate call")
			}
			return f.authFn(ctx)
		},
		Refresh: func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error) {
			atomic.AddInt32(&f.refCalls, 1)
			if f.refFn == nil {
				t.Fatal("unexpected refresh call")
			}
			return f.refFn(ctx, refreshToken)
		},
		Clock: func() time.Time { return f.now },
	})
	require.NoError(t, err)
	return mgr
}

func TestTokenManager_ColdStartAuthenticates(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		return f.pair("acc-1", 15*24*time.Hour, 180*24*time.Hour), nil
	}
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", token)
	assert.Equal(t, int32(1), f.authCalls)

	// The renewed pair is persisted for other instances.
	saved, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", saved.AccessToken)
}

func TestTokenManager_ValidHotTokenSkipsEverything(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		return f.pair("acc-1", 15*24*time.Hour, 180*24*time.Hour), nil
	}
	mgr := f.manager(t)

	_, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), f.authCalls)

	// Any number of subsequent callers reuse the hot copy.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := mgr.AccessToken(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "acc-1", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.authCalls)
	assert.Equal(t, int32(0), f.refCalls)
}

func TestTokenManager_ConcurrentRenewalIsSingleFlight(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		time.Sleep(20 * time.Millisecond) // hold the flight open
		return f.pair("acc-1", 15*24*time.Hour, 180*24*time.Hour), nil
	}
	mgr := f.manager(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := mgr.AccessToken(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "acc-1", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.authCalls)
}

func TestTokenManager_AdoptsTokenFromStore(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	// Another instance already renewed and saved a fresh pair.
	require.NoError(t, f.store.Save(context.Background(), f.pair("acc-other", 10*24*time.Hour, 180*24*time.Hour)))
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-other", token)
	assert.Equal(t, int32(0), f.authCalls)
	assert.Equal(t, int32(0), f.refCalls)
}

func TestTokenManager_NearExpiryRefreshes(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	// Access expires in 30 minutes, inside the one-hour renewal buffer.
	require.NoError(t, f.store.Save(context.Background(), f.pair("acc-old", 30*time.Minute, 90*24*time.Hour)))
	f.refFn = func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error) {
		assert.Equal(t, "ref-acc-old", refreshToken)
		return f.pair("acc-new", 15*24*time.Hour, 180*24*time.Hour), nil
	}
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-new", token)
	assert.Equal(t, int32(1), f.refCalls)
	assert.Equal(t, int32(0), f.authCalls)

	saved, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-new", saved.AccessToken)
}

func TestTokenManager_DeadPairReauthenticates(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	// Both tokens are past expiry: only a fresh authentication can help.
	require.NoError(t, f.store.Save(context.Background(), f.pair("acc-dead", -48*time.Hour, -time.Hour)))
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		return f.pair("acc-new", 15*24*time.Hour, 180*24*time.Hour), nil
	}
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-new", token)
	assert.Equal(t, int32(0), f.refCalls)
	assert.Equal(t, int32(1), f.authCalls)
}

func TestTokenManager_RateLimitedRenewalServesStale(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	// Access expired two hours ago, well inside the stale-serve window.
	require.NoError(t, f.store.Save(context.Background(), f.pair("acc-stale", -2*time.Hour, 90*24*time.Hour)))
	f.refFn = func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error) {
		return nil, fmt.Errorf("%w: code %d", supplier.ErrRateLimited, codeTooManyRequests)
	}
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-stale", token)
}

func TestTokenManager_StaleServeHasCeiling(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	// Access expired 25 hours ago, past the 24-hour stale-serve window.
	require.NoError(t, f.store.Save(context.Background(), f.pair("acc-stale", -25*time.Hour, 90*24*time.Hour)))
	f.refFn = func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error) {
		return nil, fmt.Errorf("%w: code %d", supplier.ErrRateLimited, codeTooManyRequests)
	}
	mgr := f.manager(t)

	_, err := mgr.AccessToken(context.Background())
	assert.ErrorIs(t, err, supplier.ErrAuthUnavailable)
}

func TestTokenManager_FailedEarlyRenewalServesCurrent(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	// Inside the renewal buffer but not yet expired.
	require.NoError(t, f.store.Save(context.Background(), f.pair("acc-live", 30*time.Minute, 90*24*time.Hour)))
	f.refFn = func(ctx context.Context, refreshToken string) (*supplier.TokenPair, error) {
		return nil, fmt.Errorf("%w: HTTP 500", supplier.ErrUpstream)
	}
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		return nil, fmt.Errorf("%w: HTTP 500", supplier.ErrUpstream)
	}
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-live", token)
}

func TestTokenManager_NoStaleNoMercy(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		return nil, fmt.Errorf("%w: code %d", supplier.ErrRateLimited, codeTooManyRequests)
	}
	mgr := f.manager(t)

	_, err := mgr.AccessToken(context.Background())
	assert.ErrorIs(t, err, supplier.ErrAuthUnavailable)
}

func TestTokenManager_Invalidate(t *testing.T) {
	f := newTokenFixture(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	f.authFn = func(ctx context.Context) (*supplier.TokenPair, error) {
		n := atomic.LoadInt32(&f.authCalls)
		return f.pair(fmt.Sprintf("acc-%d", n), 15*24*time.Hour, 180*24*time.Hour), nil
	}
	mgr := f.manager(t)

	token, err := mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", token)

	mgr.Invalidate()

	// The durable record still holds acc-1 with a long validity, so the next
	// caller adopts it instead of authenticating again.
	token, err = mgr.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", token)
	assert.Equal(t, int32(1), f.authCalls)
}
