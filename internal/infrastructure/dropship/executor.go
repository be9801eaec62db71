package dropship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/launchlab/backend/internal/domain/supplier"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response

	// accessTokenHeader carries the platform access token
	accessTokenHeader = "DS-Access-Token"
)

// apiCall describes one platform API invocation. Token is left empty on the
// authentication endpoints.
type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Token  string
}

// Executor performs platform HTTP calls through the throttler and retries
// transient rate-limit outcomes with linear backoff. Every attempt holds a
// throttle slot only for the duration of its HTTP exchange.
type Executor struct {
	baseURL     string
	httpClient  *http.Client
	throttler   *Throttler
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger

	// sleep waits for the backoff delay; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor for the given configuration. httpClient may
// be nil, in which case a client with the configured timeout is used.
func NewExecutor(cfg *Config, throttler *Throttler, httpClient *http.Client, logger *zap.Logger) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		baseURL:     strings.TrimSuffix(cfg.APIBaseURL, "/"),
		httpClient:  httpClient,
		throttler:   throttler,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.RetryBaseDelay,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Execute runs the call, retrying rate-limited outcomes up to the attempt
// budget. Non-rate-limit failures surface immediately. The last classified
// error is returned once retries are exhausted.
func (e *Executor) Execute(ctx context.Context, call apiCall) (*platformResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		release, err := e.throttler.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := e.attempt(ctx, call)
		release()

		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, supplier.ErrRateLimited) {
			return nil, err
		}
		lastErr = err
		if attempt == e.maxAttempts {
			break
		}

		// Linear backoff: the platform enforces a per-second rate, so each
		// extra attempt waits one more base unit than the last.
		delay := time.Duration(attempt) * e.baseDelay
		e.logger.Warn("platform rate limited, retrying",
			zap.String("path", call.Path),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	e.logger.Warn("platform retries exhausted",
		zap.String("path", call.Path),
		zap.Int("attempts", e.maxAttempts),
	)
	return nil, lastErr
}

// attempt performs a single HTTP exchange and classifies the outcome.
func (e *Executor) attempt(ctx context.Context, call apiCall) (*platformResponse, error) {
	endpoint := e.baseURL + "/" + strings.TrimPrefix(call.Path, "/")
	if len(call.Query) > 0 {
		endpoint += "?" + call.Query.Encode()
	}

	var bodyReader io.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("dropship: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("dropship: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if call.Token != "" {
		req.Header.Set(accessTokenHeader, call.Token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", supplier.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("dropship: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: HTTP 429", supplier.ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", supplier.ErrUpstream, resp.StatusCode)
	}

	var envelope platformResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", supplier.ErrMalformedResponse, err)
	}
	if envelope.IsRateLimited() {
		return nil, fmt.Errorf("%w: code %d", supplier.ErrRateLimited, envelope.Code)
	}
	if !envelope.IsSuccess() {
		return nil, fmt.Errorf("%w: %d - %s", supplier.ErrUpstream, envelope.Code, envelope.Message)
	}
	return &envelope, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
