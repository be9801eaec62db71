package dropship

import (
	"errors"
	"time"
)

// Config holds configuration for the dropship supplier platform integration.
type Config struct {
	// Email is the platform account the API key belongs to
	Email string
	// APIKey is the platform API key used to authenticate
	APIKey string
	// APIBaseURL is the base URL for the platform API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int

	// MaxConcurrent bounds concurrent outbound calls from this instance
	MaxConcurrent int
	// MaxAttempts is the total number of tries for a rate-limited call
	MaxAttempts int
	// RetryBaseDelay is the backoff unit; delay before attempt n+1 is n * RetryBaseDelay
	RetryBaseDelay time.Duration

	// RefreshBuffer is how long before access expiry a refresh is attempted
	RefreshBuffer time.Duration
	// StaleServeCeiling caps how far past expiry a stale access token may be
	// served when the auth endpoint itself is rate limited
	StaleServeCeiling time.Duration

	// ProductCacheTTL is the lifetime of cross-instance product detail entries
	ProductCacheTTL time.Duration
	// CategoryCacheTTL is the lifetime of the in-process category tree entry
	CategoryCacheTTL time.Duration
}

const (
	// DefaultAPIBaseURL is the production API endpoint
	DefaultAPIBaseURL = "https://developers.cjdropshipping.com/api2.0/v1/"

	defaultTimeoutSeconds    = 30
	defaultMaxConcurrent     = 3
	defaultMaxAttempts       = 3
	defaultRetryBaseDelay    = 1100 * time.Millisecond
	defaultRefreshBuffer     = time.Hour
	defaultStaleServeCeiling = 24 * time.Hour
	defaultProductCacheTTL   = 24 * time.Hour
	defaultCategoryCacheTTL  = 72 * time.Hour
)

// Errors for dropship configuration
var (
	ErrConfigMissingEmail  = errors.New("dropship: account email is required")
	ErrConfigMissingAPIKey = errors.New("dropship: api key is required")
)

// NewConfig creates a new platform configuration with defaults.
func NewConfig(email, apiKey string) *Config {
	cfg := &Config{Email: email, APIKey: apiKey}
	cfg.applyDefaults()
	return cfg
}

// Validate validates the configuration and fills defaults for zero fields.
func (c *Config) Validate() error {
	if c.Email == "" {
		return ErrConfigMissingEmail
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.RefreshBuffer <= 0 {
		c.RefreshBuffer = defaultRefreshBuffer
	}
	if c.StaleServeCeiling <= 0 {
		c.StaleServeCeiling = defaultStaleServeCeiling
	}
	if c.ProductCacheTTL <= 0 {
		c.ProductCacheTTL = defaultProductCacheTTL
	}
	if c.CategoryCacheTTL <= 0 {
		c.CategoryCacheTTL = defaultCategoryCacheTTL
	}
}
