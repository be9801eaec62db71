package supplier

import "errors"

var (
	// Credential / configuration errors
	ErrNotConfigured   = errors.New("supplier: credentials not configured")
	ErrAuthUnavailable = errors.New("supplier: no usable access token and authentication failed")

	// Request errors
	ErrRateLimited       = errors.New("supplier: platform rate limited")
	ErrUpstream          = errors.New("supplier: platform request failed")
	ErrMalformedResponse = errors.New("supplier: invalid platform response")
	ErrUnavailable       = errors.New("supplier: platform temporarily unavailable")

	// Cache / store errors
	ErrCacheMiss     = errors.New("supplier: cache miss")
	ErrTokenNotFound = errors.New("supplier: no token record")

	// Validation errors
	ErrInvalidProductID = errors.New("supplier: product id is required")
	ErrInvalidVariantID = errors.New("supplier: variant id is required")
	ErrInvalidSKU       = errors.New("supplier: sku is required")
	ErrInvalidOrderID   = errors.New("supplier: order id is required")
	ErrInvalidPage      = errors.New("supplier: invalid paging parameters")
	ErrInvalidOrder     = errors.New("supplier: invalid order request")
)
