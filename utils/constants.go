package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour

	// OTPExpiry is the time-to-live for OTP codes (5 minutes)
	OTPExpiry = 5 * time.Minute

	// OTPExpirySeconds is the time-to-live for OTP codes in seconds (300 seconds = 5 minutes)
	OTPExpirySeconds = 300
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Payment and catalog constants
const (
	// DefaultCurrency is the currency assumed when a plan or payment omits one
	DefaultCurrency = "USD"

	// PlanCatalogCacheKey is the redis key holding the serialized public plan catalog
	PlanCatalogCacheKey = "plans:catalog:v1"

	// PlanCatalogCacheTTL bounds staleness of the cached plan catalog
	PlanCatalogCacheTTL = 10 * time.Minute
)

// Upload constants
const (
	// UploadTimestampLayout is the timestamp prefix of stored upload filenames
	UploadTimestampLayout = "20060102_150405"

	// ThumbnailMaxSide is the longest side of generated image thumbnails in pixels
	ThumbnailMaxSide = 320
)
