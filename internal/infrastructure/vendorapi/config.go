package vendorapi

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config holds connection settings for the print-vendor API.
type Config struct {
	// ClientID and ClientSecret are the OAuth client-credentials pair.
	ClientID     string
	ClientSecret string
	// Audience is sent with the token exchange.
	Audience string
	// APIBaseURL is the base URL for catalog and detail endpoints.
	APIBaseURL string
	// AuthURL is the token endpoint. Derived from APIBaseURL when empty.
	AuthURL string
	// Locale selects the storefront for the fallback category crawl.
	Locale string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// MaxAttempts bounds retries for every outbound call.
	MaxAttempts int
	// BackoffBase is the exponential backoff base delay.
	BackoffBase time.Duration
	// RequestDelay is the minimum spacing between outbound calls. It is the
	// vendor rate-limit courtesy interval and applies across all workers.
	RequestDelay time.Duration
}

// Errors for vendor API configuration
var (
	ErrConfigMissingClientID     = errors.New("vendor: client id is required")
	ErrConfigMissingClientSecret = errors.New("vendor: client secret is required")
	ErrConfigMissingAPIBase      = errors.New("vendor: API base URL is required")
)

// Validate validates the configuration and fills unset tuning fields with
// their defaults.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrConfigMissingClientSecret
	}
	if c.APIBaseURL == "" {
		return ErrConfigMissingAPIBase
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.AuthURL == "" {
		c.AuthURL = deriveAuthURL(c.APIBaseURL)
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 4
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
	if c.RequestDelay == 0 {
		c.RequestDelay = 200 * time.Millisecond
	}
	return nil
}

// deriveAuthURL maps the API base to its host's token endpoint.
func deriveAuthURL(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil || u.Host == "" {
		return apiBase + "/oauth/token"
	}
	return u.Scheme + "://" + u.Host + "/oauth/token"
}
