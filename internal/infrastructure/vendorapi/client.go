package vendorapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response
)

// Errors surfaced by the vendor API client.
var (
	// ErrAuthFailed marks a failed token exchange. Fatal to the run.
	ErrAuthFailed = errors.New("vendor: authentication failed")
	// ErrEmptyCatalog marks a discovery that yielded no products even after
	// the fallback crawl. Fatal to the run: it usually means a wrong API base
	// or an upstream contract change.
	ErrEmptyCatalog = errors.New("vendor: catalog discovery returned no products")
	// ErrRequestFailed marks an exhausted or terminally failed request.
	ErrRequestFailed = errors.New("vendor: request failed")
)

// Client talks to the print-vendor API. One client is shared by all workers;
// the embedded rate limiter enforces the vendor's minimum inter-call spacing
// across the whole process.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	token string // "Bearer <token>", set by Authenticate
}

// NewClient creates a vendor API client with the given configuration.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		logger:  logger.Named("vendorapi"),
	}, nil
}
