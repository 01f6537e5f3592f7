package vendorapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// doRequest performs one HTTP call against the vendor with the shared retry
// policy: up to MaxAttempts tries, exponential backoff on 5xx and network
// errors, a Retry-After-honoring wait on 429. 429 waits are courtesy delays,
// not failures, but they still consume the attempt counter so a vendor that
// throttles forever cannot stall the run. Terminal statuses (404, other 4xx)
// are returned to the caller without retrying.
func (c *Client) doRequest(ctx context.Context, method, url string, body []byte, authed bool) (int, []byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("vendor: failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if authed && c.token != "" {
			req.Header.Set("Authorization", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("request error, backing off",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if !sleepCtx(ctx, c.backoff(attempt)) {
				return 0, nil, ctx.Err()
			}
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("vendor: failed to read response: %w", err)
			if !sleepCtx(ctx, c.backoff(attempt)) {
				return 0, nil, ctx.Err()
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfterDelay(resp.Header, c.config.BackoffBase, attempt)
			lastErr = fmt.Errorf("%w: HTTP 429", ErrRequestFailed)
			c.logger.Warn("rate limited by vendor, waiting",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
			if !sleepCtx(ctx, wait) {
				return 0, nil, ctx.Err()
			}

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
			c.logger.Warn("server error, backing off",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			if !sleepCtx(ctx, c.backoff(attempt)) {
				return 0, nil, ctx.Err()
			}

		default:
			return resp.StatusCode, respBody, nil
		}
	}

	return 0, nil, fmt.Errorf("vendor: %s %s failed after %d attempts: %w",
		method, url, c.config.MaxAttempts, lastErr)
}

// backoff returns base * 2^(attempt-1).
func (c *Client) backoff(attempt int) time.Duration {
	return c.config.BackoffBase * time.Duration(1<<(attempt-1))
}

// retryAfterDelay honors a Retry-After header carrying whole seconds;
// without one the wait falls back to base * 2^attempt.
func retryAfterDelay(header http.Header, base time.Duration, attempt int) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return base * time.Duration(1<<attempt)
}

// sleepCtx sleeps for d unless the context is cancelled first. Returns false
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
