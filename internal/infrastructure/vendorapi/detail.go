package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// FetchDetail retrieves the detail payload for a product in a given store.
// A 404 means the pair simply does not exist and returns (nil, nil) so the
// caller can record a skip instead of a failure.
func (c *Client) FetchDetail(ctx context.Context, productID, storeCode string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/product/%s/%s",
		c.config.APIBaseURL, url.PathEscape(productID), url.PathEscape(storeCode))

	status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, true)
	if err != nil {
		return nil, fmt.Errorf("vendor: detail fetch for %s/%s failed: %w", productID, storeCode, err)
	}

	switch {
	case status == http.StatusNotFound:
		c.logger.Debug("detail not found",
			zap.String("product_id", productID),
			zap.String("store_code", storeCode),
		)
		return nil, nil
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d for %s/%s", ErrRequestFailed, status, productID, storeCode)
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: malformed detail body for %s/%s", ErrRequestFailed, productID, storeCode)
	}
	return json.RawMessage(trimmed), nil
}
