package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/printmart/catalog-ingest/internal/domain/catalog"
	"go.uber.org/zap"
)

// ListProducts discovers the full product list. The catalog endpoint's shape
// has drifted over time, so three forms are tolerated: a bare array, an
// object with a products array, and a single product object. When none
// match, a three-level storefront crawl (categories, subcategories,
// products) is used instead. An empty result after the crawl is fatal.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.ProductRef, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, c.config.APIBaseURL+"/product", nil, true)
	if err != nil {
		return nil, fmt.Errorf("vendor: catalog listing failed: %w", err)
	}

	var refs []catalog.ProductRef
	if status == http.StatusOK {
		refs = parseListing(body)
	}

	if len(refs) == 0 {
		c.logger.Warn("catalog endpoint yielded no products, falling back to storefront crawl",
			zap.Int("status", status))
		refs, err = c.crawlStorefront(ctx)
		if err != nil {
			return nil, err
		}
	}

	refs = dedupeByID(refs)
	if len(refs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c.logger.Info("catalog discovered", zap.Int("products", len(refs)))
	return refs, nil
}

// parseListing extracts product refs from any of the three tolerated shapes.
func parseListing(body []byte) []catalog.ProductRef {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil
		}
		return refsFromElements(elems)
	case '{':
		var envelope struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil
		}
		if len(envelope.Products) > 0 {
			return refsFromElements(envelope.Products)
		}
		// A single product object.
		if ref, ok := catalog.ProductRefFromListing(trimmed); ok {
			return []catalog.ProductRef{ref}
		}
	}
	return nil
}

func refsFromElements(elems []json.RawMessage) []catalog.ProductRef {
	refs := make([]catalog.ProductRef, 0, len(elems))
	for _, raw := range elems {
		if ref, ok := catalog.ProductRefFromListing(raw); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// crawlStorefront walks categories, their subcategories, and each
// subcategory's products. Failures on individual branches are logged and
// skipped; only a completely empty result is fatal to the run.
func (c *Client) crawlStorefront(ctx context.Context) ([]catalog.ProductRef, error) {
	storefront := fmt.Sprintf("%s/storefront/%s", c.config.APIBaseURL, url.PathEscape(c.config.Locale))

	categories, err := c.fetchIDs(ctx, storefront+"/categories")
	if err != nil {
		return nil, fmt.Errorf("vendor: category crawl failed: %w", err)
	}

	var refs []catalog.ProductRef
	for _, categoryID := range categories {
		subcategories, err := c.fetchIDs(ctx, fmt.Sprintf("%s/categories/%s/subcategories", storefront, url.PathEscape(categoryID)))
		if err != nil {
			c.logger.Warn("skipping category", zap.String("category_id", categoryID), zap.Error(err))
			continue
		}
		for _, subcategoryID := range subcategories {
			status, body, err := c.doRequest(ctx, http.MethodGet,
				fmt.Sprintf("%s/subcategories/%s/products", storefront, url.PathEscape(subcategoryID)), nil, true)
			if err != nil || status != http.StatusOK {
				c.logger.Warn("skipping subcategory",
					zap.String("subcategory_id", subcategoryID),
					zap.Int("status", status),
					zap.Error(err),
				)
				continue
			}
			var elems []json.RawMessage
			if err := json.Unmarshal(bytes.TrimSpace(body), &elems); err != nil {
				continue
			}
			refs = append(refs, refsFromElements(elems)...)
		}
	}
	return refs, nil
}

// fetchIDs retrieves an array endpoint and returns the id of every element.
func (c *Client) fetchIDs(ctx context.Context, endpoint string) ([]string, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, true)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrRequestFailed, status, endpoint)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &elems); err != nil {
		return nil, fmt.Errorf("vendor: %s is not a JSON array: %w", endpoint, err)
	}

	ids := make([]string, 0, len(elems))
	for _, raw := range elems {
		obj, ok := catalog.DecodeObject(raw)
		if !ok {
			continue
		}
		if id := obj.String("id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func dedupeByID(refs []catalog.ProductRef) []catalog.ProductRef {
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, ref)
	}
	return out
}
