package catalog

import (
	"encoding/json"
)

// ProductRef identifies one vendor product discovered from the catalog
// listing. RawJSON keeps the untouched listing fragment for the audit trail.
type ProductRef struct {
	ID      string
	Name    string
	SKU     string
	RawJSON json.RawMessage
}

// ProductRefFromListing extracts a ProductRef from one element of the catalog
// listing. The listing id may arrive as a JSON number or a string; both are
// accepted. Returns false when the element carries no usable id.
func ProductRefFromListing(raw json.RawMessage) (ProductRef, bool) {
	obj, ok := DecodeObject(raw)
	if !ok {
		return ProductRef{}, false
	}

	id := obj.String("id")
	if id == "" {
		id = obj.String("product_id")
	}
	if id == "" {
		return ProductRef{}, false
	}

	return ProductRef{
		ID:      id,
		Name:    obj.String("name"),
		SKU:     obj.String("sku"),
		RawJSON: raw,
	}, true
}
