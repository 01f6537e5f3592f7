package catalog

import (
	"bytes"
	"encoding/json"
)

// Family names the two detail-payload schemas the vendor serves, plus the
// unknown case for shapes that match neither.
type Family string

const (
	FamilyRegular   Family = "regular"
	FamilyRollLabel Family = "roll_label"
	FamilyUnknown   Family = "unknown"
)

// Detail is a classified detail payload. The three sections carry the
// payload's first three arrays in order. For the regular family they hold
// options, pricing rows and metadata; for the roll-label family they hold
// option values, exclusion rules and per-value content.
type Detail struct {
	Family   Family
	Options  []json.RawMessage
	Pricing  []json.RawMessage
	Contents []json.RawMessage
}

// Classify decomposes a raw detail payload into its three arrays and decides
// which product family it represents. The decision inspects only the first
// object element of the first array; the vendor contract keeps these arrays
// homogeneous, so the remaining elements are not consulted.
func Classify(raw json.RawMessage) Detail {
	sections := decomposeSections(raw)
	d := Detail{
		Family:   FamilyUnknown,
		Options:  sections[0],
		Pricing:  sections[1],
		Contents: sections[2],
	}

	if len(d.Options) == 0 {
		return d
	}
	first, ok := DecodeObject(d.Options[0])
	if !ok {
		return d
	}

	switch {
	case first.Has("opt_val_id", "option_id", "option_val", "name"):
		d.Family = FamilyRollLabel
	case first.Has("id", "group", "name") && !first.Has("opt_val_id"):
		d.Family = FamilyRegular
	}
	return d
}

// decomposeSections splits a payload into up to three arrays. An array
// payload contributes its first three elements positionally; an object
// payload contributes its first three array-valued properties in document
// order. json.Decoder token scanning is used for objects because Go maps do
// not preserve property order.
func decomposeSections(raw json.RawMessage) [3][]json.RawMessage {
	var sections [3][]json.RawMessage

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return sections
	}

	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return sections
		}
		for i := 0; i < len(elems) && i < 3; i++ {
			sections[i] = decodeArray(elems[i])
		}
		// The third slot is metadata-like and may arrive as a bare object;
		// wrap it so it persists as a single element.
		if len(elems) >= 3 && sections[2] == nil {
			if v := bytes.TrimSpace(elems[2]); len(v) > 0 && v[0] == '{' {
				sections[2] = []json.RawMessage{elems[2]}
			}
		}
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil { // opening brace
			return sections
		}
		i := 0
		for dec.More() && i < 3 {
			if _, err := dec.Token(); err != nil { // property name
				return sections
			}
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return sections
			}
			if elems := decodeArray(value); elems != nil {
				sections[i] = elems
				i++
			}
		}
	}

	return sections
}

// decodeArray decodes raw as a JSON array, returning nil when it is not one.
func decodeArray(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil
	}
	if elems == nil {
		elems = []json.RawMessage{}
	}
	return elems
}
