package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Object is one decoded JSON object from a vendor payload. Values keep their
// json.Number form so numeric ids survive without float rounding.
type Object map[string]any

// DecodeObject decodes raw into an Object. Returns false when raw is not a
// JSON object.
func DecodeObject(raw json.RawMessage) (Object, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// Has reports whether every named key is present.
func (o Object) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}

// String returns the value under key rendered as a string. Numbers are
// formatted without an exponent; missing keys, nulls and composite values
// yield "".
func (o Object) String(key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int returns the value under key as an int, or 0 when the value is absent
// or not an integer.
func (o Object) Int(key string) int {
	switch v := o[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
