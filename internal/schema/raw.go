package schema

import (
	"encoding/json"
	"strconv"
)

// RawEvent is an untyped key/value mapping decoded from an input message.
// Fields may be missing, null, or carry the wrong type; every access goes
// through a typed accessor with an explicit default so that a malformed
// event can never fail normalization.
type RawEvent map[string]any

// DecodeRaw parses a raw message payload. A JSON value that is not an
// object decodes as an empty event, which the normalizer turns into an
// all-defaults record. Malformed JSON is a record-level error.
func DecodeRaw(data []byte) (RawEvent, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		return RawEvent(m), nil
	}
	return RawEvent{}, nil
}

// Int returns the value under key coerced to an integer, or def when the
// value is absent, null, or not coercible. Numeric strings are accepted;
// fractional values are truncated toward zero.
func (r RawEvent) Int(key string, def int64) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

// Float returns the value under key coerced to a float, or def when the
// value is absent, null, or not coercible.
func (r RawEvent) Float(key string, def float64) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// String returns the value under key when it is a non-empty string,
// otherwise def.
func (r RawEvent) String(key, def string) string {
	if s, ok := r[key].(string); ok && s != "" {
		return s
	}
	return def
}
