package routemeta

import "github.com/kisiwu/routeval/internal/lookup"

// Well-known Config keys read by the validation middleware. Any other
// key is opaque to routeval.
const (
	// KeyOnError optionally holds a per-route error handler. The value
	// must assert to validation.ErrorHandler to take effect.
	KeyOnError = "onError"

	// KeyValidatorOptions optionally holds per-route engine options,
	// either as a validation.Options value or as a plain map decoded
	// from a config file.
	KeyValidatorOptions = "validatorOptions"
)

// Config is the open-ended configuration mapping attached to a route.
// Values are arbitrary nested data as decoded by encoding/json or
// yaml.v3. Config is read-only once attached to a route.
type Config map[string]any

// Lookup resolves a dot/bracket property path inside the config.
// "a.b[c]" and "a.b.c" address the same value. It reports false when
// any path segment is missing or crosses a non-object value.
func (c Config) Lookup(path string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return lookup.Walk(map[string]any(c), path)
}

// Value returns the value stored under a single top-level key, or nil.
func (c Config) Value(key string) any {
	if c == nil {
		return nil
	}
	return c[key]
}
