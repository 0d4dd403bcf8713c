package validation

import (
	"github.com/kisiwu/routeval/internal/lookup"
	"github.com/kisiwu/routeval/pkg/routemeta"
)

// Recognized request facet names.
const (
	FacetParams  = "params"
	FacetBody    = "body"
	FacetQuery   = "query"
	FacetHeaders = "headers"
	FacetCookies = "cookies"
	FacetFiles   = "files"
)

// facetNames is the fixed facet order used when assembling values.
var facetNames = []string{
	FacetParams, FacetBody, FacetQuery, FacetHeaders, FacetCookies, FacetFiles,
}

// Schema is the canonical route schema: a JSON-Schema object document
// whose properties map request facets to their sub-schemas.
type Schema struct {
	// Document is the full schema document handed to the engine.
	Document map[string]any

	// Properties is Document's "properties" mapping, or nil when the
	// document carries none in a usable shape.
	Properties map[string]any
}

// Locate finds the route's schema inside its configuration and
// normalizes it into canonical form. It returns nil when the config is
// absent, when propertyPath does not resolve ("a.b[c]" and "a.b.c" are
// equivalent forms), or when the located value is not an object. An
// empty propertyPath locates the config itself.
//
// An object that already carries type "object" and a "properties" key
// is returned as-is. Anything else is treated as a bare facet map and
// wrapped; during wrapping, keys that are not recognized facets or
// whose values are not objects are dropped.
func Locate(config routemeta.Config, propertyPath string) *Schema {
	if config == nil {
		return nil
	}

	var located any = map[string]any(config)
	if propertyPath != "" {
		v, ok := lookup.Walk(map[string]any(config), propertyPath)
		if !ok {
			return nil
		}
		located = v
	}

	target, ok := located.(map[string]any)
	if !ok {
		return nil
	}

	if isCanonical(target) {
		props, _ := target["properties"].(map[string]any)
		return &Schema{Document: target, Properties: props}
	}

	props := make(map[string]any)
	for _, facet := range facetNames {
		if v, ok := target[facet]; ok {
			if _, isObject := v.(map[string]any); isObject {
				props[facet] = v
			}
		}
	}
	return &Schema{
		Document:   map[string]any{"type": "object", "properties": props},
		Properties: props,
	}
}

func isCanonical(obj map[string]any) bool {
	if t, ok := obj["type"].(string); !ok || t != "object" {
		return false
	}
	_, hasProps := obj["properties"]
	return hasProps
}
