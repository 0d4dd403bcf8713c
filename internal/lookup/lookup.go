// Package lookup resolves dot/bracket property paths inside untyped
// nested maps, as produced by encoding/json or yaml.v3 decoding.
package lookup

import "strings"

// resolution is the internal outcome of a walk step. "key missing" and
// "value not traversable" are kept distinct here even though both
// collapse to a failed lookup for callers.
type resolution int

const (
	found resolution = iota
	notFound
	notObject
)

type result struct {
	value any
	state resolution
}

// Walk resolves path inside root and reports whether every segment
// resolved to an existing key on an object. An empty path yields root
// itself. "a.b[c]" and "a.b.c" address the same value; empty segments
// are ignored.
func Walk(root map[string]any, path string) (any, bool) {
	segments := Split(path)
	if len(segments) == 0 {
		return root, true
	}
	res := resolve(root, segments)
	if res.state != found {
		return nil, false
	}
	return res.value, true
}

// Split breaks a property path into its segments. Dots and brackets are
// both segment separators, so "a.b[c]" becomes ["a", "b", "c"].
func Split(path string) []string {
	var segments []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}
	for _, r := range path {
		switch r {
		case '.', '[', ']':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return segments
}

func resolve(node any, segments []string) result {
	if len(segments) == 0 {
		return result{value: node, state: found}
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return result{state: notObject}
	}
	child, ok := obj[segments[0]]
	if !ok {
		return result{state: notFound}
	}
	return resolve(child, segments[1:])
}
