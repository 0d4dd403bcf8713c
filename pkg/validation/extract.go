package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/kisiwu/routeval/pkg/routemeta"
)

// Values holds the request facets selected by a schema, keyed by facet
// name. It is the data object handed to the engine.
type Values map[string]any

// maxBodyBytes bounds how much of a request body is read for
// validation.
const maxBodyBytes = 10 << 20

// Extract assembles the request facets named by the schema's
// properties. Facet membership is decided by key presence alone; facets
// the schema does not mention are never read. Bodies are read through a
// size-limited reader and restored so downstream handlers can read them
// again.
func Extract(s *Schema, r *http.Request) (Values, error) {
	vals := Values{}
	if s == nil || s.Properties == nil {
		return vals, nil
	}

	for _, facet := range facetNames {
		if _, ok := s.Properties[facet]; !ok {
			continue
		}
		switch facet {
		case FacetParams:
			vals[facet] = paramsFacet(r)
		case FacetBody:
			body, err := bodyFacet(r)
			if err != nil {
				return vals, err
			}
			vals[facet] = body
		case FacetQuery:
			vals[facet] = multiValueFacet(r.URL.Query())
		case FacetHeaders:
			vals[facet] = headerFacet(r.Header)
		case FacetCookies:
			vals[facet] = cookieFacet(r)
		case FacetFiles:
			files, err := filesFacet(r)
			if err != nil {
				return vals, err
			}
			vals[facet] = files
		}
	}
	return vals, nil
}

// Select performs the same facet intersection as Extract over an
// already-materialized facet map, for callers that are not holding a
// live request (the CLI, offline checks).
func Select(s *Schema, data map[string]any) Values {
	vals := Values{}
	if s == nil || s.Properties == nil {
		return vals
	}
	for _, facet := range facetNames {
		if _, ok := s.Properties[facet]; !ok {
			continue
		}
		if v, ok := data[facet]; ok {
			vals[facet] = v
		}
	}
	return vals
}

// normalized round-trips the values through encoding/json so the engine
// only ever sees the value kinds json.Unmarshal produces.
func (v Values) normalized() (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request values: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode request values: %w", err)
	}
	return out, nil
}

func paramsFacet(r *http.Request) map[string]any {
	out := map[string]any{}
	params, ok := routemeta.ParamsFromContext(r.Context())
	if !ok {
		return out
	}
	for name, value := range params {
		out[name] = value
	}
	return out
}

// bodyFacet parses the request body according to its content type.
// JSON bodies are decoded as-is; form bodies become a value map; an
// absent body yields an empty object.
func bodyFacet(r *http.Request) (any, error) {
	ct := contentType(r)

	if strings.HasPrefix(ct, "multipart/") {
		if err := ensureMultipart(r); err != nil {
			return nil, err
		}
		if r.MultipartForm == nil {
			return map[string]any{}, nil
		}
		return multiValueFacet(url.Values(r.MultipartForm.Value)), nil
	}

	raw, err := readAndRestoreBody(r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	if ct == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse form body: %w", err)
		}
		return multiValueFacet(form), nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to parse request body: %w", err)
	}
	return body, nil
}

// readAndRestoreBody drains the body through a size limit and replaces
// it so later handlers still see the full content.
func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}

func ensureMultipart(r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return fmt.Errorf("failed to parse multipart body: %w", err)
	}
	return nil
}

// multiValueFacet flattens url.Values-shaped data: single values become
// strings, repeated values stay as lists.
func multiValueFacet(values url.Values) map[string]any {
	out := map[string]any{}
	for name, vs := range values {
		switch len(vs) {
		case 0:
			out[name] = ""
		case 1:
			out[name] = vs[0]
		default:
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			out[name] = list
		}
	}
	return out
}

func headerFacet(h http.Header) map[string]any {
	out := map[string]any{}
	for name, vs := range h {
		key := strings.ToLower(name)
		if len(vs) == 1 {
			out[key] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[key] = list
	}
	return out
}

func cookieFacet(r *http.Request) map[string]any {
	out := map[string]any{}
	for _, c := range r.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

// filesFacet reports multipart upload metadata: one object per single
// upload, a list when a field carries several files.
func filesFacet(r *http.Request) (map[string]any, error) {
	out := map[string]any{}
	if !strings.HasPrefix(contentType(r), "multipart/") {
		return out, nil
	}
	if err := ensureMultipart(r); err != nil {
		return nil, err
	}
	if r.MultipartForm == nil {
		return out, nil
	}
	for field, headers := range r.MultipartForm.File {
		metas := make([]any, len(headers))
		for i, fh := range headers {
			metas[i] = map[string]any{
				"filename": fh.Filename,
				"mimetype": fh.Header.Get("Content-Type"),
				"size":     fh.Size,
			}
		}
		if len(metas) == 1 {
			out[field] = metas[0]
		} else {
			out[field] = metas
		}
	}
	return out, nil
}

func contentType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return parsed
}
