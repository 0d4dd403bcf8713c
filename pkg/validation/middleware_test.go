package validation

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisiwu/routeval/pkg/routemeta"
)

// serve runs one request through the middleware with the given route
// config and reports whether the inner handler was reached.
func serve(t *testing.T, m *Middleware, cfg routemeta.Config, r *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusNoContent)
	})

	if cfg != nil {
		r = r.WithContext(routemeta.WithConfig(r.Context(), cfg))
	}
	rec := httptest.NewRecorder()
	m.Wrap(next).ServeHTTP(rec, r)
	return rec, nextCalled
}

func jsonRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.Header.Set("Content-Type", "application/json")
	return r
}

func bodyNameConfig() routemeta.Config {
	return routemeta.Config{
		"body": map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
}

func TestMiddleware_NoSchemaSkipsValidation(t *testing.T) {
	t.Run("no route config at all", func(t *testing.T) {
		m := NewMiddleware()
		rec, nextCalled := serve(t, m, nil, jsonRequest(http.MethodGet, "/", ""))
		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("schema property does not resolve", func(t *testing.T) {
		m := NewMiddleware(WithSchemaProperty("meta.parameters"))
		rec, nextCalled := serve(t, m, routemeta.Config{"other": 1},
			jsonRequest(http.MethodGet, "/", ""))
		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("schema property points at a non-object", func(t *testing.T) {
		m := NewMiddleware(WithSchemaProperty("schema"))
		rec, nextCalled := serve(t, m, routemeta.Config{"schema": []any{"x"}},
			jsonRequest(http.MethodGet, "/", ""))
		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestMiddleware_ValidRequestPassesThrough(t *testing.T) {
	m := NewMiddleware()

	rec, nextCalled := serve(t, m, bodyNameConfig(),
		jsonRequest(http.MethodPost, "/", `{"name":"x"}`))

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddleware_InvalidRequestGets400Payload(t *testing.T) {
	m := NewMiddleware()

	rec, nextCalled := serve(t, m, bodyNameConfig(),
		jsonRequest(http.MethodPost, "/", `{}`))

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Errors []*SchemaError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Errors)

	found := false
	for _, e := range payload.Errors {
		if strings.Contains(e.Message, "name") {
			found = true
		}
	}
	assert.True(t, found, "expected an error mentioning the missing name, got %+v", payload.Errors)
}

func TestMiddleware_DefaultErrorHandler(t *testing.T) {
	m := NewMiddleware(WithErrorHandler(
		func(payload *ErrorPayload, w http.ResponseWriter, _ *http.Request, _ http.Handler) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))

	rec, nextCalled := serve(t, m, bodyNameConfig(),
		jsonRequest(http.MethodPost, "/", `{}`))

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMiddleware_RouteErrorHandlerWinsOverDefault(t *testing.T) {
	defaultCalled := false
	m := NewMiddleware(WithErrorHandler(
		func(payload *ErrorPayload, w http.ResponseWriter, _ *http.Request, _ http.Handler) {
			defaultCalled = true
		}))

	cfg := bodyNameConfig()
	cfg[routemeta.KeyOnError] = func(payload *ErrorPayload, w http.ResponseWriter, _ *http.Request, _ http.Handler) {
		w.WriteHeader(http.StatusTeapot)
	}

	rec, nextCalled := serve(t, m, cfg, jsonRequest(http.MethodPost, "/", `{}`))

	assert.False(t, nextCalled)
	assert.False(t, defaultCalled)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware_NonCallableRouteHandlerFallsThrough(t *testing.T) {
	var logBuf bytes.Buffer
	m := NewMiddleware(WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))))

	cfg := bodyNameConfig()
	cfg[routemeta.KeyOnError] = "definitely not a handler"

	rec, _ := serve(t, m, cfg, jsonRequest(http.MethodPost, "/", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, logBuf.String(), "non-callable error handler")
}

func TestMiddleware_SchemaProperty(t *testing.T) {
	m := NewMiddleware(WithSchemaProperty("schema"))

	cfg := routemeta.Config{
		"schema": map[string]any{
			"query": map[string]any{
				"type":     "object",
				"required": []any{"page"},
			},
		},
		"otherField": map[string]any{
			"body": map[string]any{"type": "object", "required": []any{"nope"}},
		},
	}

	// Only the query facet is validated; otherField is ignored.
	rec, nextCalled := serve(t, m, cfg,
		jsonRequest(http.MethodGet, "/?page=2", ""))
	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, nextCalled = serve(t, m, cfg, jsonRequest(http.MethodGet, "/", ""))
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware_NestedSchemaPropertyBracketForm(t *testing.T) {
	cfg := routemeta.Config{
		"meta": map[string]any{
			"parameters": map[string]any{
				"body": map[string]any{"type": "object", "required": []any{"name"}},
			},
		},
	}

	for _, path := range []string{"meta.parameters", "meta[parameters]"} {
		m := NewMiddleware(WithSchemaProperty(path))
		_, nextCalled := serve(t, m, cfg, jsonRequest(http.MethodPost, "/", `{"name":"x"}`))
		assert.True(t, nextCalled, "path %q", path)
	}
}

func TestMiddleware_PerRouteEngineOptions(t *testing.T) {
	m := NewMiddleware()

	cfg := routemeta.Config{
		"query": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email": map[string]any{"type": "string", "format": "email"},
			},
		},
	}

	// Default engine treats format as an annotation.
	_, nextCalled := serve(t, m, cfg,
		jsonRequest(http.MethodGet, "/?email=nope", ""))
	assert.True(t, nextCalled)

	cfg[routemeta.KeyValidatorOptions] = Options{AssertFormat: true}
	rec, nextCalled := serve(t, m, cfg,
		jsonRequest(http.MethodGet, "/?email=nope", ""))
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware_MalformedEngineOptionsIgnored(t *testing.T) {
	var logBuf bytes.Buffer
	m := NewMiddleware(WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))))

	cfg := bodyNameConfig()
	cfg[routemeta.KeyValidatorOptions] = 42

	_, nextCalled := serve(t, m, cfg, jsonRequest(http.MethodPost, "/", `{"name":"x"}`))
	assert.True(t, nextCalled)
	assert.Contains(t, logBuf.String(), "malformed validator options")
}

func TestMiddleware_UncompilableSchemaAbortsRequest(t *testing.T) {
	m := NewMiddleware()

	cfg := routemeta.Config{
		"body": map[string]any{"type": "no-such-type"},
	}

	rec, nextCalled := serve(t, m, cfg, jsonRequest(http.MethodPost, "/", `{}`))
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMiddleware_UnreadableBodyDispatchesError(t *testing.T) {
	m := NewMiddleware()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	r.Header.Set("Content-Type", "application/json")

	rec, nextCalled := serve(t, m, bodyNameConfig(), r)
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Errors []*SchemaError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "/body", payload.Errors[0].InstancePath)
}
