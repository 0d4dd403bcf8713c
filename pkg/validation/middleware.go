package validation

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kisiwu/routeval/pkg/httputil"
	"github.com/kisiwu/routeval/pkg/logging"
	"github.com/kisiwu/routeval/pkg/routemeta"
)

// ErrorHandler receives the validation failure payload and is solely
// responsible for producing the response. next is the handler the
// request would have reached had validation passed.
type ErrorHandler func(payload *ErrorPayload, w http.ResponseWriter, r *http.Request, next http.Handler)

// Middleware validates requests against the schema found in each
// route's configuration. Routes without a locatable schema pass
// through untouched.
type Middleware struct {
	engine         *Engine
	onError        ErrorHandler
	schemaProperty string
	log            *slog.Logger
}

// Option configures a Middleware.
type Option func(*Middleware)

// WithEngineOptions sets the default engine options. The resulting
// engine is shared by every request that carries no per-route override.
func WithEngineOptions(opts Options) Option {
	return func(m *Middleware) {
		m.engine = NewEngine(opts)
	}
}

// WithErrorHandler sets the default error handler, used when a route
// does not supply its own.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) {
		m.onError = h
	}
}

// WithSchemaProperty names the property path at which Locate looks for
// the schema inside the route config. Unset, the whole config is the
// schema source.
func WithSchemaProperty(path string) Option {
	return func(m *Middleware) {
		m.schemaProperty = path
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Middleware) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMiddleware creates a validation middleware.
func NewMiddleware(opts ...Option) *Middleware {
	m := &Middleware{
		engine: NewEngine(Options{}),
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Wrap returns the handler chain link, suitable for
// routemeta.WithMiddleware.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg, _ := routemeta.ConfigFromContext(r.Context())
		schema := Locate(cfg, m.schemaProperty)
		if schema == nil {
			next.ServeHTTP(w, r)
			return
		}

		vals, err := Extract(schema, r)
		if err != nil {
			m.log.Warn("request could not be materialized for validation", "error", err)
			m.dispatch(&ErrorPayload{Errors: []*SchemaError{{
				InstancePath: "/" + FacetBody,
				Message:      err.Error(),
			}}}, cfg, w, r, next)
			return
		}

		data, err := vals.normalized()
		if err != nil {
			m.log.Error("failed to normalize request values", "error", err)
			httputil.WriteInternalError(w, "validation_internal", err.Error())
			return
		}

		compiled, err := m.selectEngine(cfg).Compile(schema.Document)
		if err != nil {
			// Schema correctness is the route author's responsibility;
			// a schema that will not compile aborts the request.
			m.log.Error("route schema failed to compile", "error", err)
			httputil.WriteInternalError(w, "schema_compile_error", err.Error())
			return
		}

		if err := compiled.Validate(data); err != nil {
			var verr *jsonschema.ValidationError
			if !errors.As(err, &verr) {
				m.log.Error("engine returned a non-validation error", "error", err)
				httputil.WriteInternalError(w, "validation_internal", err.Error())
				return
			}
			m.dispatch(PayloadFrom(verr), cfg, w, r, next)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// selectEngine picks the engine for one request: a fresh instance when
// the route overrides the options, the shared default otherwise. A
// malformed override is logged and ignored.
func (m *Middleware) selectEngine(cfg routemeta.Config) *Engine {
	raw := cfg.Value(routemeta.KeyValidatorOptions)
	if raw == nil {
		return m.engine
	}
	opts, ok := OptionsFrom(raw)
	if !ok {
		m.log.Warn("ignoring malformed validator options on route",
			"key", routemeta.KeyValidatorOptions)
		return m.engine
	}
	return NewEngine(opts)
}

// dispatch resolves the error handler: route override, then factory
// default, then a fixed 400 with the payload as body. Values that are
// not handlers fall through to the next level.
func (m *Middleware) dispatch(payload *ErrorPayload, cfg routemeta.Config, w http.ResponseWriter, r *http.Request, next http.Handler) {
	if raw := cfg.Value(routemeta.KeyOnError); raw != nil {
		if h := asErrorHandler(raw); h != nil {
			h(payload, w, r, next)
			return
		}
		m.log.Warn("ignoring non-callable error handler on route",
			"key", routemeta.KeyOnError)
	}

	if m.onError != nil {
		m.onError(payload, w, r, next)
		return
	}

	httputil.WriteJSON(w, http.StatusBadRequest, payload)
}

func asErrorHandler(v any) ErrorHandler {
	switch h := v.(type) {
	case ErrorHandler:
		return h
	case func(*ErrorPayload, http.ResponseWriter, *http.Request, http.Handler):
		return h
	default:
		return nil
	}
}
