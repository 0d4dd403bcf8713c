package routemeta

import "context"

type contextKey int

const (
	configKey contextKey = iota
	paramsKey
)

// WithConfig returns a context carrying the matched route's Config.
func WithConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext returns the route Config attached by the router,
// if any.
func ConfigFromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(configKey).(Config)
	return cfg, ok
}

// WithParams returns a context carrying the path parameters extracted
// during route matching.
func WithParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, paramsKey, params)
}

// ParamsFromContext returns the matched path parameters, if any.
func ParamsFromContext(ctx context.Context) (map[string]string, bool) {
	params, ok := ctx.Value(paramsKey).(map[string]string)
	return params, ok
}
