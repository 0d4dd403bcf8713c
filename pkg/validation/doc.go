// Package validation provides JSON-Schema request validation middleware
// for net/http.
//
// A schema is attached to a route through its routemeta.Config, either
// as a full object schema:
//
//	{"type": "object", "properties": {"body": {...}, "query": {...}}}
//
// or as a bare facet map whose keys are the request facets directly:
//
//	{"body": {...}, "query": {...}}
//
// Both shapes are normalized by Locate into the canonical form. The six
// recognized facets are params, body, query, headers, cookies and
// files; Extract assembles exactly the facets the schema mentions from
// the live request, and the middleware validates them with the
// santhosh-tekuri/jsonschema compiler.
//
// # Middleware Usage
//
//	mw := validation.NewMiddleware(
//	    validation.WithEngineOptions(validation.Options{AssertFormat: true}),
//	)
//	router := routemeta.NewRouter(routemeta.WithMiddleware(mw.Wrap))
//	router.HandleFunc("POST", "/users", routemeta.Config{
//	    "body": map[string]any{
//	        "type":     "object",
//	        "required": []any{"name"},
//	    },
//	}, createUser)
//
// On failure the middleware resolves an error handler in order: the
// route's "onError" value, the factory default handler, then a fixed
// 400 response with body {"errors": [...]}.
package validation
