// Package routemeta models per-route configuration for routeval.
//
// A route carries an open key-value Config alongside its handler. The
// validation middleware reads the schema and its overrides out of that
// Config at request time; everything else in it belongs to the route
// author and is passed through untouched.
//
// The package also provides the context plumbing that makes a matched
// route's Config and path parameters visible to downstream middleware,
// and a minimal pattern Router that performs the matching.
package routemeta
