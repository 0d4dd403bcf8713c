// Package config loads routeval route definitions from YAML or JSON
// files and turns them into a ready-to-serve router.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kisiwu/routeval/pkg/routemeta"
)

// RouteDefinition describes one route in a definitions file. Meta is
// the route configuration the validation middleware reads; its shape is
// open-ended.
type RouteDefinition struct {
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Method string         `json:"method" yaml:"method"`
	Path   string         `json:"path" yaml:"path"`
	Meta   map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// File is the top-level shape of a route definitions file.
type File struct {
	Routes []RouteDefinition `json:"routes" yaml:"routes"`
}

var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
	http.MethodPut: true, http.MethodPatch: true, http.MethodDelete: true,
	http.MethodOptions: true,
}

// Load reads and validates a route definitions file. YAML is a
// superset of JSON, so both formats parse through the same decoder.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route definitions: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates route definitions from raw bytes.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse route definitions: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the structural constraints every definition must
// satisfy before a router can be built from it.
func (f *File) Validate() error {
	if len(f.Routes) == 0 {
		return fmt.Errorf("route definitions file contains no routes")
	}
	for i, rt := range f.Routes {
		method := strings.ToUpper(rt.Method)
		if !knownMethods[method] {
			return fmt.Errorf("route %d (%s): unknown method %q", i, rt.describe(), rt.Method)
		}
		if !strings.HasPrefix(rt.Path, "/") {
			return fmt.Errorf("route %d (%s): path must start with '/'", i, rt.describe())
		}
	}
	return nil
}

func (rt RouteDefinition) describe() string {
	if rt.Name != "" {
		return rt.Name
	}
	return strings.TrimSpace(rt.Method + " " + rt.Path)
}

// BuildRouter registers every definition on a new router, all sharing
// the given handler and middleware. Useful for serving validated
// routes whose behavior lives behind a single dispatcher.
func (f *File) BuildRouter(h http.Handler, opts ...routemeta.RouterOption) *routemeta.Router {
	router := routemeta.NewRouter(opts...)
	for _, rt := range f.Routes {
		router.Handle(strings.ToUpper(rt.Method), rt.Path, routemeta.Config(rt.Meta), h)
	}
	return router
}
