package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Options configure the JSON-Schema engine. The zero value selects
// draft 2020-12 with format and content assertions off, matching the
// compiler's defaults.
type Options struct {
	// Draft selects the JSON-Schema draft: "4", "6", "7", "2019" or
	// "2020". Empty means 2020.
	Draft string `json:"draft,omitempty" yaml:"draft,omitempty"`

	// AssertFormat enables "format" keyword assertions.
	AssertFormat bool `json:"assertFormat,omitempty" yaml:"assertFormat,omitempty"`

	// AssertContent enables "contentEncoding"/"contentMediaType"
	// assertions.
	AssertContent bool `json:"assertContent,omitempty" yaml:"assertContent,omitempty"`
}

// Engine compiles schema documents with a fixed set of Options. It
// holds no mutable state, so one Engine can serve concurrent requests.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine from the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Compile turns a schema document into an executable schema. The
// document is marshaled to JSON first so map values of any decoded
// origin compile identically.
func (e *Engine) Compile(doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = draftFor(e.opts.Draft)
	compiler.AssertFormat = e.opts.AssertFormat
	compiler.AssertContent = e.opts.AssertContent

	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile("schema.json")
}

func draftFor(name string) *jsonschema.Draft {
	switch name {
	case "4":
		return jsonschema.Draft4
	case "6":
		return jsonschema.Draft6
	case "7":
		return jsonschema.Draft7
	case "2019", "2019-09":
		return jsonschema.Draft2019
	default:
		return jsonschema.Draft2020
	}
}

// OptionsFrom decodes a per-route engine options value. Route configs
// built in code carry Options directly; configs decoded from a file
// carry a plain map. Anything else is rejected.
func OptionsFrom(v any) (Options, bool) {
	switch o := v.(type) {
	case Options:
		return o, true
	case *Options:
		if o == nil {
			return Options{}, false
		}
		return *o, true
	case map[string]any:
		var opts Options
		if s, ok := o["draft"].(string); ok {
			opts.Draft = s
		} else if n, ok := o["draft"].(int); ok {
			opts.Draft = fmt.Sprintf("%d", n)
		} else if f, ok := o["draft"].(float64); ok {
			opts.Draft = fmt.Sprintf("%d", int(f))
		}
		if b, ok := o["assertFormat"].(bool); ok {
			opts.AssertFormat = b
		}
		if b, ok := o["assertContent"].(bool); ok {
			opts.AssertContent = b
		}
		return opts, true
	default:
		return Options{}, false
	}
}
