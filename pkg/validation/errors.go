package validation

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaError is one structured validation failure record. Paths are
// JSON Pointers relative to the extracted value object and the schema
// document.
type SchemaError struct {
	// InstancePath points at the offending value, e.g. "/body/name".
	InstancePath string `json:"instancePath"`

	// KeywordLocation points at the schema keyword that failed,
	// e.g. "/properties/body/required".
	KeywordLocation string `json:"keywordLocation"`

	// Message is the engine's human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.InstancePath != "" {
		return fmt.Sprintf("%s: %s", e.InstancePath, e.Message)
	}
	return e.Message
}

// ErrorPayload is the value handed to error handlers and, absent any
// handler, written as the 400 response body.
type ErrorPayload struct {
	Errors []*SchemaError `json:"errors"`
}

// Error implements the error interface.
func (p *ErrorPayload) Error() string {
	switch len(p.Errors) {
	case 0:
		return "request validation failed"
	case 1:
		return p.Errors[0].Error()
	default:
		return fmt.Sprintf("%d validation errors", len(p.Errors))
	}
}

// PayloadFrom flattens the engine's recursive error tree into an
// ordered list of leaf records.
func PayloadFrom(err *jsonschema.ValidationError) *ErrorPayload {
	payload := &ErrorPayload{}
	collectLeaves(err, payload)
	return payload
}

func collectLeaves(err *jsonschema.ValidationError, payload *ErrorPayload) {
	if len(err.Causes) == 0 {
		payload.Errors = append(payload.Errors, &SchemaError{
			InstancePath:    pointerPath(err.InstanceLocation),
			KeywordLocation: err.KeywordLocation,
			Message:         err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectLeaves(cause, payload)
	}
}

func pointerPath(loc string) string {
	if loc == "" {
		return ""
	}
	if strings.HasPrefix(loc, "/") {
		return loc
	}
	return "/" + loc
}
