package validation

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrorFor(t *testing.T, err error) *jsonschema.ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *jsonschema.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func TestPayloadFromValidation_FlattensCauses(t *testing.T) {
	eng := NewEngine(Options{})
	compiled, err := eng.Compile(nameSchema)
	require.NoError(t, err)

	verr := validationErrorFor(t, compiled.Validate(map[string]any{
		"body": map[string]any{},
	}))

	payload := PayloadFrom(verr)
	require.NotEmpty(t, payload.Errors)
	for _, e := range payload.Errors {
		assert.NotEmpty(t, e.Message)
	}
	// The missing required "name" must be attributed to the body facet.
	found := false
	for _, e := range payload.Errors {
		if e.InstancePath == "/body" {
			found = true
			assert.Contains(t, e.Message, "name")
		}
	}
	assert.True(t, found, "expected an error record for /body, got %+v", payload.Errors)
}

func TestErrorPayload_JSONShape(t *testing.T) {
	payload := &ErrorPayload{Errors: []*SchemaError{
		{InstancePath: "/body", KeywordLocation: "/properties/body/required", Message: "missing properties: 'name'"},
	}}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "errors")
	records, ok := decoded["errors"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)
	record := records[0].(map[string]any)
	assert.Equal(t, "/body", record["instancePath"])
	assert.Equal(t, "/properties/body/required", record["keywordLocation"])
}

func TestErrorPayload_Error(t *testing.T) {
	assert.Equal(t, "request validation failed", (&ErrorPayload{}).Error())
	assert.Equal(t, "/body: nope", (&ErrorPayload{Errors: []*SchemaError{
		{InstancePath: "/body", Message: "nope"},
	}}).Error())
	assert.Equal(t, "2 validation errors", (&ErrorPayload{Errors: []*SchemaError{
		{Message: "a"}, {Message: "b"},
	}}).Error())
}

func TestSchemaError_Error(t *testing.T) {
	assert.Equal(t, "root problem", (&SchemaError{Message: "root problem"}).Error())
	assert.Equal(t, "/query/page: too big", (&SchemaError{
		InstancePath: "/query/page", Message: "too big",
	}).Error())
}
