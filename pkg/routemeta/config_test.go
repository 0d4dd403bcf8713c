package routemeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Lookup(t *testing.T) {
	cfg := Config{
		"meta": map[string]any{
			"parameters": map[string]any{"body": map[string]any{}},
		},
		"flag": true,
	}

	t.Run("dot and bracket forms agree", func(t *testing.T) {
		a, ok := cfg.Lookup("meta.parameters")
		require.True(t, ok)
		b, ok := cfg.Lookup("meta[parameters]")
		require.True(t, ok)
		assert.Equal(t, a, b)
	})

	t.Run("missing path", func(t *testing.T) {
		_, ok := cfg.Lookup("meta.missing")
		assert.False(t, ok)
	})

	t.Run("path through scalar", func(t *testing.T) {
		_, ok := cfg.Lookup("flag.deeper")
		assert.False(t, ok)
	})

	t.Run("nil config", func(t *testing.T) {
		var none Config
		_, ok := none.Lookup("anything")
		assert.False(t, ok)
	})
}

func TestConfig_Value(t *testing.T) {
	cfg := Config{KeyOnError: "handler-ish"}

	assert.Equal(t, "handler-ish", cfg.Value(KeyOnError))
	assert.Nil(t, cfg.Value(KeyValidatorOptions))

	var none Config
	assert.Nil(t, none.Value(KeyOnError))
}
