package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- strPtr Tests ---

func TestStrPtr(t *testing.T) {
	t.Run("non-empty string", func(t *testing.T) {
		p := strPtr("hello")
		require.NotNil(t, p)
		assert.Equal(t, "hello", *p)
	})

	t.Run("empty string returns nil", func(t *testing.T) {
		p := strPtr("")
		assert.Nil(t, p)
	})
}

// --- ensureJSON Tests ---

func TestEnsureJSON(t *testing.T) {
	t.Run("nil returns empty object", func(t *testing.T) {
		result := ensureJSON(nil)
		assert.Equal(t, json.RawMessage(`{}`), result)
	})

	t.Run("non-nil passthrough", func(t *testing.T) {
		data := json.RawMessage(`{"key":"value"}`)
		result := ensureJSON(data)
		assert.Equal(t, data, result)
	})
}
