package recipestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "simple key", key: "recipe-001"},
		{name: "url-shaped key", key: "https://example.com/recipes/pasta?id=42"},
		{name: "unicode key", key: "rezept-käsespätzle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := encodeCursor(tt.key)
			decoded, err := decodeCursor(cursor)
			require.NoError(t, err)
			assert.Equal(t, tt.key, decoded)

			// Cursor stays opaque: the raw key is not visible in it.
			if tt.key != "" {
				assert.NotEqual(t, tt.key, cursor)
			}
		})
	}
}

func TestDecodeCursor_EmptyMeansStartOfKeySpace(t *testing.T) {
	decoded, err := decodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, "", decoded)
}

func TestDecodeCursor_RejectsMalformedCursor(t *testing.T) {
	_, err := decodeCursor("not-valid-base64!!!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cursor")
}
