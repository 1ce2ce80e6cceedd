package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_Length(t *testing.T) {
	for length := MinLen; length <= MaxLen; length++ {
		code, err := Random(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
	}
}

func TestRandom_Alphabet(t *testing.T) {
	code, err := Random(64)
	require.NoError(t, err)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
	}
}

func TestRandom_InvalidLength(t *testing.T) {
	_, err := Random(0)
	assert.Error(t, err)

	_, err = Random(-3)
	assert.Error(t, err)
}

func TestRandom_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := Random(MinLen)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}
}
