package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	key, err := CleanKey("/logos/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "logos/abc.png", key)

	for _, bad := range []string{"", "/", "..", "../etc/passwd", "logos/../../x", "logos//a.png", "logos/./a.png"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}
