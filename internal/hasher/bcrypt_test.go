package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := NewBcrypt()

	digest, err := h.Hash("Str0ng!pass")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "Str0ng!pass", digest)

	assert.True(t, h.Compare("Str0ng!pass", digest))
	assert.False(t, h.Compare("Wrong1!pass", digest))
	assert.False(t, h.Compare("", digest))
}

func TestBcrypt_DigestsAreSalted(t *testing.T) {
	h := NewBcrypt()

	first, err := h.Hash("Str0ng!pass")
	require.NoError(t, err)
	second, err := h.Hash("Str0ng!pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Compare("Str0ng!pass", first))
	assert.True(t, h.Compare("Str0ng!pass", second))
}

func TestBcrypt_CompareGarbageDigest(t *testing.T) {
	h := NewBcrypt()

	assert.False(t, h.Compare("Str0ng!pass", "not-a-bcrypt-digest"))
	assert.False(t, h.Compare("Str0ng!pass", ""))
}
