package ident

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalIDIsUUID(t *testing.T) {
	src := NewSource()

	id := src.GlobalID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, src.GlobalID())
}

func TestLocalKeyShape(t *testing.T) {
	src := NewSource()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := src.LocalKey()
		assert.Len(t, key, localKeyLen)
		for _, r := range key {
			assert.True(t, strings.ContainsRune(localKeyAlphabet, r), "unexpected rune %q in %q", r, key)
		}
		seen[key] = true
	}
	// 100 draws from a 36^6 space colliding down to a handful would mean
	// the generator is broken, not unlucky.
	assert.Greater(t, len(seen), 95)
}

func TestSequenceIsDeterministic(t *testing.T) {
	seq := NewSequence("test")

	assert.Equal(t, "test-g1", seq.GlobalID())
	assert.Equal(t, "test-g2", seq.GlobalID())
	assert.Equal(t, "test-k1", seq.LocalKey())
	assert.Equal(t, "test-k2", seq.LocalKey())
	assert.Equal(t, "test-g3", seq.GlobalID())
}
