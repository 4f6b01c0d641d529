package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 1000 {
		id, err := Generate("err")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	id := MustGenerate("err")

	assert.True(t, strings.HasPrefix(id, "err-"))
	assert.Len(t, id, len("err-")+21)
}

func TestPassword(t *testing.T) {
	pw, err := Password(20)
	require.NoError(t, err)
	assert.Len(t, pw, 20)
	for _, c := range pw {
		assert.True(t, strings.ContainsRune(passwordAlphabet, c), "unexpected rune %q", c)
	}

	other, err := Password(20)
	require.NoError(t, err)
	assert.NotEqual(t, pw, other)

	_, err = Password(6)
	assert.Error(t, err)
}
