package auth_test

import (
	"testing"

	auth "github.com/zeyadwaleed003/commerce-auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	token, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, token.Plaintext, 64) // 32 bytes hex-encoded
	assert.Len(t, token.Hash, 32)      // sha256 digest
	assert.Equal(t, auth.HashOpaqueToken(token.Plaintext), token.Hash)

	other, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, token.Plaintext, other.Plaintext)
}

func TestOpaqueTokenMatches(t *testing.T) {
	token, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)

	t.Run("Matching plaintext", func(t *testing.T) {
		assert.True(t, auth.OpaqueTokenMatches(token.Plaintext, token.Hash))
	})

	t.Run("Wrong plaintext", func(t *testing.T) {
		assert.False(t, auth.OpaqueTokenMatches("deadbeef", token.Hash))
	})

	t.Run("Empty hash", func(t *testing.T) {
		assert.False(t, auth.OpaqueTokenMatches(token.Plaintext, nil))
	})
}
