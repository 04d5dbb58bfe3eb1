package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	Cost = bcrypt.MinCost
	t.Cleanup(func() { Cost = 14 })

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, NeedsRehash(hash))

	Cost = bcrypt.MinCost + 1
	assert.True(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("not-a-hash"))
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(16)
	require.NoError(t, err)
	b, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.Contains(t, passwordCharset, string(c))
	}
}
