package admin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("зелёный-лист")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	assert.True(t, verifyArgon2id("зелёный-лист", hash))
	assert.False(t, verifyArgon2id("другой", hash))

	other, err := HashPassword("зелёный-лист")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "соль случайная")
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
