package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, raw, 43)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashResetToken(raw))

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestPasswordLink(t *testing.T) {
	assert.Equal(t, "http://app.test/set-password?token=a%2Bb", PasswordLink("http://app.test", "/set-password", "a+b"))
}
