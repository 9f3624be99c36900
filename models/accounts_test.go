package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCredentials(t *testing.T) {
	name, err := CheckCredentials("  alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = CheckCredentials("   ", "secret")
	assert.ErrorIs(t, err, ErrUsernameRequired)
	_, err = CheckCredentials("alice", "12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, IsUniqueConstraintError(nil))
	assert.True(t, IsUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "users_username_key"`)))
	assert.False(t, IsUniqueConstraintError(errors.New("connection refused")))
}
