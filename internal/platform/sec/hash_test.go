// Copyright (c) 2026 Shelfy. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfy-app/shelfy/internal/platform/sec"
)

func TestGenerateSalt_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	first, err := sec.GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, first, sec.SaltLength)

	second, err := sec.GenerateSalt()
	require.NoError(t, err)

	// Two subsequent salts colliding would mean the randomness source is broken.
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, make([]byte, sec.SaltLength), first)
}

func TestHashPassword_Deterministic(t *testing.T) {
	t.Parallel()

	salt := []byte("shelfy-test-salt-16+")

	first := sec.HashPassword("correct horse battery staple", salt)
	second := sec.HashPassword("correct horse battery staple", salt)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "same (password, salt) must always hash identically")
}

func TestHashPassword_ChangingInputsChangesOutput(t *testing.T) {
	t.Parallel()

	salt := []byte("shelfy-test-salt-16+")
	base := sec.HashPassword("bookworm42", salt)

	assert.NotEqual(t, base, sec.HashPassword("bookworm42", []byte("a-different-salt----")),
		"changing the salt must change the hash")
	assert.NotEqual(t, base, sec.HashPassword("bookworm43", salt),
		"changing the password must change the hash")
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	salt, err := sec.GenerateSalt()
	require.NoError(t, err)
	hash := sec.HashPassword("readinglist7", salt)

	assert.True(t, sec.VerifyPassword("readinglist7", salt, hash))
	assert.False(t, sec.VerifyPassword("readinglist8", salt, hash))
	assert.False(t, sec.VerifyPassword("readinglist7", []byte("wrong-salt"), hash))
	assert.False(t, sec.VerifyPassword("", salt, hash))
}

func TestHashToken_StableAndOpaque(t *testing.T) {
	t.Parallel()

	token, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	require.Len(t, token, 64) // 32 bytes hex-encoded

	assert.Equal(t, sec.HashToken(token), sec.HashToken(token))
	assert.NotEqual(t, token, sec.HashToken(token))
}
