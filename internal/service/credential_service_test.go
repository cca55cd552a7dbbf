package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purpleforest/purpleforest/internal/repository"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	creds := NewCredentialService(repository.NewUserRepository(db))
	ctx := context.Background()

	registered, err := creds.Register(ctx, "daisy", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "daisy", registered.Username)
	assert.Len(t, registered.PasswordSalt, saltLength)
	assert.Len(t, registered.PasswordHash, scryptKeyLen)
	for _, b := range registered.PasswordSalt {
		assert.Contains(t, saltAlphabet, string(b), "salt stays within the printable alphabet")
	}

	authed, err := creds.Authenticate(ctx, "daisy", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, authed.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	creds := NewCredentialService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := creds.Register(ctx, "daisy", "hunter22")
	require.NoError(t, err)

	_, err = creds.Authenticate(ctx, "daisy", "hunter23")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	creds := NewCredentialService(repository.NewUserRepository(db))

	_, err := creds.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrUnknownUser, "unknown user and wrong password are distinct reasons")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	creds := NewCredentialService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := creds.Register(ctx, "daisy", "hunter22")
	require.NoError(t, err)

	_, err = creds.Register(ctx, "daisy", "different")
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	// the original password still verifies
	_, err = creds.Authenticate(ctx, "daisy", "hunter22")
	assert.NoError(t, err)
}

func TestGenerateSaltUniform(t *testing.T) {
	const iterations = 10000
	counts := make(map[byte]int)
	for i := 0; i < iterations; i++ {
		salt, err := generateSalt()
		require.NoError(t, err)
		require.Len(t, salt, saltLength)
		for _, b := range salt {
			assert.Contains(t, saltAlphabet, string(b))
			counts[b]++
		}
	}

	// With rejection sampling every character lands near the expected
	// draws/62; a modulo-biased generator overweights the low end of
	// the alphabet by ~25%, far outside this tolerance.
	expected := float64(iterations*saltLength) / float64(len(saltAlphabet))
	for c, n := range counts {
		assert.InDelta(t, expected, float64(n), expected*0.12, "character %q drawn %d times", string(c), n)
	}
}

func TestSaltsDifferAcrossRegistrations(t *testing.T) {
	db := setupTestDB(t)
	creds := NewCredentialService(repository.NewUserRepository(db))
	ctx := context.Background()

	a, err := creds.Register(ctx, "a", "samepassword")
	require.NoError(t, err)
	b, err := creds.Register(ctx, "b", "samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, a.PasswordSalt, b.PasswordSalt)
	assert.NotEqual(t, a.PasswordHash, b.PasswordHash, "same password, different salt, different hash")
}
