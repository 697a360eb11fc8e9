package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.Pepper)

	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "test-pepper")
	cfg, err = NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "test-pepper", cfg.Pepper)
}

func TestNewPasswordConfigCostRange(t *testing.T) {
	for _, bad := range []string{"9", "15", "-1", "abc"} {
		t.Setenv("BCRYPT_COST", bad)
		cfg, err := NewPasswordConfig()
		assert.Error(t, err, "cost %q should be rejected", bad)
		assert.Nil(t, cfg)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)

	hash, err := cfg.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, cfg.VerifyPassword("correct-horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong-horse", hash))
	assert.False(t, cfg.VerifyPassword("correct-horse", "not-a-hash"))
}

func TestHashPasswordSaltVaries(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)

	h1, err := cfg.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := cfg.HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordWithPepper(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "pepper-one")
	peppered, err := NewPasswordConfig()
	require.NoError(t, err)

	hash, err := peppered.HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword("secret", hash))

	t.Setenv("PASSWORD_PEPPER", "")
	plain, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.False(t, plain.VerifyPassword("secret", hash))
}
