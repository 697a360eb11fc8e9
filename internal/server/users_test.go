package server

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/opportunity-agent/internal/config"
	"github.com/nexora/opportunity-agent/internal/types"
)

func newTestUserService(store UserStore) *UserService {
	return NewUserService(store, &config.PasswordConfig{BcryptCost: 10})
}

func TestUserServiceRegister(t *testing.T) {
	store := newMemStore()
	svc := newTestUserService(store)

	user, err := svc.Register(context.Background(), &types.RegisterRequest{
		Email:    "kim@example.com",
		Name:     "Kim",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", user.Email)
	assert.NotEqual(t, "long-enough-password", store.hashes[user.Email], "password must be stored hashed")

	_, err = svc.Register(context.Background(), &types.RegisterRequest{
		Email:    "kim@example.com",
		Password: "another-password",
	})
	var dup *ErrEmailAlreadyExists
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "kim@example.com", dup.Email)
}

func TestUserServiceLogin(t *testing.T) {
	store := newMemStore()
	svc := newTestUserService(store)

	registered, err := svc.Register(context.Background(), &types.RegisterRequest{
		Email:    "kim@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), &types.LoginRequest{
		Email:    "kim@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email:    "kim@example.com",
		Password: "wrong-password",
	})
	var invalid *ErrInvalidCredentials
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email:    "nobody@example.com",
		Password: "long-enough-password",
	})
	assert.ErrorAs(t, err, &invalid, "unknown account and wrong password look the same")
}

func TestUserServiceUpdatePassword(t *testing.T) {
	store := newMemStore()
	svc := newTestUserService(store)

	user, err := svc.Register(context.Background(), &types.RegisterRequest{
		Email:    "kim@example.com",
		Password: "original-password",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), user.ID, "wrong-password", "replacement-password")
	var invalid *ErrInvalidCredentials
	require.ErrorAs(t, err, &invalid)

	err = svc.UpdatePassword(context.Background(), user.ID, "original-password", "replacement-password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email:    "kim@example.com",
		Password: "replacement-password",
	})
	assert.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), uuid.New(), "whatever", "replacement-password")
	var missing *ErrUserNotFound
	assert.ErrorAs(t, err, &missing)
}
