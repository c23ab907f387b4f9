package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret")

	resp, err := svc.Register(&RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(&LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.Error(t, err)
}

func TestAuthService_RejectsDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register(&RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "hunter2hunter2",
	})
	assert.Error(t, err)

	profile, err := svc.GetProfile(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}
