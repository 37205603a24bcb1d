package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.userRepo, env.passwords, env.log)

	user := testutil.CreateUser(t, env.db, "alice", testutil.WithPassword("correct-horse-battery"))

	t.Run("success records last login", func(t *testing.T) {
		got, err := svc.Login(LoginInput{Username: "alice", Password: "correct-horse-battery"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotNil(t, got.LastLogin)

		reloaded, err := env.userRepo.FindByID(user.ID)
		require.NoError(t, err)
		assert.NotNil(t, reloaded.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(LoginInput{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(LoginInput{Username: "nobody", Password: "correct-horse-battery"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := testutil.CreateUser(t, env.db, "carol", testutil.WithPassword("correct-horse-battery"))
		require.NoError(t, env.db.Model(inactive).Update("is_active", false).Error)

		_, err := svc.Login(LoginInput{Username: "carol", Password: "correct-horse-battery"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.userRepo, env.passwords, env.log)

	user := testutil.CreateUser(t, env.db, "alice")

	got, err := svc.Authenticate(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.Authenticate(user.ID, 1)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	_, err = svc.Authenticate(9999, 0)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)
	_, err = svc.Authenticate(user.ID, 0)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthService_GetUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.userRepo, env.passwords, env.log)

	_, err := svc.GetUser(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
