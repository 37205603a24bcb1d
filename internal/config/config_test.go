package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("PASSWORD_RESET_SECRET", "")
	t.Setenv("PASSWORD_RESET_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.PasswordResetTimeout)
	assert.Equal(t, cfg.SessionSecret, cfg.PasswordResetSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("PASSWORD_RESET_TIMEOUT", "30m")
	t.Setenv("PASSWORD_RESET_SECRET", "reset-secret")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 30*time.Minute, cfg.PasswordResetTimeout)
	assert.Equal(t, "reset-secret", cfg.PasswordResetSecret)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("PASSWORD_RESET_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.Equal(t, 72*time.Hour, cfg.PasswordResetTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "debug mode accepts the default secret",
			cfg:  Config{GinMode: "debug", SessionSecret: DefaultSessionSecret, PasswordResetSecret: DefaultSessionSecret},
		},
		{
			name:    "release mode rejects the default session secret",
			cfg:     Config{GinMode: "release", SessionSecret: DefaultSessionSecret, PasswordResetSecret: "reset-secret"},
			wantErr: "SESSION_SECRET",
		},
		{
			name:    "release mode rejects an empty reset secret",
			cfg:     Config{GinMode: "release", SessionSecret: "session-secret", PasswordResetSecret: ""},
			wantErr: "PASSWORD_RESET_SECRET",
		},
		{
			name: "release mode accepts private secrets",
			cfg:  Config{GinMode: "release", SessionSecret: "session-secret", PasswordResetSecret: "reset-secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReleaseWithDefaultsIsRejected(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("PASSWORD_RESET_SECRET", "")

	assert.Error(t, Load().Validate())
}
