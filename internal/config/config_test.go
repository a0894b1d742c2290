package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DATABASE_URL", "PORT", "SESSION_LIFETIME", "CORS_ALLOWED_ORIGINS", "MIGRATIONS_PATH", "R2_ACCOUNT_ID", "DISCORD_KEY", "GOOGLE_KEY", "SESSION_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "sabo_arena.db?_journal_mode=WAL&_foreign_keys=on", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "migrations/sqlite3", cfg.MigrationsDir())
	assert.False(t, cfg.R2.Enabled())
	assert.False(t, cfg.Auth.DiscordEnabled())
	assert.False(t, cfg.Auth.GoogleEnabled())
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://arena@localhost/arena?sslmode=disable")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://saboarena.vn, http://localhost:8081")
	t.Setenv("MIGRATIONS_PATH", "/srv/migrations/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://saboarena.vn", "http://localhost:8081"}, cfg.AllowedOrigins)
	assert.Equal(t, "/srv/migrations/postgres", cfg.MigrationsDir())
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "driver", key: "DB_DRIVER", val: "mysql"},
		{name: "port", key: "PORT", val: "eighty"},
		{name: "port range", key: "PORT", val: "70000"},
		{name: "session lifetime", key: "SESSION_LIFETIME", val: "forever"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_Auth(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("GOOGLE_KEY", "")
	t.Setenv("DISCORD_KEY", "discord-key")
	t.Setenv("DISCORD_SECRET", "discord-secret")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "state-signing-secret")
	t.Setenv("LOGIN_REDIRECT_URL", "https://saboarena.vn/admin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.DiscordEnabled())
	assert.False(t, cfg.Auth.GoogleEnabled())
	assert.Equal(t, "https://saboarena.vn/admin", cfg.Auth.LoginRedirectURL)
}
