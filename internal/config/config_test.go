package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "COOKIE_SECURE", "STORAGE_BACKEND", "STORAGE_BUCKET", "CORS_ORIGIN", "ALLOWED_ORIGINS", "EXPOSE_ERROR_CAUSE", "PUBLIC_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.ExposeErrorCause)
	assert.Equal(t, StorageDisk, cfg.StorageBackend)
	assert.Equal(t, "curriculum-image", cfg.StorageBucket)
	assert.Equal(t, "http://localhost:4000", cfg.PublicBaseURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGIN", "https://app.example.com")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com")

	cfg := Load()

	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"https://app.example.com",
		"https://a.example.com",
		"https://b.example.com",
	}, cfg.AllowedOrigins)
}

func TestLoadBooleans(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("EXPOSE_ERROR_CAUSE", "not-a-bool")

	cfg := Load()

	assert.False(t, cfg.CookieSecure)
	assert.False(t, cfg.ExposeErrorCause)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StorageBackend: StorageSupabase}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_URL")

	cfg = &Config{JWTSecret: "s", DatabaseURL: "file.db", StorageBackend: StorageDisk}
	assert.NoError(t, cfg.Validate())
}
