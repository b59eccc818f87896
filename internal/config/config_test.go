package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_DSN", "postgres://fallback")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://fallback", cfg.Postgres.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, "cijene-me:", cfg.Cache.Prefix)
	assert.Equal(t, time.Hour, cfg.Cache.TTL())
	assert.Equal(t, int64(5*1024*1024), cfg.Media.MaxUploadBytes)
	assert.Equal(t, "cijene.events", cfg.Events.Exchange)
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://primary")
	t.Setenv("POSTGRES_DSN", "postgres://fallback")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary", cfg.Postgres.DSN)
}

func TestLoad_RejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "prod-access")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "prod-refresh")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "same")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "same")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_REFRESH_SECRET_KEY", "different")
	t.Setenv("MEDIA_DRIVER", "ftp")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("MEDIA_DRIVER", "S3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Media.Driver)
}

func TestAppConfig_Helpers(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "9000", RequestTimeoutSeconds: 0}
	assert.Equal(t, "127.0.0.1:9000", app.Addr())
	assert.Equal(t, time.Duration(0), app.RequestTimeout())
}
