package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, time.Hour, cfg.JWTExp)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 10*time.Minute, cfg.SessionSweepInterval)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 8, cfg.PasswordMinLength)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Contains(t, cfg.DBConnStr, "dbname=blog_db")
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, cfg.JWTKey, cfg.SessionSecret)
	assert.Same(t, cfg, AppConfig)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_PATH", "/tmp/blog.db")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_EXPIRE_IN", "30m")
	t.Setenv("SESSION_MAX_AGE", "60000")
	t.Setenv("SALT_ITERATIONS", "99")
	t.Setenv("SESSION_SWEEP_INTERVAL", "0s")
	t.Setenv("TW_WIDGET_COLORS", "Red|blue")
	t.Setenv("TW_WIDGET_COLOR", "BLUE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.JWTExp)
	assert.Equal(t, time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, 31, cfg.BcryptCost)
	assert.Zero(t, cfg.SessionSweepInterval)
	assert.Equal(t, []string{"red", "blue"}, cfg.WidgetColors)
	assert.Equal(t, "blue", cfg.WidgetColor)
	assert.Equal(t, "file:/tmp/blog.db?_foreign_keys=on&_busy_timeout=5000", cfg.DBConnStr)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"unknown algorithm", map[string]string{"JWT_ALGORITHM": "none"}},
		{"unknown color", map[string]string{"TW_WIDGET_COLOR": "magenta"}},
		{"default secret in production", map[string]string{"APP_ENV": "production", "SESSION_SECRET": "s"}},
		{"missing session secret in production", map[string]string{"NODE_ENV": "production", "JWT_SECRET": "real"}},
		{"non positive expiry", map[string]string{"JWT_EXPIRE_IN": "-1h"}},
		{"negative sweep interval", map[string]string{"SESSION_SWEEP_INTERVAL": "-1m"}},
		{"malformed expiry", map[string]string{"JWT_EXPIRE_IN": "2d"}},
		{"malformed session max age", map[string]string{"SESSION_MAX_AGE": "1h"}},
		{"malformed bcrypt cost", map[string]string{"SALT_ITERATIONS": "ten"}},
		{"malformed redis db", map[string]string{"REDIS_DB": "first"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadNamesEveryMalformedSetting(t *testing.T) {
	t.Setenv("JWT_EXPIRE_IN", "2d")
	t.Setenv("SALT_ITERATIONS", "ten")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_EXPIRE_IN")
	assert.Contains(t, err.Error(), "SALT_ITERATIONS")
}
