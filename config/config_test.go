package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("CRON_ENABLED", "")
	t.Setenv("EXTRACTION_TIMEOUT_SECONDS", "nope")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, "localhost", env.DB_HOST)
	assert.Equal(t, "enacton-training-api", env.JWT_ISSUER)
	assert.True(t, env.CRON_ENABLED)
	assert.Equal(t, 120, env.EXTRACTION_TIMEOUT_SECONDS)
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("GO_ENV", "production")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 9090, env.PORT)
	assert.False(t, env.CRON_ENABLED)
	assert.True(t, env.IsProduction())
}
