package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3ssion")
	t.Setenv("CSRF_SECRET", "csrf")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Zero(t, cfg.DashboardCacheTTL, "dashboard counters are read fresh unless a TTL is configured")
	assert.Equal(t, "s3ssion", cfg.JWTSecret)
	assert.Equal(t, "Africa/Lagos", cfg.Location().String())
}
