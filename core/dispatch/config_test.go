package dispatch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servekit/core/dispatch"
	"github.com/dmitrymomot/servekit/core/vhost"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := dispatch.DefaultConfig()
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, time.Duration(0), cfg.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.Compression)
	assert.False(t, cfg.CompatibilityMode)
	assert.Zero(t, cfg.MaxBodySize)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("SERVER_ROUTING_TIMEOUT", "250ms")
	t.Setenv("SERVER_MAX_BODY_SIZE", "1048576")
	t.Setenv("SERVER_COMPATIBILITY_MODE", "true")
	t.Setenv("SERVER_ID", "servekit/test")

	cfg, err := dispatch.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RoutingTimeout)
	assert.Equal(t, int64(1048576), cfg.MaxBodySize)
	assert.True(t, cfg.CompatibilityMode)
	assert.Equal(t, "servekit/test", cfg.ServerID)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	host, err := vhost.New("app.test", vhost.WithBinding(80, false))
	require.NoError(t, err)
	reg := vhost.NewRegistry()
	require.NoError(t, reg.Add(host))

	cfg := dispatch.DefaultConfig()
	cfg.ServerID = "servekit/1.0"
	s, err := dispatch.NewFromConfig(reg, cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Same(t, reg, s.Registry())

	_, err = dispatch.NewFromConfig(nil, cfg)
	assert.ErrorIs(t, err, dispatch.ErrNilRegistry)
}
