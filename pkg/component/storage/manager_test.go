package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bloggy/pkg/component/pool"
)

func TestManager_RegisterAndGet(t *testing.T) {
	mgr := NewManager()

	require.NoError(t, mgr.Register("postgres", &MockClient{name: "postgres", healthy: true}))
	assert.Error(t, mgr.Register("postgres", &MockClient{name: "postgres"}), "duplicate name must fail")
	assert.Error(t, mgr.Register("", &MockClient{name: "x"}))
	assert.Error(t, mgr.Register("nil-client", nil))

	client, err := mgr.Get("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", client.Name())

	_, err = mgr.Get("missing")
	assert.ErrorIs(t, err, ErrClientNotFound)

	assert.True(t, mgr.Has("postgres"))
	assert.Equal(t, 1, mgr.Count())
}

func TestManager_HealthCheckAll(t *testing.T) {
	mgr := NewManager()
	mgr.MustRegister("healthy", &MockClient{name: "healthy", healthy: true})
	mgr.MustRegister("broken", &MockClient{name: "broken", healthy: false})

	statuses := mgr.HealthCheckAll(context.Background())
	require.Len(t, statuses, 2)
	assert.True(t, statuses["healthy"].Healthy)
	assert.False(t, statuses["broken"].Healthy)
	assert.Error(t, statuses["broken"].Error)

	assert.False(t, mgr.AllHealthy(context.Background()))
}

func TestManager_HealthCheckAllWithPool(t *testing.T) {
	p, err := pool.New("health-check", pool.HealthCheckConfig())
	require.NoError(t, err)
	defer p.Release()

	mgr := NewManagerWithPool(p)
	mgr.MustRegister("a", &MockClient{name: "a", healthy: true})
	mgr.MustRegister("b", &MockClient{name: "b", healthy: true})

	assert.True(t, mgr.AllHealthy(context.Background()))
}

func TestManager_CloseAll(t *testing.T) {
	mgr := NewManager()
	mgr.MustRegister("a", &MockClient{name: "a", healthy: true})
	mgr.MustRegister("b", &MockClient{name: "b", healthy: true})

	require.NoError(t, mgr.CloseAll())
	assert.Zero(t, mgr.Count())
}
