package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockClient stands in for a backend (postgres, milvus, redis) in tests.
type MockClient struct {
	name    string
	healthy bool
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Name() string { return m.name }

func (m *MockClient) Ping(ctx context.Context) error {
	if !m.healthy {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *MockClient) Close() error { return nil }

func (m *MockClient) Health() HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return m.Ping(ctx)
	}
}

func TestHealthCheckerReflectsBackendState(t *testing.T) {
	up := &MockClient{name: "postgres", healthy: true}
	assert.NoError(t, up.Health()())

	down := &MockClient{name: "milvus", healthy: false}
	assert.Error(t, down.Health()())
}

func TestStorageErrorMatchesByCode(t *testing.T) {
	detailed := ErrClientNotFound.WithMessage("client 'milvus' not found")

	require.NotSame(t, ErrClientNotFound, detailed)
	assert.ErrorIs(t, detailed, ErrClientNotFound)
	assert.NotErrorIs(t, detailed, ErrClientAlreadyExists)
	assert.False(t, errors.Is(detailed, errors.New("other")))
	assert.Contains(t, detailed.Error(), "CLIENT_NOT_FOUND")
	assert.Contains(t, detailed.Error(), "milvus")
}
