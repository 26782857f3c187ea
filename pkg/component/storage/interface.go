package storage

import (
	"context"
	"time"
)

// Client is the base interface that all storage clients must implement.
// Each backend (PostgreSQL, Redis, Milvus) implements this interface so the
// manager can health-check and shut them down uniformly.
type Client interface {
	// Name returns the storage type name, e.g. "postgres" or "redis".
	Name() string

	// Ping checks that the connection to the backend is alive. It should
	// be a lightweight operation and honor the context deadline.
	Ping(ctx context.Context) error

	// Close closes the connection gracefully. Close must be idempotent.
	Close() error

	// Health returns a HealthChecker bound to this client.
	Health() HealthChecker
}

// HealthChecker performs a health check on a storage backend.
type HealthChecker func() error

// HealthStatus is the result of a health check operation.
type HealthStatus struct {
	// Name identifies the storage instance being checked.
	Name string

	// Healthy is true when the backend responded normally.
	Healthy bool

	// Latency is how long the check took.
	Latency time.Duration

	// Error holds the failure detail when Healthy is false.
	Error error
}
