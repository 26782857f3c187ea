// Package pool wraps ants worker pools with task statistics and lifecycle
// management. Pools are created and injected explicitly; there is no
// process-wide registry.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrPoolOverload is returned when a nonblocking pool is saturated.
	ErrPoolOverload = errors.New("worker pool is overloaded")
)

// Config defines the configuration for a worker pool.
type Config struct {
	// Capacity is the maximum number of concurrent workers.
	Capacity int
	// ExpiryDuration is how long an idle worker lives before reclaim.
	ExpiryDuration time.Duration
	// PreAlloc preallocates worker queue memory.
	PreAlloc bool
	// Nonblocking makes Submit fail instead of block when saturated.
	Nonblocking bool
	// MaxBlockingTasks caps queued tasks when Nonblocking is false.
	MaxBlockingTasks int
	// PanicHandler handles panics escaping a task. The default logs them.
	PanicHandler func(interface{})
}

// DefaultConfig returns a general-purpose pool configuration.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       1000,
		ExpiryDuration: 10 * time.Second,
	}
}

// IndexConfig returns the configuration for the content indexing pool.
// Indexing calls out to embedding and vector services, so tasks are slow;
// the pool blocks publishers instead of dropping work.
func IndexConfig(workers int) *Config {
	return &Config{
		Capacity:         workers,
		ExpiryDuration:   60 * time.Second,
		MaxBlockingTasks: 0,
	}
}

// HealthCheckConfig returns the configuration for health check fan-out.
func HealthCheckConfig() *Config {
	return &Config{
		Capacity:         100,
		ExpiryDuration:   30 * time.Second,
		PreAlloc:         true,
		Nonblocking:      true,
		MaxBlockingTasks: 10,
	}
}

// Pool is a named worker pool with task statistics.
type Pool struct {
	name   string
	pool   *ants.Pool
	config *Config
	stats  statsCounter

	closed   atomic.Bool
	closedMu sync.Mutex
}

type statsCounter struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	panics    atomic.Int64
}

// Stats is a snapshot of pool task counters.
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
	Rejected  int64
	Panics    int64
}

// New creates a worker pool with the given configuration. A nil config
// uses DefaultConfig.
func New(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pool{
		name:   name,
		config: config,
	}

	opts := []ants.Option{
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithPreAlloc(config.PreAlloc),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
	}
	handler := config.PanicHandler
	if handler == nil {
		handler = func(r interface{}) {
			logger.Errorw("worker panic recovered", "pool", name, "panic", r)
		}
	}
	opts = append(opts, ants.WithPanicHandler(handler))

	pool, err := ants.NewPool(config.Capacity, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	p.pool = pool

	logger.Infow("worker pool created", "name", name, "capacity", config.Capacity)
	return p, nil
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Cap returns the pool capacity.
func (p *Pool) Cap() int { return p.pool.Cap() }

// Running returns the number of running workers.
func (p *Pool) Running() int { return p.pool.Running() }

// Free returns the number of available workers.
func (p *Pool) Free() int { return p.pool.Free() }

// Waiting returns the number of queued tasks.
func (p *Pool) Waiting() int { return p.pool.Waiting() }

// Submit schedules a task on the pool.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	err := p.pool.Submit(func() {
		p.stats.submitted.Add(1)
		defer func() {
			if r := recover(); r != nil {
				p.stats.panics.Add(1)
				p.stats.failed.Add(1)
				panic(r) // let the ants panic handler log it
			}
			p.stats.completed.Add(1)
		}()
		task()
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			p.stats.rejected.Add(1)
			return ErrPoolOverload
		}
		p.stats.failed.Add(1)
		return err
	}
	return nil
}

// SubmitWithContext schedules a task that is skipped if ctx is cancelled
// before it starts.
func (p *Pool) SubmitWithContext(ctx context.Context, task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.Submit(func() {
		select {
		case <-ctx.Done():
		default:
			task()
		}
	})
}

// Stats returns a snapshot of task counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.stats.submitted.Load(),
		Completed: p.stats.completed.Load(),
		Failed:    p.stats.failed.Load(),
		Rejected:  p.stats.rejected.Load(),
		Panics:    p.stats.panics.Load(),
	}
}

// Release shuts the pool down without waiting for queued tasks.
func (p *Pool) Release() {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return
	}
	p.closed.Store(true)
	p.pool.Release()
	logger.Infow("worker pool released", "name", p.name)
}

// ReleaseTimeout shuts the pool down, waiting up to timeout for running
// tasks to finish.
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return nil
	}
	p.closed.Store(true)
	return p.pool.ReleaseTimeout(timeout)
}
