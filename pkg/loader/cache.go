// Package loader memoizes view loads.
//
// A [Cache] invokes each view's deferred loader at most once per process: the
// first successful result is kept for the life of the cache, concurrent first
// requests for the same view share one underlying load, and failures are not
// remembered so a later request retries.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/vroute/pkg/telemetry"
	"github.com/vango-dev/vroute/pkg/view"
)

// LoadError reports a failed view load. It is never cached.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load view %q: %v", e.ID, e.Err)
}

// Unwrap returns the loader's error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the registered error code.
func (e *LoadError) ErrorCode() string {
	return "R040"
}

// Cache is an append-only, single-flight cache of loaded view units keyed by
// view id. Refs sharing an id are assumed to load equivalent units; the first
// loader to run for an id wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]view.Unit
	group   singleflight.Group

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for load spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Cache) {
		c.tracer = tracer
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]view.Unit),
		logger:  slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = telemetry.Tracer("")
	}
	return c
}

// Cached returns the unit for id if it has already been loaded.
func (c *Cache) Cached(id string) (view.Unit, bool) {
	c.mu.RLock()
	unit, ok := c.entries[id]
	c.mu.RUnlock()
	return unit, ok
}

// Len returns the number of loaded views.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load returns the unit for ref, invoking its loader only if no earlier load
// succeeded. Concurrent callers for the same id wait on a single load.
//
// The underlying load is detached from ctx: if ctx is cancelled, Load returns
// ctx.Err() but the load keeps running for the other waiters and its result is
// still cached.
func (c *Cache) Load(ctx context.Context, ref view.Ref) (view.Unit, error) {
	if unit, ok := c.Cached(ref.ID); ok {
		c.metrics.RecordLoad(telemetry.LoadHit)
		return unit, nil
	}
	if ref.Loader == nil {
		c.metrics.RecordLoad(telemetry.LoadError)
		return nil, &LoadError{ID: ref.ID, Err: view.ErrNoLoader}
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(ref.ID, func() (any, error) {
		return c.load(detached, ref)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Preload loads every ref in parallel and returns the first error.
func (c *Cache) Preload(ctx context.Context, refs ...view.Ref) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		g.Go(func() error {
			_, err := c.Load(gctx, ref)
			return err
		})
	}
	return g.Wait()
}

// load runs inside the single flight for ref.ID.
func (c *Cache) load(ctx context.Context, ref view.Ref) (unit view.Unit, err error) {
	// A flight for this id may have finished between the caller's lookup and
	// this flight starting.
	if unit, ok := c.Cached(ref.ID); ok {
		c.metrics.RecordLoad(telemetry.LoadHit)
		return unit, nil
	}

	ctx, span := telemetry.Start(ctx, c.tracer, "vroute.load", telemetry.AttrViewID.String(ref.ID))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			unit, err = nil, &LoadError{ID: ref.ID, Err: fmt.Errorf("loader panic: %v", r)}
			c.metrics.RecordLoad(telemetry.LoadError)
			c.logger.Error("view loader panicked", "view", ref.ID, "panic", r)
		}
		c.metrics.ObserveLoad(time.Since(start))
		telemetry.End(span, err)
	}()

	c.metrics.RecordLoad(telemetry.LoadMiss)
	unit, err = ref.Loader.Load(ctx)
	if err != nil {
		c.metrics.RecordLoad(telemetry.LoadError)
		c.logger.Warn("view load failed", "view", ref.ID, "error", err)
		return nil, &LoadError{ID: ref.ID, Err: err}
	}

	c.mu.Lock()
	c.entries[ref.ID] = unit
	n := len(c.entries)
	c.mu.Unlock()
	c.metrics.SetCachedViews(n)

	c.logger.Debug("view loaded", "view", ref.ID, "duration", time.Since(start))
	return unit, nil
}
