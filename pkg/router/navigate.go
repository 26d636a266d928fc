package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vroute/pkg/loader"
	"github.com/vango-dev/vroute/pkg/telemetry"
	"github.com/vango-dev/vroute/pkg/view"
)

// ErrSuperseded is returned by Navigate when a newer navigation started on the
// same Navigator before this one finished. Its result is dropped unmounted.
var ErrSuperseded = errors.New("router: navigation superseded")

// Layer is one loaded view of a mounted navigation.
type Layer struct {
	// ID is the view id.
	ID string

	// Pattern is the pattern of the node that owns the view.
	Pattern string

	// Unit is the loaded view.
	Unit view.Unit

	// Remainder is the wildcard capture, for wildcard nodes.
	Remainder string
}

// View is what a Renderer mounts: the loaded layers of a match, outermost
// first, or a not-found marker.
type View struct {
	// Requested is the path passed to Navigate.
	Requested string

	// Path, Query and Fragment describe the final, canonical location.
	Path     string
	Query    string
	Fragment string

	// Layers are the loaded views, outermost first.
	Layers []Layer

	// Params maps wildcard names to captured remainders.
	Params map[string]string

	// Redirects lists the paths redirected through.
	Redirects []string

	// NotFound is set when no route matched.
	NotFound bool

	// Replace asks the renderer to replace the current history entry.
	Replace bool
}

// Renderer mounts navigations. It is supplied by the application. Mount
// calls are serialized per Navigator, so a Renderer must not call Navigate
// on the same Navigator from within Mount or MountError.
type Renderer interface {
	// Mount renders v, nesting its layers outermost to innermost.
	Mount(ctx context.Context, v *View) error

	// MountError presents an error state for path, typically a *loader.LoadError.
	MountError(ctx context.Context, path string, err error) error
}

// NavigateOptions configures one navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Params are query parameters to add to the path.
	Params map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithParams adds query parameters to the navigation path.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// buildPath adds params to the query of path.
func buildPath(path string, params map[string]any) (string, error) {
	if len(params) == 0 {
		return path, nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %s", path)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Navigator turns paths into mounted views for one navigation source. Each
// Navigate call supersedes the ones before it: an older navigation that
// finishes later is not mounted. Loads are shared through the cache, so a
// superseded navigation never aborts a load another one is waiting on.
type Navigator struct {
	resolver *Resolver
	cache    *loader.Cache
	renderer Renderer
	fallback string
	seq      atomic.Uint64

	// mountMu makes the superseded check and the renderer call one step, so
	// mounts happen in navigation order.
	mountMu sync.Mutex

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithFallback sets the path navigated to when a redirect loop is detected.
func WithFallback(path string) NavigatorOption {
	return func(n *Navigator) {
		n.fallback = path
	}
}

// WithNavigatorLogger sets the logger.
func WithNavigatorLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// WithNavigatorMetrics records navigation outcomes.
func WithNavigatorMetrics(m *telemetry.Metrics) NavigatorOption {
	return func(n *Navigator) {
		n.metrics = m
	}
}

// WithNavigatorTracer sets the tracer used for navigation spans.
func WithNavigatorTracer(tracer trace.Tracer) NavigatorOption {
	return func(n *Navigator) {
		n.tracer = tracer
	}
}

// NewNavigator creates a Navigator.
func NewNavigator(resolver *Resolver, cache *loader.Cache, renderer Renderer, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		resolver: resolver,
		cache:    cache,
		renderer: renderer,
		logger:   slog.Default().With("component", "navigator"),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.tracer == nil {
		n.tracer = telemetry.Tracer("")
	}
	return n
}

// Navigate resolves path, follows redirects, loads the matched views and
// mounts them.
//
// It returns *RedirectLoopError when the path loops and no fallback is set
// (or the fallback loops too), *loader.LoadError after reporting a failed load
// to Renderer.MountError, ErrSuperseded when a newer navigation started, or
// the context's error if ctx ends while waiting on loads.
func (n *Navigator) Navigate(ctx context.Context, path string, opts ...NavigateOption) (*View, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}
	id := n.seq.Add(1)

	target, err := buildPath(path, options.Params)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Start(ctx, n.tracer, "vroute.navigate", telemetry.AttrPath.String(target))
	v, outcome, err := n.navigate(ctx, id, target, options, n.fallback != "")
	span.SetAttributes(telemetry.AttrOutcome.String(outcome))
	if v != nil {
		span.SetAttributes(telemetry.AttrDepth.Int(len(v.Layers)), telemetry.AttrHops.Int(len(v.Redirects)))
	}
	telemetry.End(span, err)
	n.metrics.RecordNavigation(outcome)
	return v, err
}

func (n *Navigator) navigate(ctx context.Context, id uint64, path string, options NavigateOptions, allowFallback bool) (*View, string, error) {
	res, err := n.resolver.Follow(path)
	if err != nil {
		var loop *RedirectLoopError
		if errors.As(err, &loop) && allowFallback {
			n.logger.Warn("redirect loop, navigating to fallback",
				"path", path, "chain", loop.Chain, "fallback", n.fallback)
			return n.navigate(ctx, id, n.fallback, options, false)
		}
		n.logger.Error("navigation failed", "path", path, "error", err)
		return nil, telemetry.OutcomeRedirectLoop, err
	}

	v := &View{Requested: path, Replace: options.Replace}
	switch res := res.(type) {
	case *NotFound:
		v.Path = res.Path
		v.NotFound = true
	case *Match:
		v.Path, v.Query, v.Fragment = res.Path, res.Query, res.Fragment
		v.Params = res.Params
		v.Redirects = res.Redirects
		layers, err := n.loadChain(ctx, res)
		if err != nil {
			if ctx.Err() != nil {
				return nil, telemetry.OutcomeCancelled, ctx.Err()
			}
			current, mountErr := n.mountIfCurrent(id, func() error {
				return n.renderer.MountError(ctx, v.Path, err)
			})
			if !current {
				return nil, telemetry.OutcomeSuperseded, ErrSuperseded
			}
			if mountErr != nil {
				n.logger.Error("mount error state failed", "path", v.Path, "error", mountErr)
			}
			return nil, telemetry.OutcomeLoadError, err
		}
		v.Layers = layers
	}

	current, err := n.mountIfCurrent(id, func() error {
		return n.renderer.Mount(ctx, v)
	})
	if !current {
		n.logger.Debug("navigation superseded", "path", path)
		return nil, telemetry.OutcomeSuperseded, ErrSuperseded
	}
	if err != nil {
		return nil, telemetry.OutcomeMountError, fmt.Errorf("mount %s: %w", v.Path, err)
	}
	if v.NotFound {
		return v, telemetry.OutcomeNotFound, nil
	}
	return v, telemetry.OutcomeMounted, nil
}

// mountIfCurrent runs mount unless navigation id has been superseded. It
// reports whether id was still current.
func (n *Navigator) mountIfCurrent(id uint64, mount func() error) (bool, error) {
	n.mountMu.Lock()
	defer n.mountMu.Unlock()
	if n.seq.Load() != id {
		return false, nil
	}
	return true, mount()
}

// loadChain loads the views of m in parallel, keeping chain order.
func (n *Navigator) loadChain(ctx context.Context, m *Match) ([]Layer, error) {
	layers := make([]Layer, 0, len(m.Chain))
	for _, step := range m.Chain {
		if ref, ok := step.Node.View(); ok {
			layers = append(layers, Layer{ID: ref.ID, Pattern: step.Node.pattern, Remainder: step.Remainder})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, step := range m.Chain {
		ref, ok := step.Node.View()
		if !ok {
			continue
		}
		idx := layerIndex(m.Chain, i)
		g.Go(func() error {
			unit, err := n.cache.Load(gctx, ref)
			if err != nil {
				return err
			}
			layers[idx].Unit = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return layers, nil
}

// layerIndex maps a chain position to its position among the chain's views.
func layerIndex(chain []Step, pos int) int {
	idx := 0
	for _, step := range chain[:pos] {
		if _, ok := step.Node.View(); ok {
			idx++
		}
	}
	return idx
}
