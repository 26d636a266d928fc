package router

import (
	"fmt"
	"iter"
	"strings"

	"github.com/vango-dev/vroute/pkg/routepath"
	"github.com/vango-dev/vroute/pkg/telemetry"
	"github.com/vango-dev/vroute/pkg/view"
)

// DefaultMaxRedirects is the number of redirect hops Follow allows.
const DefaultMaxRedirects = 10

// Table is an immutable, validated, ordered list of root routes. Several roots
// may share the mount pattern; the first whose subtree matches wins.
type Table struct {
	roots []*Node
}

// NewTable validates roots and returns a Table, or a *TableError listing every
// ConfigError found.
func NewTable(roots ...*Node) (*Table, error) {
	roots = append([]*Node(nil), roots...)
	if err := validate(roots); err != nil {
		return nil, err
	}
	return &Table{roots: roots}, nil
}

// MustTable is like NewTable but panics on an invalid table. It is meant for
// tables declared as Go literals.
func MustTable(roots ...*Node) *Table {
	t, err := NewTable(roots...)
	if err != nil {
		panic(err)
	}
	return t
}

// Roots returns a copy of the root nodes.
func (t *Table) Roots() []*Node {
	return append([]*Node(nil), t.roots...)
}

// All iterates over every node depth-first in declaration order, keyed by its
// full display path.
func (t *Table) All() iter.Seq2[string, *Node] {
	return all("/", t.roots)
}

// Views returns every distinct view ref in the table, in declaration order.
func (t *Table) Views() []view.Ref {
	seen := make(map[string]bool)
	var refs []view.Ref
	for _, n := range t.All() {
		if ref, ok := n.View(); ok && !seen[ref.ID] {
			seen[ref.ID] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// String renders the table as a tree.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString("routes\n")
	writeTree(&sb, t.roots, "")
	return sb.String()
}

// RedirectLoopError reports a redirect chain that revisits a path or exceeds
// the hop limit.
type RedirectLoopError struct {
	// Path is the path the navigation started from.
	Path string

	// Chain lists the paths visited, in order, ending with the repeated path
	// or the first path beyond the limit.
	Chain []string

	// Limit is the hop limit in effect.
	Limit int
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect loop resolving %q: %s", e.Path, strings.Join(e.Chain, " -> "))
}

// Hops returns the visited paths.
func (e *RedirectLoopError) Hops() []string { return e.Chain }

// HopLimit returns the hop limit in effect.
func (e *RedirectLoopError) HopLimit() int { return e.Limit }

// ErrorCode returns the registered error code.
func (e *RedirectLoopError) ErrorCode() string {
	return "R020"
}

// Resolver matches paths against a Table. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	table        *Table
	maxRedirects int
	metrics      *telemetry.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxRedirects sets the redirect hop limit used by Follow.
func WithMaxRedirects(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxRedirects = n
		}
	}
}

// WithResolverMetrics records resolution outcomes.
func WithResolverMetrics(m *telemetry.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a Resolver for table.
func NewResolver(table *Table, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		table:        table,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the resolver's table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve matches path against the table once. It never follows redirects
// and never loads views. A path that cannot be canonicalized is matched on
// its raw segments so a catch-all still applies; the canonicalization error
// is kept on the result.
func (r *Resolver) Resolve(path string) Result {
	res := r.resolve(path)
	r.metrics.RecordResolution(res.Outcome())
	return res
}

func (r *Resolver) resolve(path string) Result {
	p, err := routepath.Canonicalize(path)
	if err != nil {
		p = routepath.Raw(path)
	}
	segs := p.Segments()

	for _, root := range r.table.roots {
		chain, ok := root.match(segs)
		if !ok {
			continue
		}
		leaf := chain[len(chain)-1].Node
		if target, ok := leaf.RedirectTo(); ok {
			return &Redirect{From: p.Path, Target: target, To: carryOver(target, p)}
		}
		m := &Match{
			Path:     p.Path,
			Query:    p.Query,
			Fragment: p.Fragment,
			Chain:    chain,
			Params:   make(map[string]string),
			PathErr:  err,
		}
		for _, step := range chain {
			if step.Captured {
				m.Params[step.Node.segment] = step.Remainder
			}
		}
		return m
	}
	return &NotFound{Path: p.Path, Err: err}
}

// carryOver appends the query and fragment of from to target when target has
// none of its own.
func carryOver(target string, from routepath.Path) string {
	if from.Query != "" && !strings.ContainsAny(target, "?#") {
		target += "?" + from.Query
	}
	if from.Fragment != "" && !strings.Contains(target, "#") {
		target += "#" + from.Fragment
	}
	return target
}

// Follow resolves path, re-resolving redirect targets until it reaches a
// Match or NotFound. It fails with *RedirectLoopError when a path is visited
// twice or more than the hop limit of redirects is needed.
func (r *Resolver) Follow(path string) (Result, error) {
	var visited []string
	seen := make(map[string]bool)
	current := path

	for {
		res := r.Resolve(current)
		red, ok := res.(*Redirect)
		if !ok {
			if m, ok := res.(*Match); ok && len(visited) > 0 {
				m.Redirects = visited
			}
			return res, nil
		}

		visited = append(visited, red.From)
		if seen[red.From] || len(visited) > r.maxRedirects {
			r.metrics.RecordResolution(telemetry.OutcomeRedirectLoop)
			return nil, &RedirectLoopError{Path: path, Chain: visited, Limit: r.maxRedirects}
		}
		seen[red.From] = true
		r.metrics.RecordRedirect()
		current = red.To
	}
}
