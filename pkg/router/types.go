package router

import (
	"github.com/vango-dev/vroute/pkg/telemetry"
	"github.com/vango-dev/vroute/pkg/view"
)

// Kind is the variant of a route node.
type Kind int

const (
	// KindPage is a leaf that renders a view.
	KindPage Kind = iota + 1

	// KindLayout has children and optionally wraps them in its own view.
	KindLayout

	// KindRedirect sends the navigation to another path.
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindLayout:
		return "layout"
	case KindRedirect:
		return "redirect"
	default:
		return "invalid"
	}
}

// SegmentKind classifies a node's segment pattern.
type SegmentKind int

const (
	// SegmentLiteral consumes exactly one equal path segment.
	SegmentLiteral SegmentKind = iota

	// SegmentMount consumes no segments and always matches.
	SegmentMount

	// SegmentWildcard consumes every remaining segment, including none.
	SegmentWildcard
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentMount:
		return "mount"
	case SegmentWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Step is one entry of a match chain.
type Step struct {
	// Node is the matched route node.
	Node *Node

	// Remainder holds the segments captured by a wildcard node, joined by "/".
	Remainder string

	// Captured reports whether Node is a wildcard (Remainder may be empty).
	Captured bool
}

// Result is the outcome of resolving a path: *Match, *Redirect or *NotFound.
type Result interface {
	// Outcome returns a short label for logs and metrics.
	Outcome() string

	result()
}

// Match is a resolved chain of nodes from the outermost layout to the leaf.
type Match struct {
	// Path is the canonical path that matched.
	Path string

	// Query is the query string, without "?".
	Query string

	// Fragment is the fragment, without "#".
	Fragment string

	// Chain lists the matched nodes, outermost first.
	Chain []Step

	// Params maps wildcard names to their captured remainders.
	Params map[string]string

	// Redirects lists the paths redirected through before this match, when
	// produced by Resolver.Follow.
	Redirects []string

	// PathErr is set when the path could not be canonicalized and was
	// matched on its raw segments. Path is then the raw path.
	PathErr error
}

// Outcome implements Result.
func (*Match) Outcome() string { return telemetry.OutcomeMatch }
func (*Match) result()         {}

// Leaf returns the innermost matched node.
func (m *Match) Leaf() *Node {
	return m.Chain[len(m.Chain)-1].Node
}

// Views returns the view refs of the chain, outermost first. Nodes without a
// view are skipped.
func (m *Match) Views() []view.Ref {
	refs := make([]view.Ref, 0, len(m.Chain))
	for _, step := range m.Chain {
		if ref, ok := step.Node.View(); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Redirect instructs the caller to resolve another path.
type Redirect struct {
	// From is the canonical path that hit the redirect node.
	From string

	// Target is the redirect target as declared.
	Target string

	// To is the path to resolve next: Target, carrying over the original
	// query and fragment when Target has none.
	To string
}

// Outcome implements Result.
func (*Redirect) Outcome() string { return telemetry.OutcomeRedirect }
func (*Redirect) result()         {}

// NotFound reports that no route matched. It is a normal outcome, not an error.
type NotFound struct {
	// Path is the canonical path, or the raw path when it was rejected.
	Path string

	// Err is set when the path itself was invalid.
	Err error
}

// Outcome implements Result.
func (*NotFound) Outcome() string { return telemetry.OutcomeNotFound }
func (*NotFound) result()         {}
