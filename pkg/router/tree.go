package router

import (
	"fmt"
	"iter"
	"path"
	"regexp"
	"strings"

	"github.com/vango-dev/vroute/pkg/routepath"
	"github.com/vango-dev/vroute/pkg/view"
)

// Node is one entry in the route tree. Nodes are built with NewPage,
// NewLayout, NewGroup and NewRedirect, validated by NewTable and never
// modified afterwards.
type Node struct {
	// pattern is the segment pattern as declared
	pattern string

	// segKind and segment are the parsed pattern; segment is the literal value
	// or the wildcard name
	segKind SegmentKind
	segment string

	// patternErr is reported by NewTable
	patternErr error

	kind     Kind
	view     view.Ref
	redirect string
	children []*Node
}

// NewPage creates a leaf node rendering ref.
func NewPage(pattern string, ref view.Ref) *Node {
	n := newNode(pattern, KindPage)
	n.view = ref
	return n
}

// NewLayout creates a node whose view wraps the output of its children.
func NewLayout(pattern string, ref view.Ref, children ...*Node) *Node {
	n := newNode(pattern, KindLayout)
	n.view = ref
	n.children = append([]*Node(nil), children...)
	return n
}

// NewGroup creates a layout node without a view of its own.
func NewGroup(pattern string, children ...*Node) *Node {
	return NewLayout(pattern, view.Ref{}, children...)
}

// NewRedirect creates a node that redirects to target, an absolute path.
func NewRedirect(pattern, target string) *Node {
	n := newNode(pattern, KindRedirect)
	n.redirect = target
	return n
}

func newNode(pattern string, kind Kind) *Node {
	n := &Node{pattern: pattern, kind: kind}
	n.segKind, n.segment, n.patternErr = parsePattern(pattern)
	return n
}

// Pattern returns the segment pattern as declared.
func (n *Node) Pattern() string { return n.pattern }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// SegmentKind returns how the node's pattern consumes path segments.
func (n *Node) SegmentKind() SegmentKind { return n.segKind }

// Name returns the literal segment or the wildcard name. It is empty for
// mount nodes.
func (n *Node) Name() string { return n.segment }

// View returns the node's view ref, if it has one.
func (n *Node) View() (view.Ref, bool) {
	if n.kind == KindRedirect || n.view.IsZero() {
		return view.Ref{}, false
	}
	return n.view, true
}

// RedirectTo returns the redirect target of a redirect node.
func (n *Node) RedirectTo() (string, bool) {
	if n.kind != KindRedirect {
		return "", false
	}
	return n.redirect, true
}

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// catchAllPattern is the ":name(.*)*" form used by route files.
var catchAllPattern = regexp.MustCompile(`^:([A-Za-z_][A-Za-z0-9_]*)\(\.\*\)\*?$`)

// parsePattern classifies a declared segment pattern. One leading and one
// trailing slash are ignored, so "/" is the mount pattern and "/login" is the
// literal "login".
func parsePattern(pattern string) (SegmentKind, string, error) {
	p := strings.TrimPrefix(pattern, "/")
	p = strings.TrimSuffix(p, "/")

	switch {
	case p == "":
		return SegmentMount, "", nil
	case strings.HasPrefix(p, "*"):
		name := p[1:]
		if name == "" {
			name = "rest"
		}
		if !isIdent(name) {
			return SegmentWildcard, name, fmt.Errorf("invalid wildcard name %q", name)
		}
		return SegmentWildcard, name, nil
	case strings.HasPrefix(p, ":"):
		if m := catchAllPattern.FindStringSubmatch(p); m != nil {
			return SegmentWildcard, m[1], nil
		}
		return SegmentLiteral, p, fmt.Errorf("unsupported parameter pattern %q", pattern)
	case !routepath.ValidLiteral(p):
		return SegmentLiteral, p, fmt.Errorf("invalid literal segment %q", pattern)
	}
	return SegmentLiteral, p, nil
}

func isIdent(s string) bool {
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// match tries to match segs against n and, below it, n's children. On success
// it returns the chain of steps starting at n.
func (n *Node) match(segs []string) ([]Step, bool) {
	step := Step{Node: n}
	var rest []string

	switch n.segKind {
	case SegmentLiteral:
		if len(segs) == 0 || segs[0] != n.segment {
			return nil, false
		}
		rest = segs[1:]
	case SegmentMount:
		rest = segs
	case SegmentWildcard:
		step.Remainder = strings.Join(segs, "/")
		step.Captured = true
	}

	// Segments left over can only be consumed by children.
	if len(rest) > 0 {
		for _, child := range n.children {
			if chain, ok := child.match(rest); ok {
				return append([]Step{step}, chain...), true
			}
		}
		return nil, false
	}

	switch n.kind {
	case KindPage, KindRedirect:
		return []Step{step}, true
	case KindLayout:
		// An index (mount) or wildcard child takes precedence over the
		// layout's own view.
		for _, child := range n.children {
			if chain, ok := child.match(nil); ok {
				return append([]Step{step}, chain...), true
			}
		}
		if !n.view.IsZero() {
			return []Step{step}, true
		}
	}
	return nil, false
}

// joinPattern returns the full display path of a child of parent.
func joinPattern(parent string, n *Node) string {
	var seg string
	switch n.segKind {
	case SegmentMount:
		seg = ""
	case SegmentWildcard:
		seg = "*" + n.segment
	default:
		seg = n.segment
	}
	return path.Join("/", parent, seg)
}

// all yields every node below nodes depth-first in declaration order, keyed
// by full display path.
func all(parent string, nodes []*Node) iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		var walk func(parent string, nodes []*Node) bool
		walk = func(parent string, nodes []*Node) bool {
			for _, n := range nodes {
				full := joinPattern(parent, n)
				if !yield(full, n) {
					return false
				}
				if !walk(full, n.children) {
					return false
				}
			}
			return true
		}
		walk(parent, nodes)
	}
}

func (n *Node) String() string {
	var sb strings.Builder
	sb.WriteString(n.kind.String())
	sb.WriteString(" ")
	if n.pattern == "" {
		sb.WriteString(`""`)
	} else {
		sb.WriteString(n.pattern)
	}
	if ref, ok := n.View(); ok {
		sb.WriteString(" view=" + ref.ID)
	}
	if n.kind == KindRedirect {
		sb.WriteString(" -> " + n.redirect)
	}
	return sb.String()
}

// writeTree writes n and its children as an indented tree.
func writeTree(sb *strings.Builder, nodes []*Node, indent string) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		sb.WriteString(indent + branch + n.String() + "\n")
		writeTree(sb, n.children, indent+next)
	}
}
