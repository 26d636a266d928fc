package router

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vroute/pkg/routepath"
)

// =============================================================================
// Table Validation
// =============================================================================

// ConfigError reports one malformed route.
type ConfigError struct {
	// Type is the error category
	Type ConfigErrorType

	// Path is the full display path of the offending node
	Path string

	// Message is the human-readable error message
	Message string
}

func (e ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Type, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// RoutePath returns the display path of the offending node.
func (e ConfigError) RoutePath() string {
	return e.Path
}

// Problem describes the error without its path.
func (e ConfigError) Problem() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorCode returns the registered error code.
func (e ConfigError) ErrorCode() string {
	return e.Type.code()
}

// ConfigErrorType categorizes configuration errors.
type ConfigErrorType string

const (
	// ErrorInvalidNode indicates a node that is neither a page, a redirect nor
	// a layout with children.
	ErrorInvalidNode ConfigErrorType = "INVALID_NODE"

	// ErrorInvalidSegment indicates a pattern that cannot be matched.
	// Example: "a b", "users/:id"
	ErrorInvalidSegment ConfigErrorType = "INVALID_SEGMENT"

	// ErrorAmbiguousWildcard indicates more than one wildcard among siblings.
	ErrorAmbiguousWildcard ConfigErrorType = "AMBIGUOUS_WILDCARD"

	// ErrorWildcardChildren indicates a wildcard node with children.
	ErrorWildcardChildren ConfigErrorType = "WILDCARD_CHILDREN"

	// ErrorInvalidRedirect indicates a redirect target that is not an
	// absolute in-app path.
	ErrorInvalidRedirect ConfigErrorType = "INVALID_REDIRECT"

	// ErrorUnknownView indicates a configured view id no source could resolve.
	ErrorUnknownView ConfigErrorType = "UNKNOWN_VIEW"
)

func (t ConfigErrorType) code() string {
	switch t {
	case ErrorInvalidNode:
		return "R001"
	case ErrorInvalidSegment:
		return "R002"
	case ErrorAmbiguousWildcard:
		return "R003"
	case ErrorWildcardChildren:
		return "R004"
	case ErrorInvalidRedirect:
		return "R005"
	case ErrorUnknownView:
		return "R006"
	default:
		return "R010"
	}
}

// TableError wraps every ConfigError found while building a table.
type TableError struct {
	Errors []ConfigError
}

func (e *TableError) Error() string {
	if len(e.Errors) == 0 {
		return "no route errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route table errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *TableError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// ErrorCode returns the registered error code.
func (e *TableError) ErrorCode() string {
	return "R010"
}

// validate checks the whole tree and returns a *TableError, or nil.
func validate(roots []*Node) error {
	var errs []ConfigError
	validateSiblings("/", roots, &errs)
	if len(errs) > 0 {
		return &TableError{Errors: errs}
	}
	return nil
}

func validateSiblings(parent string, nodes []*Node, errs *[]ConfigError) {
	wildcards := 0
	for i, n := range nodes {
		if n == nil {
			*errs = append(*errs, ConfigError{
				Type:    ErrorInvalidNode,
				Path:    parent,
				Message: fmt.Sprintf("child %d is nil", i),
			})
			continue
		}
		full := joinPattern(parent, n)

		if n.segKind == SegmentWildcard {
			wildcards++
			if wildcards == 2 {
				*errs = append(*errs, ConfigError{
					Type:    ErrorAmbiguousWildcard,
					Path:    full,
					Message: "more than one wildcard route among siblings",
				})
			}
		}
		validateNode(full, n, errs)
		validateSiblings(full, n.children, errs)
	}
}

func validateNode(full string, n *Node, errs *[]ConfigError) {
	add := func(t ConfigErrorType, format string, args ...any) {
		*errs = append(*errs, ConfigError{Type: t, Path: full, Message: fmt.Sprintf(format, args...)})
	}

	if n.patternErr != nil {
		add(ErrorInvalidSegment, "%v", n.patternErr)
	}

	switch n.kind {
	case KindPage:
		if n.view.IsZero() || n.view.Loader == nil {
			add(ErrorInvalidNode, "page %q has no view", n.pattern)
		}
	case KindLayout:
		if len(n.children) == 0 {
			add(ErrorInvalidNode, "layout %q has no children", n.pattern)
		}
		if !n.view.IsZero() && n.view.Loader == nil {
			add(ErrorInvalidNode, "layout view %q has no loader", n.view.ID)
		}
	case KindRedirect:
		if !routepath.IsAbsolute(n.redirect) {
			add(ErrorInvalidRedirect, "redirect target %q is not an absolute path", n.redirect)
		} else if _, err := routepath.Canonicalize(n.redirect); err != nil {
			add(ErrorInvalidRedirect, "redirect target %q: %v", n.redirect, err)
		}
	default:
		add(ErrorInvalidNode, "node %q is neither a page, a redirect nor a layout", n.pattern)
	}

	if n.segKind == SegmentWildcard && len(n.children) > 0 {
		add(ErrorWildcardChildren, "wildcard route %q cannot have children", n.pattern)
	}
}

// =============================================================================
// Lint
// =============================================================================

// Warning describes a route that is valid but can never match.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Message
}

// Lint reports siblings shadowed by an earlier sibling: anything declared
// after a wildcard, literal leaves repeating an earlier literal leaf, and
// mount leaves after an earlier mount leaf. A wildcard after a mount leaf is
// reported too, since it can no longer capture an empty remainder.
func (t *Table) Lint() []Warning {
	var out []Warning
	lintSiblings("/", t.roots, &out)
	return out
}

func lintSiblings(parent string, nodes []*Node, out *[]Warning) {
	var wildcard, index string
	leaves := make(map[string]string)
	warn := func(path, format string, args ...any) {
		*out = append(*out, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
	}
	for _, n := range nodes {
		full := joinPattern(parent, n)
		leaf := n.kind != KindLayout
		switch {
		case wildcard != "":
			warn(full, "unreachable: declared after wildcard %s", wildcard)
		case n.segKind == SegmentLiteral && leaf:
			if prev, ok := leaves[n.segment]; ok {
				warn(full, "unreachable: %s already matches %q", prev, n.segment)
			} else {
				leaves[n.segment] = full
			}
		case n.segKind == SegmentMount && leaf:
			if index != "" {
				warn(full, "unreachable: %s already matches the empty path", index)
			} else {
				index = full
			}
		case n.segKind == SegmentWildcard && index != "":
			warn(full, "empty remainder never captured: %s matches first", index)
		}
		if n.segKind == SegmentWildcard && wildcard == "" {
			wildcard = full
		}
		lintSiblings(full, n.children, out)
	}
}
