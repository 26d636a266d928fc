package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/vango-dev/vroute/pkg/view"
)

// Spec declares a route in configuration files. Views are named by id and
// resolved through a view.Source when the table is built.
type Spec struct {
	Path     string `json:"path" toml:"path"`
	View     string `json:"view,omitempty" toml:"view,omitempty"`
	Redirect string `json:"redirect,omitempty" toml:"redirect,omitempty"`
	Children []Spec `json:"children,omitempty" toml:"children,omitempty"`
}

var errNoSource = errors.New("no view source configured")

// Build converts specs into a validated Table. Every problem found, in the
// specs themselves or in the resulting tree, is reported in one *TableError.
func Build(specs []Spec, src view.Source) (*Table, error) {
	var errs []ConfigError
	roots := buildNodes("/", specs, src, &errs)
	if err := validate(roots); err != nil {
		errs = append(errs, err.(*TableError).Errors...)
	}
	if len(errs) > 0 {
		return nil, &TableError{Errors: errs}
	}
	return &Table{roots: roots}, nil
}

func buildNodes(parent string, specs []Spec, src view.Source, errs *[]ConfigError) []*Node {
	nodes := make([]*Node, 0, len(specs))
	for _, s := range specs {
		nodes = append(nodes, buildNode(parent, s, src, errs))
	}
	return nodes
}

func buildNode(parent string, s Spec, src view.Source, errs *[]ConfigError) *Node {
	full := joinPattern(parent, newNode(s.Path, 0))

	if s.Redirect != "" {
		if s.View != "" || len(s.Children) > 0 {
			*errs = append(*errs, ConfigError{
				Type:    ErrorInvalidNode,
				Path:    full,
				Message: fmt.Sprintf("redirect %q cannot also have a view or children", s.Path),
			})
		}
		return NewRedirect(s.Path, s.Redirect)
	}

	var ref view.Ref
	if s.View != "" {
		var r view.Ref
		err := errNoSource
		if src != nil {
			r, err = src.Ref(s.View)
		}
		if err != nil {
			*errs = append(*errs, ConfigError{
				Type:    ErrorUnknownView,
				Path:    full,
				Message: err.Error(),
			})
			// Keep the node well formed so tree validation does not report
			// the same route twice.
			r = view.NewRef(s.View, func(context.Context) (view.Unit, error) { return nil, err })
		}
		ref = r
	}

	if len(s.Children) > 0 {
		children := buildNodes(full, s.Children, src, errs)
		return NewLayout(s.Path, ref, children...)
	}
	// A spec with neither view nor children becomes a page without a view,
	// which tree validation rejects.
	return NewPage(s.Path, ref)
}
