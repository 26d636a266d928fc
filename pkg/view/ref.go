package view

import (
	"context"
	"errors"
)

// Unit is a loaded view implementation. The engine never inspects it.
type Unit = any

// Loader produces a view unit on demand.
type Loader interface {
	Load(ctx context.Context) (Unit, error)
}

// LoaderFunc is a function adapter for Loader.
type LoaderFunc func(ctx context.Context) (Unit, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) (Unit, error) {
	return f(ctx)
}

// ErrNoLoader is returned when loading a Ref without a loader.
var ErrNoLoader = errors.New("view: ref has no loader")

// Ref is a reference to a loadable view. ID is stable and used as the cache key.
type Ref struct {
	ID     string
	Loader Loader
}

// NewRef creates a Ref from a load function.
func NewRef(id string, load func(ctx context.Context) (Unit, error)) Ref {
	return Ref{ID: id, Loader: LoaderFunc(load)}
}

// IsZero reports whether the ref names no view.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Loader == nil
}

// Load invokes the deferred loader directly, bypassing any cache.
func (r Ref) Load(ctx context.Context) (Unit, error) {
	if r.Loader == nil {
		return nil, ErrNoLoader
	}
	return r.Loader.Load(ctx)
}

// String returns the ref id.
func (r Ref) String() string {
	return r.ID
}
