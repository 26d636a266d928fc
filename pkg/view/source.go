package view

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"strings"
	"sync"
)

// Source resolves configured view ids into refs.
type Source interface {
	Ref(id string) (Ref, error)
}

// Module is the unit produced by file and object-store sources: the raw bytes
// of a view module plus what the store knows about them.
type Module struct {
	ID          string
	Key         string
	Body        []byte
	ContentType string
	ETag        string
}

// ErrUnknownView is returned by sources that cannot produce a ref for an id.
var ErrUnknownView = errors.New("view: unknown view")

// checkID rejects ids that could step outside a source root.
func checkID(id string) error {
	if id == "" || strings.HasPrefix(id, "/") || strings.Contains(id, "\\") {
		return fmt.Errorf("view: invalid id %q", id)
	}
	for _, part := range strings.Split(id, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("view: invalid id %q", id)
		}
	}
	return nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DirSource loads views from a file system. The view "pages/login" with
// extension ".vue" is read from "pages/login.vue".
type DirSource struct {
	fsys fs.FS
	ext  string
}

// NewDirSource creates a DirSource over fsys.
func NewDirSource(fsys fs.FS, ext string) *DirSource {
	return &DirSource{fsys: fsys, ext: ext}
}

// Ref implements Source.
func (s *DirSource) Ref(id string) (Ref, error) {
	if err := checkID(id); err != nil {
		return Ref{}, err
	}
	key := id + s.ext
	return NewRef(id, func(ctx context.Context) (Unit, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(s.fsys, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		return &Module{
			ID:          id,
			Key:         key,
			Body:        body,
			ContentType: contentTypeFor(key),
		}, nil
	}), nil
}

// StaticSource serves refs from an in-memory table of load functions.
type StaticSource struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewStaticSource creates an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{loaders: make(map[string]Loader)}
}

// Register adds a loader for id, replacing any previous one.
func (s *StaticSource) Register(id string, l Loader) *StaticSource {
	s.mu.Lock()
	s.loaders[id] = l
	s.mu.Unlock()
	return s
}

// Ref implements Source.
func (s *StaticSource) Ref(id string) (Ref, error) {
	s.mu.RLock()
	l, ok := s.loaders[id]
	s.mu.RUnlock()
	if !ok {
		return Ref{}, fmt.Errorf("%w %q", ErrUnknownView, id)
	}
	return Ref{ID: id, Loader: l}, nil
}
