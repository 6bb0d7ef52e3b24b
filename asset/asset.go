// Package asset defines the asset-loading collaborator consumed by the
// encoders, plus a trivial in-memory store for tests and single-process
// prototypes. Production hosts implement Loader against their own asset
// subsystem (credential-aware fetch, caching, etc.).
package asset

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentwire/agentwire/core"
)

var (
	// ErrNotFound is returned when no asset exists at the given path.
	ErrNotFound = fmt.Errorf("asset not found")
)

// Loader resolves an asset path to its content items. Loading may be slow
// (network, disk) so it takes a context; callers await loads one at a time to
// keep substitution ordering deterministic.
type Loader interface {
	Load(ctx context.Context, path string) ([]core.Content, error)
}

// InMemoryStore is a minimal in-process Loader implementation keeping all
// assets in a map guarded by an RWMutex. Content slices are copied on save
// and load to avoid accidental external mutation.
//
// It does not enforce retention limits or eviction; for production prefer a
// loader backed by the host's asset subsystem.
type InMemoryStore struct {
	mu     sync.RWMutex
	assets map[string][]core.Content // path -> content items
}

// NewInMemoryStore returns an empty in-memory asset store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{assets: make(map[string][]core.Content)}
}

// Save stores (or overwrites) the content items for the given path. The input
// slice is copied before storage.
func (s *InMemoryStore) Save(path string, contents ...core.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]core.Content, len(contents))
	copy(cp, contents)
	s.assets[path] = cp
}

// Load returns a copy of the stored content items or ErrNotFound.
func (s *InMemoryStore) Load(ctx context.Context, path string) ([]core.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	contents, ok := s.assets[path]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]core.Content, len(contents))
	copy(cp, contents)
	return cp, nil
}

// List returns the asset paths currently stored. The slice is a snapshot and
// safe for caller mutation.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.assets))
	for p := range s.assets {
		paths = append(paths, p)
	}
	return paths
}

// Delete removes the asset if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[path]; !ok {
		return ErrNotFound
	}
	delete(s.assets, path)
	return nil
}
