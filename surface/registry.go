// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"slices"
	"sync"
)

// Factory creates a Surface for the given options.
type Factory func(opts Options) (Surface, error)

// RegistryEntry is a registered surface backend.
type RegistryEntry struct {
	// Name is the unique identifier of the backend.
	Name string

	// Priority orders automatic selection; higher is preferred.
	Priority int

	// Factory creates surfaces.
	Factory Factory

	// Available reports whether the backend can be used on this system.
	Available func() bool
}

// Registry manages surface backends.
//
//	func init() {
//	    surface.Register("window", 100, windowFactory, windowAvailable)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

var globalRegistry = &Registry{}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no backend can create a surface.
	ErrNoBackendAvailable = errors.New("surface: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}

// Register adds a backend to the global registry. A nil available means
// always available. Registering an existing name replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) { globalRegistry.Unregister(name) }

// Available returns the available backend names, highest priority first.
func Available() []string { return globalRegistry.Available() }

// New creates a surface with the best available backend.
func New(opts Options) (Surface, error) { return globalRegistry.New(opts) }

// NewByName creates a surface with the named backend.
func NewByName(name string, opts Options) (Surface, error) {
	return globalRegistry.NewByName(name, opts)
}

// Register adds a backend to r.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{Name: name, Priority: priority, Factory: factory, Available: available}
}

// Unregister removes a backend from r.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Available returns the available backend names, highest priority first.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []*RegistryEntry
	for _, e := range r.entries {
		if e.Available() {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b *RegistryEntry) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// New tries each available backend in priority order.
func (r *Registry) New(opts Options) (Surface, error) {
	var lastErr error = ErrNoBackendAvailable
	for _, name := range r.Available() {
		s, err := r.NewByName(name, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewByName creates a surface with the named backend.
func (r *Registry) NewByName(name string, opts Options) (Surface, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return entry.Factory(opts)
}

func init() {
	Register("headless", 10, func(opts Options) (Surface, error) {
		return NewHeadless(opts.Width, opts.Height), nil
	}, nil)
}
