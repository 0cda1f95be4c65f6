package singleton

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry groups named managers so they can be looked up, inspected and
// torn down together. It is safe for concurrent use; the managers it holds
// keep their own concurrency rules.
type Registry struct {
	mu         sync.RWMutex
	managers   map[string]AnyManager
	pending    map[string]struct{}
	extensions []Extension
	logger     *slog.Logger
	disposed   bool
}

// RegistryOption is a modifier for registries
type RegistryOption func(*Registry)

// WithRegistryExtension returns an option that installs ext on every manager
// registered afterwards
func WithRegistryExtension(ext Extension) RegistryOption {
	return func(r *Registry) {
		r.extensions = append(r.extensions, ext)
	}
}

// WithRegistryLogger returns an option that sets the registry logger
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Status is a point-in-time view of one registered manager
type Status struct {
	Name      string
	Present   bool
	InitCount int
}

// NewRegistry creates a new registry with optional configuration
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		managers: make(map[string]AnyManager),
		pending:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register creates a manager named by the WithName option (or by its type)
// and stores it. The name is checked before anything is constructed.
func Register[C any, T any](r *Registry, factory Factory[C, T], cfg C, opts ...Option) (*Manager[C, T], error) {
	m := newManager(factory, cfg, r.managerOptions(opts)...)
	if err := r.add(m, func() error {
		_, err := m.construct(context.Background(), OpCreate)
		return err
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterGuarded is Register for managers shared between goroutines
func RegisterGuarded[C any, T any](r *Registry, factory Factory[C, T], cfg C, opts ...Option) (*Guarded[C, T], error) {
	m := newManager(factory, cfg, r.managerOptions(opts)...)
	g := Guard(m)
	if err := r.add(g, func() error {
		_, err := m.construct(context.Background(), OpCreate)
		return err
	}); err != nil {
		return nil, err
	}
	return g, nil
}

// Lookup returns the manager registered under name
func Lookup[C any, T any](r *Registry, name string) (*Manager[C, T], error) {
	am, err := r.get(name)
	if err != nil {
		return nil, err
	}
	m, ok := am.(*Manager[C, T])
	if !ok {
		return nil, fmt.Errorf("manager %q is %T, not %T", name, am, m)
	}
	return m, nil
}

// LookupGuarded returns the guarded manager registered under name
func LookupGuarded[C any, T any](r *Registry, name string) (*Guarded[C, T], error) {
	am, err := r.get(name)
	if err != nil {
		return nil, err
	}
	g, ok := am.(*Guarded[C, T])
	if !ok {
		return nil, fmt.Errorf("manager %q is %T, not %T", name, am, g)
	}
	return g, nil
}

func (r *Registry) get(name string) (AnyManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	am, ok := r.managers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return am, nil
}

func (r *Registry) managerOptions(opts []Option) []Option {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Option, 0, len(r.extensions)+len(opts))
	for _, ext := range r.extensions {
		all = append(all, WithExtension(ext))
	}
	return append(all, opts...)
}

// add reserves the name, runs build without holding the lock so factories
// may use the registry, then publishes m
func (r *Registry) add(m AnyManager, build func() error) error {
	name := m.Name()

	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return ErrDisposed
	}
	_, registered := r.managers[name]
	_, reserved := r.pending[name]
	if registered || reserved {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.pending[name] = struct{}{}
	r.mu.Unlock()

	err := build()

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, name)
	if err != nil {
		return err
	}
	if r.disposed {
		m.destroy()
		return ErrDisposed
	}
	r.managers[name] = m
	return nil
}

// sorted copies the registered managers in name order so callers can use
// them without holding the lock
func (r *Registry) sorted() ([]string, []AnyManager) {
	r.mu.RLock()
	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	managers := make([]AnyManager, len(names))
	for i, name := range names {
		managers[i] = r.managers[name]
	}
	r.mu.RUnlock()

	return names, managers
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	names, _ := r.sorted()
	return names
}

// Snapshot reports the state of every registered manager, sorted by name
func (r *Registry) Snapshot() []Status {
	names, managers := r.sorted()
	statuses := make([]Status, len(names))
	for i, m := range managers {
		statuses[i] = Status{
			Name:      names[i],
			Present:   m.Present(),
			InitCount: m.InitCount(),
		}
	}
	return statuses
}

// DestroyAll drops every held instance. Init counts are unchanged.
func (r *Registry) DestroyAll() {
	_, managers := r.sorted()
	for _, m := range managers {
		m.destroy()
	}
}

// Dispose destroys every instance and then disposes the registry extensions.
// Later calls are no-ops.
func (r *Registry) Dispose() error {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return nil
	}
	r.disposed = true
	exts := make([]Extension, len(r.extensions))
	copy(exts, r.extensions)
	r.mu.Unlock()

	r.DestroyAll()

	for _, ext := range exts {
		if err := ext.Dispose(); err != nil {
			return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
		}
	}

	if r.logger != nil {
		r.mu.RLock()
		count := len(r.managers)
		r.mu.RUnlock()
		r.logger.Info("registry disposed", slog.Int("managers", count))
	}

	return nil
}
