package singleton

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
)

// Factory builds a new instance from the manager's configuration
type Factory[C any, T any] func(cfg C) (T, error)

// FromConstructor adapts a constructor that cannot fail into a Factory
func FromConstructor[C any, T any](ctor func(cfg C) T) Factory[C, T] {
	return func(cfg C) (T, error) {
		return ctor(cfg), nil
	}
}

// AnyManager is a type-erased view of a Manager used by registries and extensions
type AnyManager interface {
	Name() string
	InitCount() int
	Present() bool
	GetTag(tag any) (any, bool)

	destroy()
}

// Manager owns at most one current instance built by its factory.
//
// A Manager is not safe for concurrent use. Wrap it with Guard when several
// goroutines share it.
type Manager[C any, T any] struct {
	factory    Factory[C, T]
	config     C
	instance   T
	present    bool
	initCount  int
	tags       map[any]any
	extensions []Extension
}

// Option is a modifier for managers
type Option func(*settings)

type settings struct {
	tags       map[any]any
	extensions []Extension
}

// WithName returns an option that names a manager
func WithName(name string) Option {
	return WithTag(nameTag, name)
}

// WithTag returns an option that sets a tag on a manager
func WithTag[V any](tag Tag[V], val V) Option {
	return func(s *settings) {
		s.tags[tag] = val
	}
}

// WithExtension returns an option that registers an extension on a manager
func WithExtension(ext Extension) Option {
	return func(s *settings) {
		s.extensions = append(s.extensions, ext)
	}
}

// Create wraps factory as a singleton and constructs the first instance
// right away. The error returned by factory is passed back as is, and no
// manager is returned in that case.
func Create[C any, T any](factory Factory[C, T], cfg C, opts ...Option) (*Manager[C, T], error) {
	m := newManager(factory, cfg, opts...)
	if _, err := m.construct(context.Background(), OpCreate); err != nil {
		return nil, err
	}
	return m, nil
}

// CreateDefault is Create with the zero value of C as configuration
func CreateDefault[C any, T any](factory Factory[C, T], opts ...Option) (*Manager[C, T], error) {
	var cfg C
	return Create(factory, cfg, opts...)
}

func newManager[C any, T any](factory Factory[C, T], cfg C, opts ...Option) *Manager[C, T] {
	if factory == nil {
		panic("singleton: factory cannot be nil")
	}

	s := &settings{tags: make(map[any]any)}
	for _, opt := range opts {
		opt(s)
	}

	if _, ok := s.tags[nameTag]; !ok {
		s.tags[nameTag] = reflect.TypeFor[T]().String()
	}

	sort.SliceStable(s.extensions, func(i, j int) bool {
		return s.extensions[i].Order() < s.extensions[j].Order()
	})

	return &Manager[C, T]{
		factory:    factory,
		config:     cfg,
		tags:       s.tags,
		extensions: s.extensions,
	}
}

// GetInstance returns the current instance, constructing one if the
// previous instance was destroyed
func (m *Manager[C, T]) GetInstance() (T, error) {
	return m.GetInstanceContext(context.Background())
}

// GetInstanceContext is GetInstance with ctx handed to the extension chain,
// so a construction can join the caller's trace
func (m *Manager[C, T]) GetInstanceContext(ctx context.Context) (T, error) {
	if m.present {
		return m.instance, nil
	}
	return m.construct(ctx, OpGet)
}

// ResetInstance replaces the current instance with a freshly constructed one.
// The replaced instance is simply dropped.
func (m *Manager[C, T]) ResetInstance() (T, error) {
	return m.ResetInstanceContext(context.Background())
}

// ResetInstanceContext is ResetInstance with ctx handed to the extension chain
func (m *Manager[C, T]) ResetInstanceContext(ctx context.Context) (T, error) {
	return m.construct(ctx, OpReset)
}

// DestroyInstance drops the current instance and returns the zero value of T.
// The init count is left untouched.
func (m *Manager[C, T]) DestroyInstance() T {
	m.destroy()
	var zero T
	return zero
}

// InitCount reports how many times the factory has built an instance
func (m *Manager[C, T]) InitCount() int {
	return m.initCount
}

// Present reports whether an instance is currently held
func (m *Manager[C, T]) Present() bool {
	return m.present
}

// Peek returns the current instance without constructing
func (m *Manager[C, T]) Peek() (T, bool) {
	return m.instance, m.present
}

// Config returns the configuration passed to every construction
func (m *Manager[C, T]) Config() C {
	return m.config
}

// Name returns the manager name, defaulting to the instance type
func (m *Manager[C, T]) Name() string {
	name, _ := m.tags[nameTag].(string)
	return name
}

// GetTag returns the raw value stored under tag. Tag.Get is the typed form.
func (m *Manager[C, T]) GetTag(tag any) (any, bool) {
	val, ok := m.tags[tag]
	return val, ok
}

func (m *Manager[C, T]) destroy() {
	if !m.present {
		return
	}

	var zero T
	m.instance = zero
	m.present = false

	op := m.newOperation(OpDestroy, m.initCount)
	for _, ext := range m.extensions {
		ext.OnDestroy(op)
	}
}

func (m *Manager[C, T]) newOperation(kind OperationKind, attempt int) *Operation {
	return &Operation{
		ID:      uuid.NewString(),
		Kind:    kind,
		Manager: m,
		Attempt: attempt,
	}
}

// construct runs the factory through the extension chain. The stored value
// always comes from the factory itself, never from an extension. Every
// successful factory run is counted, even when an extension then fails the
// chain; in that case nothing is stored and the prior state is kept.
func (m *Manager[C, T]) construct(ctx context.Context, kind OperationKind) (T, error) {
	var zero T
	op := m.newOperation(kind, m.initCount+1)

	var (
		ran     bool
		built   T
		lastErr error
		runs    int
	)
	next := func(context.Context) (any, error) {
		val, err := m.factory(m.config)
		ran = true
		lastErr = err
		if err != nil {
			return nil, err
		}
		built = val
		runs++
		return val, nil
	}

	// Apply extensions in reverse order (lowest Order wraps outermost)
	exts := m.extensions
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		currentNext := next
		next = func(ctx context.Context) (any, error) {
			return ext.Wrap(ctx, currentNext, op)
		}
	}

	_, err := next(ctx)
	m.initCount += runs

	switch {
	case lastErr != nil:
		err = lastErr
	case err == nil && !ran:
		err = fmt.Errorf("%w: %s during %s", ErrNotConstructed, m.Name(), kind)
	}

	if err != nil {
		cerr := newConstructionError(op, err)
		for _, ext := range exts {
			ext.OnError(cerr)
		}
		return zero, err
	}

	m.instance = built
	m.present = true

	return built, nil
}
