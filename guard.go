package singleton

import (
	"context"
	"sync"
)

// Guarded serializes access to a Manager so it can be shared between goroutines
type Guarded[C any, T any] struct {
	mu sync.Mutex
	m  *Manager[C, T]
}

// Guard wraps m. Callers must stop using m directly afterwards.
func Guard[C any, T any](m *Manager[C, T]) *Guarded[C, T] {
	return &Guarded[C, T]{m: m}
}

func (g *Guarded[C, T]) GetInstance() (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.GetInstance()
}

func (g *Guarded[C, T]) ResetInstance() (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.ResetInstance()
}

func (g *Guarded[C, T]) GetInstanceContext(ctx context.Context) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.GetInstanceContext(ctx)
}

func (g *Guarded[C, T]) ResetInstanceContext(ctx context.Context) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.ResetInstanceContext(ctx)
}

func (g *Guarded[C, T]) DestroyInstance() T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.DestroyInstance()
}

func (g *Guarded[C, T]) InitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.InitCount()
}

func (g *Guarded[C, T]) Present() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Present()
}

func (g *Guarded[C, T]) Peek() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Peek()
}

func (g *Guarded[C, T]) Name() string {
	return g.m.Name()
}

func (g *Guarded[C, T]) GetTag(tag any) (any, bool) {
	return g.m.GetTag(tag)
}

func (g *Guarded[C, T]) destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m.destroy()
}

// Do runs fn with the lock held, for sequences that must not interleave
func (g *Guarded[C, T]) Do(fn func(m *Manager[C, T]) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.m)
}
