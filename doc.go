// Package singleton wraps a factory so that a single current instance is
// shared through a handle, with operations to reset and destroy it.
//
// # Overview
//
// A Manager holds a factory, the configuration passed to every construction,
// at most one current instance and a count of constructions:
//
//	type Counter struct{ Start int }
//
//	counter, err := singleton.Create(
//	    singleton.FromConstructor(func(cfg CounterConfig) *Counter {
//	        return &Counter{Start: cfg.Start}
//	    }),
//	    CounterConfig{Start: 5},
//	)
//
// Create constructs eagerly, so counter.InitCount() is 1 right away.
//
// # Lifecycle
//
//	// GetInstance returns the current instance, or builds one if it was destroyed
//	c, err := counter.GetInstance()
//
//	// ResetInstance always builds a replacement
//	c, err = counter.ResetInstance()
//
//	// DestroyInstance drops the instance; the next GetInstance rebuilds it
//	counter.DestroyInstance()
//
//	// InitCount never decreases
//	n := counter.InitCount()
//
//	// Peek reads without building
//	c, ok := counter.Peek()
//
// A failing factory leaves the manager as it was and its error is returned
// to the caller unchanged. Nothing is retried.
//
// # Concurrency
//
// A Manager is not safe for concurrent use. Guard wraps it with a mutex:
//
//	shared := singleton.Guard(counter)
//	c, err := shared.GetInstance()
//
//	// Do holds the lock across several calls
//	err = shared.Do(func(m *singleton.Manager[CounterConfig, *Counter]) error {
//	    m.DestroyInstance()
//	    _, err := m.GetInstance()
//	    return err
//	})
//
// # Extensions
//
// Extensions wrap every construction and observe failures and destroys:
//
//	type AuditExtension struct {
//	    singleton.BaseExtension
//	}
//
//	func (e *AuditExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *singleton.Operation) (any, error) {
//	    log.Printf("%s %s attempt %d", op.Manager.Name(), op.Kind, op.Attempt)
//	    return next(ctx)
//	}
//
//	counter, err := singleton.Create(factory, cfg,
//	    singleton.WithName("counter"),
//	    singleton.WithExtension(&AuditExtension{
//	        BaseExtension: singleton.NewBaseExtension("audit"),
//	    }),
//	)
//
// The value an extension returns is discarded: the manager stores what the
// factory built. An extension that returns without calling next fails the
// operation with ErrNotConstructed.
//
// GetInstanceContext and ResetInstanceContext hand their ctx to the chain, so
// the tracing extension parents its span on the caller's. Create and any
// construction started from inside a factory use context.Background() and
// start root spans.
//
// Ready-made logging, metrics, tracing and debug extensions live in the
// extensions package.
//
// # Tags
//
// Tags attach typed metadata to a manager:
//
//	ownerTag := singleton.NewTag[string]("owner")
//	m, _ := singleton.Create(factory, cfg, singleton.WithTag(ownerTag, "billing"))
//	owner, ok := ownerTag.Get(m)
//
// # Registry
//
// A Registry keeps named managers together instead of package-level globals.
// Pass it to the code that needs it:
//
//	reg := singleton.NewRegistry(
//	    singleton.WithRegistryExtension(extensions.NewLoggingExtension(handler)),
//	)
//	defer reg.Dispose()
//
//	_, err := singleton.Register(reg, dbFactory, dbConfig, singleton.WithName("db"))
//
//	db, err := singleton.Lookup[DBConfig, *DB](reg, "db")
//	for _, st := range reg.Snapshot() {
//	    fmt.Println(st.Name, st.Present, st.InitCount)
//	}
package singleton
