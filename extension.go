package singleton

import "context"

// Extension provides hooks into a manager's lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = outer)
	Order() int

	// Wrap intercepts every construction. The value returned by next is
	// informational; the manager stores what the factory built. Pass a
	// derived ctx to next to parent inner extensions.
	Wrap(ctx context.Context, next func(context.Context) (any, error), op *Operation) (any, error)

	// OnError is called after a construction failed
	OnError(err *ConstructionError)

	// OnDestroy is called after a present instance was dropped
	OnDestroy(op *Operation)

	// Dispose is called when the owning registry is disposed
	Dispose() error
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *Operation) (any, error) {
	return next(ctx)
}

func (e *BaseExtension) OnError(err *ConstructionError) {
}

func (e *BaseExtension) OnDestroy(op *Operation) {
}

func (e *BaseExtension) Dispose() error {
	return nil
}

// Operation describes what is happening to a manager
type Operation struct {
	// ID is unique per operation, for correlating logs and spans
	ID      string
	Kind    OperationKind
	Manager AnyManager
	// Attempt is the init count the construction would produce, or the
	// current init count for OpDestroy
	Attempt int
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpCreate is the eager construction performed by Create
	OpCreate OperationKind = "create"
	// OpGet is a lazy construction after the instance was destroyed
	OpGet OperationKind = "get"
	// OpReset is an explicit replacement
	OpReset OperationKind = "reset"
	// OpDestroy drops the current instance
	OpDestroy OperationKind = "destroy"
)
