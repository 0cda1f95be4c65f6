package extensions

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	singleton "github.com/pumped-fn/singleton-go"
)

// TracingExtension wraps every construction in a span named singleton.<op>.
// The span is a child of whatever span ctx carries and is handed on to the
// rest of the chain.
type TracingExtension struct {
	singleton.BaseExtension
	tracer trace.Tracer
}

// NewTracingExtension creates a tracing extension using the global tracer provider
func NewTracingExtension() *TracingExtension {
	return &TracingExtension{
		BaseExtension: singleton.NewBaseExtension("tracing"),
		tracer:        otel.Tracer(instrumentationName),
	}
}

func (e *TracingExtension) Order() int {
	return 0
}

func (e *TracingExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *singleton.Operation) (any, error) {
	ctx, span := e.tracer.Start(ctx, "singleton."+string(op.Kind),
		trace.WithAttributes(
			attribute.String("singleton.name", op.Manager.Name()),
			attribute.Int("singleton.attempt", op.Attempt),
			attribute.String("singleton.op_id", op.ID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	result, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return result, err
}
