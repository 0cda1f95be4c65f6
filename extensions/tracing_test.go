package extensions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	singleton "github.com/pumped-fn/singleton-go"
)

// setupTracingTest installs a tracer provider with an in-memory exporter
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})

	return exporter
}

func spanAttr(s tracetest.SpanStub, key string) attribute.Value {
	for _, kv := range s.Attributes {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestTracingExtension_Spans(t *testing.T) {
	exporter := setupTracingTest(t)

	m, err := singleton.Create(serviceFactory(), 1,
		singleton.WithName("svc"),
		singleton.WithExtension(NewTracingExtension()),
	)
	require.NoError(t, err)
	_, err = m.ResetInstance()
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "singleton.create", spans[0].Name)
	assert.Equal(t, "singleton.reset", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
	assert.Equal(t, "svc", spanAttr(spans[1], "singleton.name").AsString())
	assert.Equal(t, int64(2), spanAttr(spans[1], "singleton.attempt").AsInt64())
	assert.NotEmpty(t, spanAttr(spans[1], "singleton.op_id").AsString())
}

func TestTracingExtension_RecordsError(t *testing.T) {
	exporter := setupTracingTest(t)

	_, err := singleton.Create(func(int) (*service, error) {
		return nil, errors.New("refused")
	}, 1, singleton.WithExtension(NewTracingExtension()))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "refused", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestTracingExtension_ParentsOnCallerSpan(t *testing.T) {
	exporter := setupTracingTest(t)

	m, err := singleton.Create(serviceFactory(), 1,
		singleton.WithName("svc"),
		singleton.WithExtension(NewTracingExtension()),
	)
	require.NoError(t, err)
	m.DestroyInstance()

	ctx, parent := otel.Tracer("test").Start(context.Background(), "request")
	_, err = m.GetInstanceContext(ctx)
	require.NoError(t, err)
	_, err = m.ResetInstanceContext(ctx)
	require.NoError(t, err)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}
	request := byName["request"]

	// Create takes no context, so its span is a root
	assert.False(t, byName["singleton.create"].Parent.IsValid())

	for _, name := range []string{"singleton.get", "singleton.reset"} {
		s := byName[name]
		assert.Equal(t, request.SpanContext.SpanID(), s.Parent.SpanID(), name)
		assert.Equal(t, request.SpanContext.TraceID(), s.SpanContext.TraceID(), name)
	}
}

func TestTracingExtension_HandsSpanToInnerExtensions(t *testing.T) {
	exporter := setupTracingTest(t)

	inner := &spanCapturingExtension{BaseExtension: singleton.NewBaseExtension("capture")}
	_, err := singleton.Create(serviceFactory(), 1,
		singleton.WithExtension(inner),
		singleton.WithExtension(NewTracingExtension()),
	)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, spans[0].SpanContext.SpanID(), inner.seen.SpanID())
}

type spanCapturingExtension struct {
	singleton.BaseExtension
	seen trace.SpanContext
}

func (e *spanCapturingExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *singleton.Operation) (any, error) {
	e.seen = trace.SpanContextFromContext(ctx)
	return next(ctx)
}
