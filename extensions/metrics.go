package extensions

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	singleton "github.com/pumped-fn/singleton-go"
)

const instrumentationName = "github.com/pumped-fn/singleton-go"

// MetricsExtension records constructions and destroys with OpenTelemetry.
// It uses the global meter provider at the time it is created.
type MetricsExtension struct {
	singleton.BaseExtension

	constructions metric.Int64Counter
	errors        metric.Int64Counter
	latency       metric.Float64Histogram
	destroys      metric.Int64Counter
	enabled       bool
	labels        []singleton.Tag[string]
}

// MetricsOption is a modifier for the metrics extension
type MetricsOption func(*MetricsExtension)

// WithLabelTags returns an option that copies the given string tags onto
// every measurement as attributes keyed by the tag key. Managers without a
// tag get no attribute for it.
func WithLabelTags(tags ...singleton.Tag[string]) MetricsOption {
	return func(e *MetricsExtension) {
		e.labels = append(e.labels, tags...)
	}
}

// NewMetricsExtension creates a metrics extension. If the instruments cannot
// be created it logs a warning and records nothing.
func NewMetricsExtension(opts ...MetricsOption) *MetricsExtension {
	e := &MetricsExtension{
		BaseExtension: singleton.NewBaseExtension("metrics"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.initInstruments(otel.Meter(instrumentationName)); err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return e
	}
	e.enabled = true
	return e
}

func (e *MetricsExtension) initInstruments(meter metric.Meter) error {
	var err error

	e.constructions, err = meter.Int64Counter("singleton.constructions",
		metric.WithDescription("Number of construction attempts"),
	)
	if err != nil {
		return err
	}

	e.errors, err = meter.Int64Counter("singleton.construction.errors",
		metric.WithDescription("Number of failed constructions"),
	)
	if err != nil {
		return err
	}

	e.latency, err = meter.Float64Histogram("singleton.construction.latency_ms",
		metric.WithDescription("Construction latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	e.destroys, err = meter.Int64Counter("singleton.destroys",
		metric.WithDescription("Number of destroyed instances"),
	)
	return err
}

// attributes returns the name attribute, the tag labels present on m and extra
func (e *MetricsExtension) attributes(m singleton.AnyManager, extra ...attribute.KeyValue) metric.MeasurementOption {
	kvs := make([]attribute.KeyValue, 0, 1+len(e.labels)+len(extra))
	kvs = append(kvs, attribute.String("singleton", m.Name()))
	for _, tag := range e.labels {
		if val, ok := tag.Get(m); ok {
			kvs = append(kvs, attribute.String(tag.Key(), val))
		}
	}
	return metric.WithAttributes(append(kvs, extra...)...)
}

func (e *MetricsExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *singleton.Operation) (any, error) {
	if !e.enabled {
		return next(ctx)
	}

	start := time.Now()
	result, err := next(ctx)
	duration := time.Since(start)

	attrs := e.attributes(op.Manager, attribute.String("op", string(op.Kind)))
	e.constructions.Add(ctx, 1, attrs)
	e.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		e.errors.Add(ctx, 1, attrs)
	}

	return result, err
}

func (e *MetricsExtension) OnDestroy(op *singleton.Operation) {
	if !e.enabled {
		return
	}
	e.destroys.Add(context.Background(), 1, e.attributes(op.Manager))
}
