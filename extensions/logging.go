package extensions

import (
	"context"
	"log/slog"
	"time"

	singleton "github.com/pumped-fn/singleton-go"
)

// LoggingExtension logs constructions and destroys
type LoggingExtension struct {
	singleton.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension. A nil handler logs
// through slog.Default.
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	logger := slog.Default()
	if handler != nil {
		logger = slog.New(handler)
	}
	return &LoggingExtension{
		BaseExtension: singleton.NewBaseExtension("logging"),
		logger:        logger,
	}
}

func (e *LoggingExtension) Order() int {
	return 10
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *singleton.Operation) (any, error) {
	logger := e.logger.With(
		slog.String("singleton", op.Manager.Name()),
		slog.String("op", string(op.Kind)),
		slog.String("op_id", op.ID),
		slog.Int("attempt", op.Attempt),
	)

	start := time.Now()
	logger.DebugContext(ctx, "construction starting")
	result, err := next(ctx)

	durationMs := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		logger.ErrorContext(ctx, "construction failed",
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
	} else {
		logger.DebugContext(ctx, "construction completed",
			slog.Float64("duration_ms", durationMs),
		)
	}

	return result, err
}

func (e *LoggingExtension) OnDestroy(op *singleton.Operation) {
	e.logger.Info("instance destroyed",
		slog.String("singleton", op.Manager.Name()),
		slog.String("op_id", op.ID),
		slog.Int("init_count", op.Attempt),
	)
}
