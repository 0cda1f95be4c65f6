package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	singleton "github.com/pumped-fn/singleton-go"
)

// DebugExtension logs the state of every manager it has seen when a
// construction fails.
//
// It keeps its own snapshot of each manager, taken while that manager's
// operation runs, and never reads manager state afterwards. One extension can
// therefore be shared by guarded managers used from different goroutines.
//
// Usage:
//
//	// Human-readable formatted output
//	handler := extensions.NewHumanHandler(os.Stderr, slog.LevelError)
//	ext := extensions.NewDebugExtension(handler)
//
//	// Structured JSON logging
//	ext := extensions.NewDebugExtension(slog.NewJSONHandler(os.Stderr, nil))
//
//	// Silent (for testing)
//	ext := extensions.NewDebugExtension(extensions.NewSilentHandler())
type DebugExtension struct {
	singleton.BaseExtension

	mu       sync.Mutex
	statuses map[string]singleton.Status
	failures map[string]error
	logger   *slog.Logger
}

// NewDebugExtension creates a new debug extension logging through logHandler
func NewDebugExtension(logHandler slog.Handler) *DebugExtension {
	return &DebugExtension{
		BaseExtension: singleton.NewBaseExtension("debug"),
		statuses:      make(map[string]singleton.Status),
		failures:      make(map[string]error),
		logger:        slog.New(logHandler),
	}
}

func (e *DebugExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *singleton.Operation) (any, error) {
	result, err := next(ctx)

	name := op.Manager.Name()
	e.mu.Lock()
	if err != nil {
		// a failed construction leaves the manager as it was
		st, ok := e.statuses[name]
		if !ok {
			st = singleton.Status{Name: name}
		}
		e.statuses[name] = st
		e.failures[name] = err
	} else {
		e.statuses[name] = singleton.Status{Name: name, Present: true, InitCount: op.Attempt}
		delete(e.failures, name)
	}
	e.mu.Unlock()

	return result, err
}

func (e *DebugExtension) OnDestroy(op *singleton.Operation) {
	name := op.Manager.Name()
	e.mu.Lock()
	e.statuses[name] = singleton.Status{Name: name, InitCount: op.Attempt}
	e.mu.Unlock()
}

// OnError logs the known managers when a construction fails
func (e *DebugExtension) OnError(err *singleton.ConstructionError) {
	e.logger.Error("Construction Error",
		"singleton", err.Manager,
		"error", err.Cause.Error(),
		"operation", string(err.Kind),
		"attempt", err.Attempt,
		"managers", e.Render(),
	)
}

// Render draws every manager seen so far as a tree
func (e *DebugExtension) Render() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.statuses))
	for name := range e.statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, formatStatus(e.statuses[name], e.failures[name]))
	}
	return drawTree("managers", lines)
}

// NewSilentHandler returns a handler that discards all log output
func NewSilentHandler() slog.Handler {
	return slog.DiscardHandler
}

// HumanHandler is a slog.Handler that formats logs for human readability,
// with a dedicated layout for construction errors
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a new human-readable log handler
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{
		writer: writer,
		level:  level,
	}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Message == "Construction Error" {
		return h.handleConstructionError(record)
	}

	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleConstructionError(record slog.Record) error {
	fields := map[string]string{}
	record.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.String()
		return true
	})

	var sb strings.Builder
	rule := strings.Repeat("=", 70)
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("[Debug] Construction Error\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "\nSingleton: %s\n", fields["singleton"])
	fmt.Fprintf(&sb, "Error: %s\n", fields["error"])
	fmt.Fprintf(&sb, "Operation: %s (attempt %s)\n", fields["operation"], fields["attempt"])
	fmt.Fprintf(&sb, "\nManagers:\n%s\n", fields["managers"])
	sb.WriteString(rule + "\n\n")

	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *HumanHandler) WithGroup(name string) slog.Handler {
	return h
}
