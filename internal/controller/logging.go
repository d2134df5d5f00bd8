package controller

import (
	"context"
	"log/slog"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
)

// LoggingPrinter logs every hook through slog before delegating to the wrapped printer.
type LoggingPrinter struct {
	next   Printer
	logger *slog.Logger
}

// NewLoggingPrinter wraps next. A nil logger uses slog.Default().
func NewLoggingPrinter(next Printer, logger *slog.Logger) *LoggingPrinter {
	if next == nil {
		next = NoopPrinter{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingPrinter{next: next, logger: logger}
}

func (l *LoggingPrinter) BeforeRun(ctx context.Context, tree m.Test) {
	l.logger.InfoContext(ctx, "Run starting", "tests", m.CaseCount(tree))
	l.next.BeforeRun(ctx, tree)
}

func (l *LoggingPrinter) BeforeEach(ctx context.Context, name string) {
	l.logger.DebugContext(ctx, "Test starting", "name", name)
	l.next.BeforeEach(ctx, name)
}

func (l *LoggingPrinter) Info(ctx context.Context, text string) {
	l.logger.InfoContext(ctx, text)
	l.next.Info(ctx, text)
}

func (l *LoggingPrinter) Passed(ctx context.Context, name string, duration time.Duration) {
	l.logger.DebugContext(ctx, "Test passed", "name", name, "duration", duration)
	l.next.Passed(ctx, name, duration)
}

func (l *LoggingPrinter) Ignored(ctx context.Context, name string, reason string) {
	l.logger.DebugContext(ctx, "Test ignored", "name", name, "reason", reason)
	l.next.Ignored(ctx, name, reason)
}

func (l *LoggingPrinter) Failed(ctx context.Context, name string, message string, duration time.Duration) {
	l.logger.WarnContext(ctx, "Test failed", "name", name, "message", message, "duration", duration)
	l.next.Failed(ctx, name, message, duration)
}

func (l *LoggingPrinter) Exn(ctx context.Context, name string, cause error, duration time.Duration) {
	l.logger.ErrorContext(ctx, "Test errored", "name", name, "error", cause, "duration", duration)
	l.next.Exn(ctx, name, cause, duration)
}

func (l *LoggingPrinter) Summary(ctx context.Context, summary m.TestResultSummary) {
	l.logger.InfoContext(ctx, "Run finished",
		"passed", len(summary.Passed),
		"ignored", len(summary.Ignored),
		"failed", len(summary.Failed),
		"errored", len(summary.Errored),
		"duration", summary.Duration)
	l.next.Summary(ctx, summary)
}
