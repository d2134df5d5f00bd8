// Package controller provides printers that report test evaluation progress.
package controller

import (
	"context"
	"io"
	"os"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/mattn/go-isatty"
)

// Printer receives the evaluation hooks.
// Implementations must be safe for concurrent use: hooks of parallel tests are
// delivered asynchronously.
type Printer interface {
	BeforeRun(ctx context.Context, tree m.Test)
	BeforeEach(ctx context.Context, name string)
	Info(ctx context.Context, text string)
	Passed(ctx context.Context, name string, duration time.Duration)
	Ignored(ctx context.Context, name string, reason string)
	Failed(ctx context.Context, name string, message string, duration time.Duration)
	Exn(ctx context.Context, name string, cause error, duration time.Duration)
	Summary(ctx context.Context, summary m.TestResultSummary)
}

// PrinterOption configures printers built by NewPrinter.
type PrinterOption func(*printerConfig)

type printerConfig struct {
	verbose         bool
	summaryLocation bool
}

// WithVerbose also reports passed and ignored tests and test starts.
func WithVerbose(verbose bool) PrinterOption {
	return func(c *printerConfig) {
		c.verbose = verbose
	}
}

// WithSummaryLocation adds a per-test table with source locations to the summary.
func WithSummaryLocation(enabled bool) PrinterOption {
	return func(c *printerConfig) {
		c.summaryLocation = enabled
	}
}

// NewPrinter returns a TUIPrinter when tty is set and a SimplePrinter otherwise.
func NewPrinter(out io.Writer, tty bool, options ...PrinterOption) Printer {
	if tty {
		return NewTUIPrinter(out, options...)
	}

	return NewSimplePrinter(out, options...)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func applyOptions(options []PrinterOption) printerConfig {
	var config printerConfig
	for _, option := range options {
		option(&config)
	}

	return config
}
