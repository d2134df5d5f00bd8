package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
)

// SimplePrinter writes one line per event to an io.Writer.
type SimplePrinter struct {
	mu      sync.Mutex
	out     io.Writer
	config  printerConfig
	palette palette
}

// NewSimplePrinter creates a SimplePrinter writing to out.
func NewSimplePrinter(out io.Writer, options ...PrinterOption) *SimplePrinter {
	return &SimplePrinter{
		out:     out,
		config:  applyOptions(options),
		palette: newPalette(out),
	}
}

// BeforeRun announces the run.
func (s *SimplePrinter) BeforeRun(ctx context.Context, tree m.Test) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s running %d test(s)\n", s.palette.title.Render("arbor:"), m.CaseCount(tree))
}

// BeforeEach reports a starting test in verbose mode.
func (s *SimplePrinter) BeforeEach(ctx context.Context, name string) {
	if err := ctx.Err(); err != nil || !s.config.verbose {
		return
	}

	s.printf("%s %s\n", s.palette.faint.Render("start"), name)
}

// Info prints an informational line.
func (s *SimplePrinter) Info(ctx context.Context, text string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", text)
}

// Passed reports a passed test in verbose mode.
func (s *SimplePrinter) Passed(ctx context.Context, name string, duration time.Duration) {
	if err := ctx.Err(); err != nil || !s.config.verbose {
		return
	}

	s.printf("%s %s (%s)\n", s.palette.label(m.Passed), name, duration.Round(time.Microsecond))
}

// Ignored reports an ignored test in verbose mode.
func (s *SimplePrinter) Ignored(ctx context.Context, name string, reason string) {
	if err := ctx.Err(); err != nil || !s.config.verbose {
		return
	}

	s.printf("%s %s: %s\n", s.palette.label(m.Ignored), name, reason)
}

// Failed reports a failed test with its message.
func (s *SimplePrinter) Failed(ctx context.Context, name string, message string, duration time.Duration) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s %s (%s)\n%s\n", s.palette.label(m.Failed), name, duration.Round(time.Microsecond), indent(message))
}

// Exn reports a test that raised an unclassified error.
func (s *SimplePrinter) Exn(ctx context.Context, name string, cause error, duration time.Duration) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s %s (%s)\n%s\n", s.palette.label(m.Errored), name, duration.Round(time.Microsecond), indent(fmt.Sprintf("%+v", cause)))
}

// Summary prints the result table.
func (s *SimplePrinter) Summary(ctx context.Context, summary m.TestResultSummary) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderSummary(summary, s.config.summaryLocation))
}

func (s *SimplePrinter) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.out, format, args...)
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}

	return strings.Join(lines, "\n")
}
