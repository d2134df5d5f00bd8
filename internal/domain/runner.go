package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"arbor.dev/pkg/arbor/internal/controller"
	m "arbor.dev/pkg/arbor/internal/model"
)

var (
	// ErrFocusedTests is returned when focused tests exist and the run forbids them.
	ErrFocusedTests = errors.New("focused tests found")
	// ErrDuplicateNames is returned when two leaves resolve to the same name.
	ErrDuplicateNames = errors.New("duplicate test names")
)

// Config holds the settings of one evaluation run. It is not modified while a run is in progress.
type Config struct {
	Parallel            bool
	Workers             int
	Locator             Locator
	FailOnFocusedTests  bool
	AllowDuplicateNames bool
	Filter              []string
	Timeout             time.Duration
}

// Option customizes a Config.
type Option func(*Config)

// WithParallel enables or disables the parallel group. When disabled every
// test runs sequentially.
func WithParallel(parallel bool) Option {
	return func(c *Config) {
		c.Parallel = parallel
	}
}

// WithWorkers bounds the number of concurrently running tests.
func WithWorkers(workers int) Option {
	return func(c *Config) {
		c.Workers = workers
	}
}

// WithLocator sets the source locator used for results.
func WithLocator(locator Locator) Option {
	return func(c *Config) {
		c.Locator = locator
	}
}

// WithFailOnFocusedTests fails the run before execution if any test is focused.
func WithFailOnFocusedTests(fail bool) Option {
	return func(c *Config) {
		c.FailOnFocusedTests = fail
	}
}

// WithAllowDuplicateNames disables the duplicate-name check.
func WithAllowDuplicateNames(allow bool) Option {
	return func(c *Config) {
		c.AllowDuplicateNames = allow
	}
}

// WithFilter restricts the run to tests matching any of the glob patterns.
func WithFilter(patterns []string) Option {
	return func(c *Config) {
		c.Filter = append([]string(nil), patterns...)
	}
}

// WithTestTimeout applies a per-test time limit. Zero disables it.
func WithTestTimeout(limit time.Duration) Option {
	return func(c *Config) {
		c.Timeout = limit
	}
}

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return Config{
		Parallel: true,
		Workers:  runtime.NumCPU(),
		Locator:  EmptyLocator,
	}
}

// Runner evaluates test trees.
type Runner interface {
	// Evaluate runs tree and returns the summary and its exit status.
	Evaluate(ctx context.Context, tree m.Test) (m.TestResultSummary, int, error)
	// List returns the leaves that Evaluate would schedule, in declaration order.
	List(tree m.Test) ([]m.FlatTest, error)
	// Config returns the runner's configuration.
	Config() Config
}

type runner struct {
	printer controller.Printer
	config  Config
}

// NewRunner creates a Runner reporting to printer. A nil printer is treated as a NoopPrinter.
func NewRunner(printer controller.Printer, options ...Option) Runner {
	if printer == nil {
		printer = controller.NoopPrinter{}
	}

	config := DefaultConfig()
	for _, option := range options {
		option(&config)
	}

	if config.Locator == nil {
		config.Locator = EmptyLocator
	}

	return &runner{printer: printer, config: config}
}

func (r *runner) Config() Config {
	return r.config
}

func (r *runner) List(tree m.Test) ([]m.FlatTest, error) {
	filtered, err := r.filter(tree)
	if err != nil {
		return nil, err
	}

	return Flatten(filtered), nil
}

// filter applies the configured name patterns. A tree left without leaves
// becomes an empty list.
func (r *runner) filter(tree m.Test) (m.Test, error) {
	match, err := MatchNames(r.config.Filter)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	filtered, ok := Filter(tree, match)
	if !ok {
		return m.TestList{}, nil
	}

	return filtered, nil
}

func (r *runner) Evaluate(ctx context.Context, tree m.Test) (m.TestResultSummary, int, error) {
	start := time.Now()

	filtered, err := r.filter(tree)
	if err != nil {
		slog.Error("Failed to list tests", "error", err)
		return m.TestResultSummary{}, m.StatusFailed, err
	}

	r.printer.BeforeRun(ctx, filtered)

	flat := Flatten(filtered)

	if err := r.checkGuards(ctx, flat); err != nil {
		return m.TestResultSummary{}, m.StatusFailed, err
	}

	notifier := NewNotifier()
	executor := NewExecutor(r.printer, notifier, r.config.Locator, r.config.Timeout)
	scheduler := NewScheduler(executor, notifier, r.printer, r.config.Workers)

	results := scheduler.Run(ctx, Wrap(flat), r.config.Parallel)

	notifier.Close()

	summary := Summarize(results)
	summary.Duration = time.Since(start)

	slog.Info("Evaluation finished",
		"passed", len(summary.Passed),
		"ignored", len(summary.Ignored),
		"failed", len(summary.Failed),
		"errored", len(summary.Errored),
		"duration", summary.Duration)

	r.printer.Summary(ctx, summary)

	return summary, summary.Status(), nil
}

func (r *runner) checkGuards(ctx context.Context, flat []m.FlatTest) error {
	if !r.config.AllowDuplicateNames {
		if duplicates := DuplicateNames(flat); len(duplicates) > 0 {
			joined := strings.Join(duplicates, ", ")
			r.printer.Info(ctx, "Found duplicated test names, these names are: "+joined)
			slog.Error("Duplicate test names", "names", duplicates)

			return fmt.Errorf("%w: %s", ErrDuplicateNames, joined)
		}
	}

	if r.config.FailOnFocusedTests {
		if count := FocusedCount(flat); count > 0 {
			r.printer.Info(ctx, focusedMessage(count))
			slog.Error("Focused tests found", "count", count)

			return fmt.Errorf("%w: %d", ErrFocusedTests, count)
		}
	}

	return nil
}

// CheckNoFocused reports whether tree has no focused leaves. Otherwise it
// reports the count through printer and returns false.
func CheckNoFocused(ctx context.Context, tree m.Test, printer controller.Printer) bool {
	count := FocusedCount(Flatten(tree))
	if count == 0 {
		return true
	}

	if printer != nil {
		printer.Info(ctx, focusedMessage(count))
	}

	return false
}

func focusedMessage(count int) string {
	return fmt.Sprintf("It was requested that no focused tests exist, but yet there are %d focused tests found.", count)
}
