package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arbor.dev/pkg/arbor/internal/controller"
	m "arbor.dev/pkg/arbor/internal/model"
)

// Locator resolves the source location of a test body.
type Locator func(code m.TestCode) m.SourceLocation

// EmptyLocator reports every location as unknown.
func EmptyLocator(m.TestCode) m.SourceLocation {
	return m.SourceLocation{}
}

var (
	errNoCode = errors.New("test case has no code")
	errGoexit = errors.New("test body called runtime.Goexit")
)

// Executor runs single leaves and classifies their outcome.
type Executor struct {
	printer  controller.Printer
	notifier *Notifier
	locate   Locator
	timeout  time.Duration
}

// NewExecutor creates an Executor. A nil locator reports empty locations; a
// zero timeout disables the per-test limit.
func NewExecutor(printer controller.Printer, notifier *Notifier, locate Locator, timeout time.Duration) *Executor {
	if locate == nil {
		locate = EmptyLocator
	}

	return &Executor{
		printer:  printer,
		notifier: notifier,
		locate:   locate,
		timeout:  timeout,
	}
}

// Execute runs leaf, notifying beforeEach and exactly one result hook using mode.
// Leaves whose wrapped state requires a skip, and every leaf reached after ctx
// is done, are not invoked and are reported as Ignored with zero duration.
func (e *Executor) Execute(ctx context.Context, leaf m.WrappedFlatTest, mode DispatchMode) m.TestRunResult {
	name := leaf.Name
	e.notifier.Notify(mode, func() { e.printer.BeforeEach(ctx, name) })

	result := m.TestRunResult{
		Name:     name,
		Location: e.locate(leaf.Code),
	}

	if reason, skip := leaf.Focus.SkipReason(); skip {
		result.Result = m.Ignore(reason)
	} else if ctx.Err() != nil {
		result.Result = m.Ignore(m.ReasonCancelled)
	} else {
		code := leaf.Code
		if e.timeout > 0 {
			code = WithTimeout(e.timeout)(code)
		}

		start := time.Now()
		err := invoke(ctx, code)
		result.Duration = time.Since(start)
		result.Result = Classify(err)
	}

	slog.Debug("Test completed", "name", name, "result", result.Result.Kind, "duration", result.Duration, "dispatch", mode)
	e.notifyResult(ctx, mode, result)

	return result
}

func (e *Executor) notifyResult(ctx context.Context, mode DispatchMode, result m.TestRunResult) {
	name, duration := result.Name, result.Duration

	switch result.Result.Kind {
	case m.Passed:
		e.notifier.Notify(mode, func() { e.printer.Passed(ctx, name, duration) })
	case m.Ignored:
		reason := result.Result.Message
		e.notifier.Notify(mode, func() { e.printer.Ignored(ctx, name, reason) })
	case m.Failed:
		message := result.Result.Message
		e.notifier.Notify(mode, func() { e.printer.Failed(ctx, name, message, duration) })
	case m.Errored:
		cause := result.Result.Cause
		e.notifier.Notify(mode, func() { e.printer.Exn(ctx, name, cause, duration) })
	}
}

// Classify maps the error raised by a test body to its result.
func Classify(err error) m.TestResult {
	if err == nil {
		return m.Pass()
	}

	if failure, ok := m.AsAssertionFailure(err); ok {
		message := failure.Error()
		if fragment := m.SourceFragment(err); fragment != "" {
			message += "\n" + fragment
		}

		return m.Fail(message)
	}

	if skip, ok := m.AsSkipRequest(err); ok {
		return m.Ignore(skip.Error())
	}

	return m.Error(err)
}

// invoke calls code on its own goroutine, converting a panic or a
// runtime.Goexit into the returned error.
func invoke(ctx context.Context, code m.TestCode) error {
	if code == nil {
		return errNoCode
	}

	done := make(chan error, 1)

	go func() {
		returned := false

		defer func() {
			if r := recover(); r != nil {
				done <- panicError(r)
				return
			}

			if !returned {
				done <- errGoexit
			}
		}()

		err := code(ctx)
		returned = true
		done <- err
	}()

	return <-done
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}

	return fmt.Errorf("panic: %v", r)
}
