package domain

import (
	"context"
	"fmt"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
)

// TimeoutError is the assertion failure reported when a test body exceeds its time limit.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout (%s)", e.Limit)
}

// AssertionFailed marks TimeoutError as an assertion failure.
func (e *TimeoutError) AssertionFailed() {}

// WithTimeout returns a wrapper racing a test body against a timer. When the
// timer wins the body's context is cancelled, its goroutine is abandoned, and
// a *TimeoutError is returned.
func WithTimeout(limit time.Duration) func(m.TestCode) m.TestCode {
	return func(code m.TestCode) m.TestCode {
		return func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			done := make(chan error, 1)

			go func() {
				done <- invoke(ctx, code)
			}()

			timer := time.NewTimer(limit)
			defer timer.Stop()

			select {
			case err := <-done:
				return err
			case <-timer.C:
				return &TimeoutError{Limit: limit}
			}
		}
	}
}
