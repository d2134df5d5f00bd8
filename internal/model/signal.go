package model

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// AssertionFailure is implemented by errors signalling a failed expectation.
// Types embedding *AssertionError satisfy it.
type AssertionFailure interface {
	error
	AssertionFailed()
}

// SkipRequest is implemented by errors asking for the test to be ignored.
// Types embedding *SkipError satisfy it.
type SkipRequest interface {
	error
	SkipRequested()
}

// AssertionError is the base assertion-failure signal. It records the stack
// at the point it was created.
type AssertionError struct {
	msg   string
	trace error
}

// NewAssertionError creates an assertion-failure signal with the given message.
func NewAssertionError(msg string) *AssertionError {
	return &AssertionError{msg: msg, trace: pkgerrors.New(msg)}
}

func (e *AssertionError) Error() string { return e.msg }

// AssertionFailed marks the error as an AssertionFailure.
func (e *AssertionError) AssertionFailed() {}

// StackTrace returns the frames captured at construction.
func (e *AssertionError) StackTrace() pkgerrors.StackTrace {
	var tracer stackTracer
	if errors.As(e.trace, &tracer) {
		return tracer.StackTrace()
	}

	return nil
}

// SkipError is the base skip signal.
type SkipError struct {
	msg string
}

// NewSkipError creates a skip signal with the given reason.
func NewSkipError(reason string) *SkipError {
	return &SkipError{msg: reason}
}

func (e *SkipError) Error() string { return e.msg }

// SkipRequested marks the error as a SkipRequest.
func (e *SkipError) SkipRequested() {}

// AsAssertionFailure finds the first AssertionFailure in err's chain.
func AsAssertionFailure(err error) (AssertionFailure, bool) {
	var failure AssertionFailure
	if errors.As(err, &failure) {
		return failure, true
	}

	return nil, false
}

// AsSkipRequest finds the first SkipRequest in err's chain.
func AsSkipRequest(err error) (SkipRequest, bool) {
	var skip SkipRequest
	if errors.As(err, &skip) {
		return skip, true
	}

	return nil, false
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// libraryFrames are function-name prefixes skipped when locating the failing line.
var libraryFrames = []string{
	"arbor.dev/pkg/arbor/internal/model.",
	"arbor.dev/pkg/arbor/pkg/expect.",
	"github.com/pkg/errors.",
	"runtime.",
}

// SourceFragment returns "file:line" of the first frame of err's captured
// stack outside the assertion library, or "" when none is recognized.
func SourceFragment(err error) string {
	var tracer stackTracer
	if !errors.As(err, &tracer) {
		return ""
	}

	for _, frame := range tracer.StackTrace() {
		// %+s renders "function\n\tfile".
		funcName, file, ok := strings.Cut(fmt.Sprintf("%+s", frame), "\n\t")
		if !ok || funcName == "unknown" || isLibraryFrame(funcName) {
			continue
		}

		return fmt.Sprintf("%s:%d", file, frame)
	}

	return ""
}

func isLibraryFrame(funcName string) bool {
	for _, prefix := range libraryFrames {
		if strings.HasPrefix(funcName, prefix) {
			return true
		}
	}

	return false
}
