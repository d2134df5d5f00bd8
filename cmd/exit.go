package cmd

import (
	"errors"
	"fmt"
)

// ExitCoder is an error that carries a process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError carries an explicit exit code through cobra. It unwraps to its cause.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
}

// ExitCode implements ExitCoder.
func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// Silent reports whether the error has nothing to print beyond its code.
func (e *ExitError) Silent() bool { return e.msg == "" && e.cause == nil }

// newExitError returns an ExitError with code and msg. Codes below 1 become 1.
func newExitError(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// wrapExit wraps cause with an exit code.
func wrapExit(code int, msg string, cause error) error {
	if cause == nil {
		return newExitError(code, msg)
	}

	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// ExitCodeOf extracts the exit code from err: 0 for nil, 1 when err carries none.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}

	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return 1
}

func normalize(code int) int {
	if code <= 0 {
		return 1
	}

	return code
}
