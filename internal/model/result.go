package model

import (
	"fmt"
	"time"
)

// SourceLocation points at the source of a test body. The zero value means unknown.
type SourceLocation struct {
	Path string `yaml:"path,omitempty"`
	Line int    `yaml:"line,omitempty"`
}

// IsEmpty reports whether the location is unknown.
func (l SourceLocation) IsEmpty() bool {
	return l.Path == "" && l.Line == 0
}

func (l SourceLocation) String() string {
	if l.IsEmpty() {
		return ""
	}

	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

// ResultKind is the outcome category of a test. Its ordinal is used to bucket results.
type ResultKind int

const (
	// Passed indicates the body returned normally.
	Passed ResultKind = iota
	// Ignored indicates the test was skipped.
	Ignored
	// Failed indicates an assertion failure.
	Failed
	// Errored indicates any other error.
	Errored
)

func (k ResultKind) String() string {
	switch k {
	case Passed:
		return "passed"
	case Ignored:
		return "ignored"
	case Failed:
		return "failed"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// TestResult is the tagged outcome of a single test.
type TestResult struct {
	Kind ResultKind
	// Message holds the ignore reason or the failure message.
	Message string
	// Cause holds the error for Errored results.
	Cause error
}

// Pass returns a Passed result.
func Pass() TestResult {
	return TestResult{Kind: Passed}
}

// Ignore returns an Ignored result with the given reason.
func Ignore(reason string) TestResult {
	return TestResult{Kind: Ignored, Message: reason}
}

// Fail returns a Failed result with the given message.
func Fail(message string) TestResult {
	return TestResult{Kind: Failed, Message: message}
}

// Error returns an Errored result retaining cause.
func Error(cause error) TestResult {
	return TestResult{Kind: Errored, Cause: cause}
}

func (r TestResult) String() string {
	switch r.Kind {
	case Passed:
		return r.Kind.String()
	case Ignored, Failed:
		return fmt.Sprintf("%s: %s", r.Kind, r.Message)
	case Errored:
		return fmt.Sprintf("%s: %v", r.Kind, r.Cause)
	default:
		return r.Kind.String()
	}
}

// TestRunResult is the outcome of running one leaf.
type TestRunResult struct {
	Name     string
	Location SourceLocation
	Result   TestResult
	Duration time.Duration
}
