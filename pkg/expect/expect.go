// Package expect provides assertion helpers for arbor test bodies.
//
// Every helper panics with a failure or skip signal; the executor recovers the
// panic and classifies the test. Bodies may equally return the signal as an error.
package expect

import (
	"fmt"
	"reflect"
	"strings"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

type (
	// AssertionFailure is implemented by errors signalling a failed expectation.
	AssertionFailure = m.AssertionFailure
	// SkipRequest is implemented by errors asking for the test to be ignored.
	SkipRequest = m.SkipRequest
	// AssertionError is the base failure signal; embed it to define custom failures.
	AssertionError = m.AssertionError
	// SkipError is the base skip signal; embed it to define custom skips.
	SkipError = m.SkipError
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// NewFailure returns a failure signal without raising it.
func NewFailure(msg string) *AssertionError {
	return m.NewAssertionError(msg)
}

// NewSkip returns a skip signal without raising it.
func NewSkip(reason string) *SkipError {
	return m.NewSkipError(reason)
}

// Fail fails the test with msg.
func Fail(msg string) {
	panic(m.NewAssertionError(msg))
}

// Failf fails the test with a formatted message.
func Failf(format string, args ...interface{}) {
	panic(m.NewAssertionError(fmt.Sprintf(format, args...)))
}

// Skip ignores the test with reason.
func Skip(reason string) {
	panic(m.NewSkipError(reason))
}

// Skipf ignores the test with a formatted reason.
func Skipf(format string, args ...interface{}) {
	panic(m.NewSkipError(fmt.Sprintf(format, args...)))
}

// IsTrue fails unless value is true.
func IsTrue(value bool, msgAndArgs ...interface{}) {
	if !value {
		panic(m.NewAssertionError(message("expected true, got false", msgAndArgs)))
	}
}

// IsFalse fails unless value is false.
func IsFalse(value bool, msgAndArgs ...interface{}) {
	if value {
		panic(m.NewAssertionError(message("expected false, got true", msgAndArgs)))
	}
}

// Equal fails unless expected and actual are deeply equal. The message carries
// a unified diff of both values.
func Equal(expected, actual interface{}, msgAndArgs ...interface{}) {
	if objectsAreEqual(expected, actual) {
		return
	}

	text := fmt.Sprintf("not equal:\nexpected: %#v\nactual:   %#v", expected, actual)
	if d := diff(expected, actual); d != "" {
		text += "\n\n" + d
	}

	panic(m.NewAssertionError(message(text, msgAndArgs)))
}

// NoError fails if err is not nil.
func NoError(err error, msgAndArgs ...interface{}) {
	if err != nil {
		panic(m.NewAssertionError(message(fmt.Sprintf("unexpected error: %v", err), msgAndArgs)))
	}
}

// Contains fails unless s contains substr.
func Contains(s, substr string, msgAndArgs ...interface{}) {
	if !strings.Contains(s, substr) {
		panic(m.NewAssertionError(message(fmt.Sprintf("%q does not contain %q", s, substr), msgAndArgs)))
	}
}

func objectsAreEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}

	exp, ok := expected.([]byte)
	if !ok {
		return reflect.DeepEqual(expected, actual)
	}

	act, ok := actual.([]byte)
	if !ok {
		return false
	}

	return string(exp) == string(act)
}

func diff(expected, actual interface{}) string {
	if expected == nil || actual == nil {
		return ""
	}

	if reflect.TypeOf(expected) != reflect.TypeOf(actual) {
		return ""
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(dumper.Sdump(expected)),
		B:        difflib.SplitLines(dumper.Sdump(actual)),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	if err != nil {
		return ""
	}

	return text
}

func message(text string, msgAndArgs []interface{}) string {
	switch len(msgAndArgs) {
	case 0:
		return text
	case 1:
		if s, ok := msgAndArgs[0].(string); ok {
			return s + ": " + text
		}

		return fmt.Sprintf("%+v: %s", msgAndArgs[0], text)
	default:
		format, ok := msgAndArgs[0].(string)
		if !ok {
			return fmt.Sprint(msgAndArgs...) + ": " + text
		}

		return fmt.Sprintf(format, msgAndArgs[1:]...) + ": " + text
	}
}
