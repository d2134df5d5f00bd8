// Package arbor is the authoring API for arbor test trees.
//
// A tree is built from cases, lists and labels:
//
//	tree := arbor.List(
//		arbor.Label("math", arbor.List(
//			arbor.Label("add", arbor.Case(func(ctx context.Context) error {
//				expect.Equal(4, 2+2)
//				return nil
//			})),
//		)),
//	)
//
//	func main() { arbor.RunMain(tree) }
package arbor

import (
	"context"
	"io"

	"arbor.dev/pkg/arbor/cmd"
	"arbor.dev/pkg/arbor/internal/adapter"
	"arbor.dev/pkg/arbor/internal/controller"
	"arbor.dev/pkg/arbor/internal/domain"
	m "arbor.dev/pkg/arbor/internal/model"
)

type (
	// Test is a node of a test tree.
	Test = m.Test
	// TestCode is the body of a test case.
	TestCode = m.TestCode
	// FocusState marks a node as normal, pending or focused.
	FocusState = m.FocusState
	// Summary buckets the results of a run.
	Summary = m.TestResultSummary
	// Result is the outcome of one test.
	Result = m.TestRunResult
	// Option customizes an evaluation.
	Option = domain.Option
	// Printer receives the evaluation hooks.
	Printer = controller.Printer
	// SourceLocation is the file and line a test body was declared at.
	SourceLocation = m.SourceLocation
	// Locator resolves the source location of a test body.
	Locator = domain.Locator
)

const (
	Normal  = m.Normal
	Pending = m.Pending
	Focused = m.Focused
)

var (
	WithParallel            = domain.WithParallel
	WithWorkers             = domain.WithWorkers
	WithFailOnFocusedTests  = domain.WithFailOnFocusedTests
	WithAllowDuplicateNames = domain.WithAllowDuplicateNames
	WithFilter              = domain.WithFilter
	WithTestTimeout         = domain.WithTestTimeout
	WithLocator             = domain.WithLocator
)

var (
	// WithTimeout wraps a test body so it fails with "Timeout (<limit>)" when it runs too long.
	WithTimeout = domain.WithTimeout
	// RuntimeLocator resolves bodies to their absolute file and line.
	RuntimeLocator = adapter.RuntimeLocator
	// RelativeLocator resolves bodies to file paths relative to root.
	RelativeLocator = adapter.RelativeLocator
)

// Case returns a leaf running code.
func Case(code TestCode) Test { return m.TestCase{Code: code} }

// FocusedCase returns a focused leaf.
func FocusedCase(code TestCode) Test { return m.TestCase{Code: code, State: m.Focused} }

// PendingCase returns a leaf that never runs.
func PendingCase(code TestCode) Test { return m.TestCase{Code: code, State: m.Pending} }

// List groups tests.
func List(tests ...Test) Test { return m.TestList{Tests: tests} }

// FocusedList groups tests and focuses all of them.
func FocusedList(tests ...Test) Test { return m.TestList{Tests: tests, State: m.Focused} }

// PendingList groups tests and marks all of them pending.
func PendingList(tests ...Test) Test { return m.TestList{Tests: tests, State: m.Pending} }

// Label names a subtree.
func Label(name string, test Test) Test { return m.TestLabel{Name: name, Test: test} }

// FocusedLabel names a subtree and focuses it.
func FocusedLabel(name string, test Test) Test {
	return m.TestLabel{Name: name, Test: test, State: m.Focused}
}

// PendingLabel names a subtree and marks it pending.
func PendingLabel(name string, test Test) Test {
	return m.TestLabel{Name: name, Test: test, State: m.Pending}
}

// Sequenced runs every leaf of test one at a time, after the parallel tests.
func Sequenced(test Test) Test { return m.Sequenced{Test: test} }

// Map returns a copy of tree with every body replaced by f(code).
func Map(tree Test, f func(TestCode) TestCode) Test { return domain.Map(tree, f) }

// ReplaceLeaf replaces every leaf with the subtree built by f. A labelled case
// passes its label name to f, which labels the replacement itself.
func ReplaceLeaf(tree Test, f func(name string, code TestCode) Test) Test {
	return domain.ReplaceLeaf(tree, f)
}

// Evaluate runs tree without the CLI and returns its summary and exit status.
// A nil printer reports nothing.
func Evaluate(ctx context.Context, tree Test, printer Printer, options ...Option) (Summary, int, error) {
	return domain.NewRunner(printer, options...).Evaluate(ctx, tree)
}

// TextPrinter returns a printer writing plain progress lines and the summary table to out.
func TextPrinter(out io.Writer, verbose bool) Printer {
	return controller.NewSimplePrinter(out, controller.WithVerbose(verbose))
}

// CheckNoFocused reports whether tree has no focused tests, telling printer otherwise.
func CheckNoFocused(ctx context.Context, tree Test, printer Printer) bool {
	return domain.CheckNoFocused(ctx, tree, printer)
}

// RunMain runs the arbor command line for tree and exits the process.
func RunMain(tree Test) {
	cmd.Execute(tree)
}
