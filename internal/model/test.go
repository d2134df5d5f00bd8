// Package model defines the data structures for test tree evaluation.
package model

import "context"

// FocusState marks whether a node runs normally, is skipped, or is focused.
type FocusState int

const (
	// Normal runs unless another test is focused.
	Normal FocusState = iota
	// Pending never runs.
	Pending
	// Focused runs and suppresses every non-focused test.
	Focused
)

func (s FocusState) String() string {
	switch s {
	case Normal:
		return "normal"
	case Pending:
		return "pending"
	case Focused:
		return "focused"
	default:
		return "unknown"
	}
}

// TestCode is the body of a single test case.
//
// A body signals failure or a skip either by returning an AssertionFailure /
// SkipRequest error or by panicking with one.
type TestCode func(ctx context.Context) error

// Test is a node of a test tree: TestCase, TestList, TestLabel or Sequenced.
type Test interface {
	// FocusState returns the node's own state. Sequenced nodes report Normal.
	FocusState() FocusState
	isTest()
}

// TestCase is a leaf holding executable code.
type TestCase struct {
	Code  TestCode
	State FocusState
}

// TestList groups tests; State combines with every child.
type TestList struct {
	Tests []Test
	State FocusState
}

// TestLabel names a subtree.
type TestLabel struct {
	Name  string
	Test  Test
	State FocusState
}

// Sequenced marks every leaf beneath it as requiring in-order, non-concurrent execution.
type Sequenced struct {
	Test Test
}

func (c TestCase) FocusState() FocusState  { return c.State }
func (l TestList) FocusState() FocusState  { return l.State }
func (l TestLabel) FocusState() FocusState { return l.State }
func (s Sequenced) FocusState() FocusState { return Normal }

func (TestCase) isTest()  {}
func (TestList) isTest()  {}
func (TestLabel) isTest() {}
func (Sequenced) isTest() {}

// CaseCount returns the number of leaves in the tree.
func CaseCount(test Test) int {
	switch t := test.(type) {
	case TestCase:
		return 1
	case TestList:
		count := 0
		for _, child := range t.Tests {
			count += CaseCount(child)
		}

		return count
	case TestLabel:
		return CaseCount(t.Test)
	case Sequenced:
		return CaseCount(t.Test)
	default:
		return 0
	}
}
