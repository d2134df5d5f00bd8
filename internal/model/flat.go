package model

import "fmt"

// FlatTest is a single leaf after flattening, with its resolved name and state.
type FlatTest struct {
	Name      string
	Code      TestCode
	State     FocusState
	Sequenced bool
}

// WrappedFocusState is a leaf's resolved state annotated with whether another
// focused test suppresses it.
type WrappedFocusState struct {
	State     FocusState
	Unfocused bool
}

// Skip reasons reported for leaves that are not executed.
const (
	ReasonPending   = "pending"
	ReasonUnfocused = "another test is focused"
	ReasonCancelled = "run cancelled"
)

// Enabled wraps a state that is not suppressed by focus elsewhere.
func Enabled(state FocusState) WrappedFocusState {
	return WrappedFocusState{State: state}
}

// UnFocused wraps a state suppressed because some other leaf is focused.
func UnFocused(state FocusState) WrappedFocusState {
	return WrappedFocusState{State: state, Unfocused: true}
}

func (w WrappedFocusState) String() string {
	if w.Unfocused {
		return fmt.Sprintf("unfocused(%s)", w.State)
	}

	return fmt.Sprintf("enabled(%s)", w.State)
}

// SkipReason reports whether the leaf must be skipped and why.
//
// It panics on UnFocused(Focused): a focused leaf is never suppressed.
func (w WrappedFocusState) SkipReason() (string, bool) {
	switch {
	case w.State == Pending:
		return ReasonPending, true
	case w.Unfocused && w.State == Focused:
		panic(fmt.Sprintf("invalid wrapped focus state %s", w))
	case w.Unfocused:
		return ReasonUnfocused, true
	default:
		return "", false
	}
}

// WrappedFlatTest is a FlatTest ready for scheduling.
type WrappedFlatTest struct {
	FlatTest
	Focus WrappedFocusState
}
