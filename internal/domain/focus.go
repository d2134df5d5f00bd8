// Package domain implements test tree flattening, focus resolution, scheduling and aggregation.
package domain

import m "arbor.dev/pkg/arbor/internal/model"

// Combine resolves a child's focus state under its parent's.
//
// Pending wins from either side, Focused dominates Normal, and a Normal parent
// defers to the child.
func Combine(parent, child m.FocusState) m.FocusState {
	switch {
	case parent == m.Pending, child == m.Pending:
		return m.Pending
	case parent == m.Focused:
		return m.Focused
	default:
		return child
	}
}
