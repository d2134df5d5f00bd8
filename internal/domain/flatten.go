package domain

import (
	"fmt"
	"sort"

	m "arbor.dev/pkg/arbor/internal/model"
)

// Flatten walks tree in pre-order and returns one FlatTest per leaf, with the
// "/"-joined label path, the combined focus state and the sequenced flag.
func Flatten(tree m.Test) []m.FlatTest {
	var flat []m.FlatTest

	flatten(&flat, "", m.Normal, false, tree)

	return flat
}

func flatten(out *[]m.FlatTest, name string, state m.FocusState, sequenced bool, tree m.Test) {
	switch t := tree.(type) {
	case m.TestCase:
		*out = append(*out, m.FlatTest{
			Name:      name,
			Code:      t.Code,
			State:     Combine(state, t.State),
			Sequenced: sequenced,
		})
	case m.TestList:
		childState := Combine(state, t.State)
		for _, child := range t.Tests {
			flatten(out, name, childState, sequenced, child)
		}
	case m.TestLabel:
		flatten(out, joinName(name, t.Name), Combine(state, t.State), sequenced, t.Test)
	case m.Sequenced:
		flatten(out, name, state, true, t.Test)
	case nil:
	default:
		panic(fmt.Sprintf("unknown test node %T", tree))
	}
}

// Wrap decides, over the whole flattened set, which leaves are suppressed by focus.
// If any leaf is Focused every other leaf is UnFocused; otherwise all are Enabled.
func Wrap(flat []m.FlatTest) []m.WrappedFlatTest {
	anyFocused := FocusedCount(flat) > 0

	wrapped := make([]m.WrappedFlatTest, 0, len(flat))
	for _, test := range flat {
		focus := m.Enabled(test.State)
		if anyFocused && test.State != m.Focused {
			focus = m.UnFocused(test.State)
		}

		wrapped = append(wrapped, m.WrappedFlatTest{FlatTest: test, Focus: focus})
	}

	return wrapped
}

// FocusedCount returns the number of leaves resolved to Focused.
func FocusedCount(flat []m.FlatTest) int {
	count := 0

	for _, test := range flat {
		if test.State == m.Focused {
			count++
		}
	}

	return count
}

// DuplicateNames returns the sorted names shared by more than one leaf.
func DuplicateNames(flat []m.FlatTest) []string {
	seen := make(map[string]int, len(flat))
	for _, test := range flat {
		seen[test.Name]++
	}

	var duplicates []string

	for name, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, name)
		}
	}

	sort.Strings(duplicates)

	return duplicates
}
