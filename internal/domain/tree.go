package domain

import (
	"fmt"
	"strings"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/bmatcuk/doublestar/v4"
)

// NameSeparator joins label names into a test's full name.
const NameSeparator = "/"

// Map returns a copy of tree with every leaf's code replaced by f(code). Nil
// nodes stay nil, as Flatten ignores them.
func Map(tree m.Test, f func(m.TestCode) m.TestCode) m.Test {
	switch t := tree.(type) {
	case m.TestCase:
		return m.TestCase{Code: f(t.Code), State: t.State}
	case m.TestList:
		tests := make([]m.Test, 0, len(t.Tests))
		for _, child := range t.Tests {
			tests = append(tests, Map(child, f))
		}

		return m.TestList{Tests: tests, State: t.State}
	case m.TestLabel:
		return m.TestLabel{Name: t.Name, Test: Map(t.Test, f), State: t.State}
	case m.Sequenced:
		return m.Sequenced{Test: Map(t.Test, f)}
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("unknown test node %T", tree))
	}
}

// ReplaceLeaf replaces every leaf with the subtree built by f.
//
// A label directly wrapping a case is replaced together with the case: f receives
// the label's name and is expected to label its result itself. A bare case gets
// an empty name. The leaf's resolved state is then combined into the top of the
// replacement.
func ReplaceLeaf(tree m.Test, f func(name string, code m.TestCode) m.Test) m.Test {
	switch t := tree.(type) {
	case m.TestLabel:
		if leaf, ok := t.Test.(m.TestCase); ok {
			return withFocus(Combine(t.State, leaf.State), f(t.Name, leaf.Code))
		}

		return m.TestLabel{Name: t.Name, Test: ReplaceLeaf(t.Test, f), State: t.State}
	case m.TestCase:
		return withFocus(t.State, f("", t.Code))
	case m.TestList:
		tests := make([]m.Test, 0, len(t.Tests))
		for _, child := range t.Tests {
			tests = append(tests, ReplaceLeaf(child, f))
		}

		return m.TestList{Tests: tests, State: t.State}
	case m.Sequenced:
		return m.Sequenced{Test: ReplaceLeaf(t.Test, f)}
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("unknown test node %T", tree))
	}
}

// withFocus combines state, as parent, into the top-level state of test.
func withFocus(state m.FocusState, test m.Test) m.Test {
	switch t := test.(type) {
	case m.TestCase:
		return m.TestCase{Code: t.Code, State: Combine(state, t.State)}
	case m.TestList:
		return m.TestList{Tests: t.Tests, State: Combine(state, t.State)}
	case m.TestLabel:
		return m.TestLabel{Name: t.Name, Test: t.Test, State: Combine(state, t.State)}
	case m.Sequenced:
		return m.Sequenced{Test: withFocus(state, t.Test)}
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("unknown test node %T", test))
	}
}

// Filter keeps the leaves whose full name satisfies pred. Lists, labels and
// sequenced nodes left without leaves are pruned; ok is false when nothing remains.
func Filter(tree m.Test, pred func(name string) bool) (m.Test, bool) {
	return filter("", tree, pred)
}

func filter(name string, tree m.Test, pred func(string) bool) (m.Test, bool) {
	switch t := tree.(type) {
	case m.TestCase:
		return t, pred(name)
	case m.TestList:
		var kept []m.Test

		for _, child := range t.Tests {
			if filtered, ok := filter(name, child, pred); ok {
				kept = append(kept, filtered)
			}
		}

		if len(kept) == 0 {
			return nil, false
		}

		return m.TestList{Tests: kept, State: t.State}, true
	case m.TestLabel:
		child, ok := filter(joinName(name, t.Name), t.Test, pred)
		if !ok {
			return nil, false
		}

		return m.TestLabel{Name: t.Name, Test: child, State: t.State}, true
	case m.Sequenced:
		child, ok := filter(name, t.Test, pred)
		if !ok {
			return nil, false
		}

		return m.Sequenced{Test: child}, true
	default:
		return nil, false
	}
}

// MatchNames builds a name predicate from glob patterns. A pattern matches a
// name itself and everything below it in the hierarchy. No patterns match all names.
func MatchNames(patterns []string) (func(string) bool, error) {
	cleaned := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		pattern = strings.Trim(strings.TrimSpace(pattern), NameSeparator)
		if pattern == "" {
			continue
		}

		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid filter pattern %q", pattern)
		}

		cleaned = append(cleaned, pattern)
	}

	return func(name string) bool {
		if len(cleaned) == 0 {
			return true
		}

		for _, pattern := range cleaned {
			if matched, _ := doublestar.Match(pattern, name); matched {
				return true
			}

			if matched, _ := doublestar.Match(pattern+"/**", name); matched {
				return true
			}
		}

		return false
	}, nil
}

func joinName(parent, label string) string {
	switch {
	case label == "":
		return parent
	case parent == "":
		return label
	default:
		return parent + NameSeparator + label
	}
}
