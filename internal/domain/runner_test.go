package domain

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"arbor.dev/pkg/arbor/internal/controller/mocks"
	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken")

func failing(context.Context) error { return m.NewAssertionError("nope") }

func erroring(context.Context) error { return errBroken }

func TestRunner_Evaluate_NoFocus(t *testing.T) {
	tree := list(
		labelled("a", testCase(m.Normal)),
		labelled("b", testCase(m.Pending)),
		labelled("c", testCase(m.Normal)),
	)

	printer := &recordingPrinter{}
	summary, status, err := NewRunner(printer).Evaluate(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, []string{"a", "c"}, resultNames(summary.Passed))
	require.Len(t, summary.Ignored, 1)
	assert.Equal(t, m.Ignore(m.ReasonPending), summary.Ignored[0].Result)

	events := printer.snapshot()
	assert.Equal(t, "beforeRun", events[0].hook)
	assert.Equal(t, "summary", events[len(events)-1].hook)
}

func TestRunner_Evaluate_FocusSuppressesOthers(t *testing.T) {
	ran := map[string]bool{}
	mark := func(name string) m.TestCode {
		return func(context.Context) error {
			ran[name] = true
			return nil
		}
	}

	tree := list(
		labelled("normal", m.TestCase{Code: mark("normal")}),
		m.TestLabel{Name: "focused", State: m.Focused, Test: m.TestCase{Code: mark("focused")}},
		labelled("pending", m.TestCase{Code: mark("pending"), State: m.Pending}),
		m.TestLabel{Name: "focused-pending", State: m.Focused, Test: m.TestCase{Code: mark("fp"), State: m.Pending}},
	)

	summary, status, err := NewRunner(nil, WithParallel(false)).Evaluate(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, map[string]bool{"focused": true}, ran)
	assert.Equal(t, []string{"focused"}, resultNames(summary.Passed))

	reasons := map[string]string{}
	for _, r := range summary.Ignored {
		reasons[r.Name] = r.Result.Message
	}

	assert.Equal(t, map[string]string{
		"normal":          m.ReasonUnfocused,
		"pending":         m.ReasonPending,
		"focused-pending": m.ReasonPending,
	}, reasons)
	assert.Contains(t, reasons["normal"], "focused")
}

func TestRunner_Evaluate_Status(t *testing.T) {
	tree := list(
		labelled("pass", m.TestCase{Code: passing}),
		labelled("fail", m.TestCase{Code: failing}),
		labelled("error", m.TestCase{Code: erroring}),
		labelled("skip", testCase(m.Pending)),
	)

	summary, status, err := NewRunner(&recordingPrinter{}).Evaluate(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, m.StatusFailed|m.StatusErrored, status)
	assert.Equal(t, 4, summary.Total())
	require.Len(t, summary.Errored, 1)
	assert.ErrorIs(t, summary.Errored[0].Result.Cause, errBroken)
	require.Len(t, summary.Failed, 1)
	assert.True(t, strings.HasPrefix(summary.Failed[0].Result.Message, "nope"))
}

func TestRunner_Evaluate_FailOnFocusedTests(t *testing.T) {
	tree := list(
		m.TestLabel{Name: "a", State: m.Focused, Test: testCase(m.Normal)},
		labelled("b", testCase(m.Focused)),
		labelled("c", testCase(m.Normal)),
	)

	invoked := false
	tree.Tests = append(tree.Tests, labelled("d", m.TestCase{Code: func(context.Context) error {
		invoked = true
		return nil
	}}))

	printer := &recordingPrinter{}
	_, status, err := NewRunner(printer, WithFailOnFocusedTests(true)).Evaluate(context.Background(), tree)

	require.ErrorIs(t, err, ErrFocusedTests)
	assert.Equal(t, m.StatusFailed, status)
	assert.False(t, invoked)

	infos := printer.hooks("info")
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].detail, "2 focused tests")
}

func TestRunner_Evaluate_DuplicateNames(t *testing.T) {
	tree := list(labelled("same", testCase(m.Normal)), labelled("same", testCase(m.Normal)))

	_, status, err := NewRunner(nil).Evaluate(context.Background(), tree)
	require.ErrorIs(t, err, ErrDuplicateNames)
	assert.Equal(t, m.StatusFailed, status)

	summary, status, err := NewRunner(nil, WithAllowDuplicateNames(true)).Evaluate(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Len(t, summary.Passed, 2)
}

func TestRunner_Evaluate_Filter(t *testing.T) {
	tree := list(
		labelled("api", list(labelled("get", testCase(m.Normal)), labelled("post", testCase(m.Normal)))),
		labelled("db", labelled("migrate", testCase(m.Normal))),
	)

	summary, _, err := NewRunner(nil, WithFilter([]string{"api/post", "db"})).Evaluate(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, []string{"api/post", "db/migrate"}, resultNames(summary.Passed))
}

func TestRunner_Evaluate_FilterHidesFocusedTests(t *testing.T) {
	tree := list(
		labelled("kept", testCase(m.Normal)),
		labelled("hidden", testCase(m.Focused)),
	)

	summary, _, err := NewRunner(nil, WithFilter([]string{"kept"}), WithFailOnFocusedTests(true)).
		Evaluate(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, resultNames(summary.Passed))
}

func TestRunner_Evaluate_BeforeRunSeesFilteredTree(t *testing.T) {
	tree := list(
		labelled("api", list(labelled("get", testCase(m.Normal)), labelled("post", testCase(m.Normal)))),
		labelled("db", labelled("migrate", testCase(m.Normal))),
	)

	tests := []struct {
		name      string
		patterns  []string
		wantCases int
	}{
		{"single match", []string{"api/get"}, 1},
		{"subtree match", []string{"api"}, 2},
		{"no match", []string{"nothing"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer := mocks.NewMockPrinter(t)
			printer.On("BeforeRun", mock.Anything, mock.MatchedBy(func(test m.Test) bool {
				return m.CaseCount(test) == tt.wantCases
			})).Return().Once()
			printer.On("BeforeEach", mock.Anything, mock.Anything).Return().Maybe()
			printer.On("Passed", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
			printer.On("Summary", mock.Anything, mock.Anything).Return().Once()

			summary, _, err := NewRunner(printer, WithFilter(tt.patterns)).Evaluate(context.Background(), tree)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCases, summary.Total())
		})
	}
}

func TestRunner_Evaluate_InvalidFilter(t *testing.T) {
	_, status, err := NewRunner(nil, WithFilter([]string{"[oops"})).Evaluate(context.Background(), labelled("a", testCase(m.Normal)))

	require.Error(t, err)
	assert.Equal(t, m.StatusFailed, status)
}

func TestRunner_Evaluate_TestTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}

		return nil
	}

	summary, status, err := NewRunner(nil, WithTestTimeout(10*time.Millisecond)).
		Evaluate(context.Background(), labelled("slow", m.TestCase{Code: slow}))

	require.NoError(t, err)
	assert.Equal(t, m.StatusFailed, status)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Timeout (10ms)", summary.Failed[0].Result.Message)
}

func TestRunner_Evaluate_Goexit(t *testing.T) {
	exits := func(context.Context) error {
		runtime.Goexit()
		return nil
	}

	for _, parallel := range []bool{true, false} {
		t.Run(fmt.Sprintf("parallel=%t", parallel), func(t *testing.T) {
			tree := list(labelled("exits", m.TestCase{Code: exits}), labelled("ok", testCase(m.Normal)))

			summary, status, err := NewRunner(nil, WithParallel(parallel)).Evaluate(context.Background(), tree)

			require.NoError(t, err)
			assert.Equal(t, 2, summary.Total())
			assert.Equal(t, m.StatusErrored, status)
			assert.Equal(t, []string{"exits"}, resultNames(summary.Errored))
			assert.Equal(t, []string{"ok"}, resultNames(summary.Passed))
		})
	}
}

func TestRunner_Evaluate_StopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ranLast := false
	tree := list(
		labelled("cancels", m.TestCase{Code: func(context.Context) error {
			cancel()
			return nil
		}}),
		labelled("after", m.TestCase{Code: func(context.Context) error {
			ranLast = true
			return nil
		}}),
	)

	summary, status, err := NewRunner(nil, WithParallel(false)).Evaluate(ctx, tree)

	require.NoError(t, err)
	assert.False(t, ranLast)
	assert.Equal(t, 0, status)
	assert.Equal(t, []string{"cancels"}, resultNames(summary.Passed))
	require.Len(t, summary.Ignored, 1)
	assert.Equal(t, "after", summary.Ignored[0].Name)
	assert.Equal(t, m.Ignore(m.ReasonCancelled), summary.Ignored[0].Result)
}

func TestRunner_Evaluate_MockPrinter(t *testing.T) {
	printer := mocks.NewMockPrinter(t)
	tree := m.Sequenced{Test: labelled("only", testCase(m.Normal))}

	printer.On("BeforeRun", mock.Anything, mock.Anything).Return().Once()
	printer.On("BeforeEach", mock.Anything, "only").Return().Once()
	printer.On("Passed", mock.Anything, "only", mock.AnythingOfType("time.Duration")).Return().Once()
	printer.On("Summary", mock.Anything, mock.MatchedBy(func(s m.TestResultSummary) bool {
		return len(s.Passed) == 1 && s.Passed[0].Name == "only"
	})).Return().Once()

	_, status, err := NewRunner(printer).Evaluate(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestRunner_List(t *testing.T) {
	tree := list(labelled("a", testCase(m.Normal)), m.Sequenced{Test: labelled("b", testCase(m.Focused))})

	flat, err := NewRunner(nil).List(tree)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(flat))
	assert.True(t, flat[1].Sequenced)
}

func TestNewRunner_Defaults(t *testing.T) {
	config := NewRunner(nil).Config()

	assert.True(t, config.Parallel)
	assert.Positive(t, config.Workers)
	assert.NotNil(t, config.Locator)
	assert.False(t, config.FailOnFocusedTests)
}

func TestCheckNoFocused(t *testing.T) {
	t.Run("focused tests present", func(t *testing.T) {
		printer := mocks.NewMockPrinter(t)
		printer.On("Info", mock.Anything, mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, "there are 2 focused tests")
		})).Return().Once()

		tree := list(testCase(m.Focused), m.TestList{State: m.Focused, Tests: []m.Test{testCase(m.Normal)}}, testCase(m.Normal))

		assert.False(t, CheckNoFocused(context.Background(), tree, printer))
	})

	t.Run("no focused tests", func(t *testing.T) {
		printer := mocks.NewMockPrinter(t)

		assert.True(t, CheckNoFocused(context.Background(), list(testCase(m.Normal), testCase(m.Pending)), printer))
	})
}
