package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, model tea.Model, msgs ...tea.Msg) runModel {
	t.Helper()

	for _, msg := range msgs {
		model, _ = model.Update(msg)
	}

	rm, ok := model.(runModel)
	require.True(t, ok)

	return rm
}

func TestRunModel_Counts(t *testing.T) {
	var buf bytes.Buffer

	model := update(t, newRunModel(3, newPalette(&buf), 0),
		testStartedMsg{name: "a"},
		testStartedMsg{name: "b"},
		testFinishedMsg{name: "a", kind: m.Passed},
		testFinishedMsg{name: "b", kind: m.Failed},
	)

	assert.Equal(t, 2, model.finished())
	assert.InDelta(t, 2.0/3.0, model.percent(), 0.001)
	assert.Len(t, model.running, 0)
	assert.Equal(t, []string{"b"}, model.failures)

	view := model.View()
	assert.Contains(t, view, "2/3")
	assert.Contains(t, view, "PASS 1")
	assert.Contains(t, view, "FAIL 1")
	assert.Contains(t, view, "x b")
}

func TestRunModel_RunningIndicator(t *testing.T) {
	var buf bytes.Buffer

	model := update(t, newRunModel(1, newPalette(&buf), 0), testStartedMsg{name: "a"})

	assert.Contains(t, model.View(), "running 1 test(s)")
}

func TestRunModel_KeepsRecentFailures(t *testing.T) {
	var buf bytes.Buffer

	var msgs []tea.Msg
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		msgs = append(msgs, testFinishedMsg{name: name, kind: m.Errored})
	}

	model := update(t, newRunModel(7, newPalette(&buf), 0), msgs...)

	assert.Equal(t, []string{"c", "d", "e", "f", "g"}, model.failures)
	assert.Equal(t, 7, model.counts[m.Errored])
}

func TestRunModel_EmptyTreeIsComplete(t *testing.T) {
	var buf bytes.Buffer

	assert.InDelta(t, 1.0, newRunModel(0, newPalette(&buf), 0).percent(), 0.001)
}

func TestRunModel_WindowSize(t *testing.T) {
	var buf bytes.Buffer

	model := update(t, newRunModel(1, newPalette(&buf), 0), tea.WindowSizeMsg{Width: 30, Height: 10})

	assert.Equal(t, 26, model.bar.Width)
}

func TestRunModel_Finish(t *testing.T) {
	var buf bytes.Buffer

	next, cmd := newRunModel(1, newPalette(&buf), 0).Update(runFinishedMsg{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestTUIPrinter_SummaryWithoutTests(t *testing.T) {
	var buf bytes.Buffer

	printer := NewTUIPrinter(&buf)
	printer.BeforeRun(context.Background(), m.TestList{})
	printer.Info(context.Background(), "nothing to do")
	printer.Summary(context.Background(), m.TestResultSummary{})

	out := buf.String()
	assert.Contains(t, out, "nothing to do")
	assert.Contains(t, out, "0 tests run in 0s")
}

func TestTUIPrinter_Run(t *testing.T) {
	var buf bytes.Buffer

	ctx := context.Background()
	printer := NewTUIPrinter(&buf)

	printer.BeforeRun(ctx, m.TestList{Tests: []m.Test{m.TestCase{}, m.TestCase{}}})
	printer.BeforeEach(ctx, "a")
	printer.Passed(ctx, "a", time.Millisecond)
	printer.BeforeEach(ctx, "b")
	printer.Exn(ctx, "b", errors.New("boom"), time.Millisecond)
	printer.Summary(ctx, m.TestResultSummary{
		Passed:  []m.TestRunResult{{Name: "a", Result: m.Pass()}},
		Errored: []m.TestRunResult{{Name: "b", Result: m.Error(errors.New("boom"))}},
	})

	assert.Contains(t, buf.String(), "2 tests run in 0s: 1 passed, 0 ignored, 0 failed, 1 errored. Failed!")
}

func TestTUIPrinter_StopWithoutStartIsNoop(t *testing.T) {
	var buf bytes.Buffer

	NewTUIPrinter(&buf).Stop()

	assert.Empty(t, buf.String())
}
