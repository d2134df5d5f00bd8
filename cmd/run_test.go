package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		tree     m.Test
		wantCode int
		contains string
	}{
		{
			name:     "all pass",
			tree:     group("math", leaf("add", pass), leaf("sub", pass)),
			wantCode: m.StatusSuccess,
			contains: "2 tests run",
		},
		{
			name:     "failure sets bit 0",
			tree:     group("math", leaf("add", pass), leaf("sub", fail)),
			wantCode: m.StatusFailed,
			contains: "FAIL math/sub",
		},
		{
			name:     "error sets bit 1",
			tree:     leaf("io", raise),
			wantCode: m.StatusErrored,
			contains: "disk on fire",
		},
		{
			name:     "failure and error",
			tree:     m.TestList{Tests: []m.Test{leaf("a", fail), leaf("b", raise)}},
			wantCode: m.StatusFailed | m.StatusErrored,
			contains: "Failed!",
		},
		{
			name:     "empty tree",
			tree:     m.TestList{},
			wantCode: m.StatusSuccess,
			contains: "0 tests run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, code := execute(t, tt.tree, "run")

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, out, tt.contains)
			assert.NotContains(t, out, "Error:")
		})
	}
}

func TestRunCmd_FailOnFocused(t *testing.T) {
	tree := m.TestList{Tests: []m.Test{
		m.TestLabel{Name: "only", Test: m.TestCase{Code: pass}, State: m.Focused},
		leaf("other", pass),
	}}

	out, code := execute(t, tree, "run", "--fail-on-focused")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "there are 1 focused tests found")
	assert.Contains(t, out, "Error: run rejected: focused tests found: 1")
}

func TestRunCmd_FocusedSkipsOthers(t *testing.T) {
	tree := m.TestList{Tests: []m.Test{
		m.TestLabel{Name: "only", Test: m.TestCase{Code: pass}, State: m.Focused},
		leaf("other", fail),
	}}

	out, code := execute(t, tree, "run", "--verbose")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "SKIP other: another test is focused")
}

func TestRunCmd_DuplicateNames(t *testing.T) {
	tree := m.TestList{Tests: []m.Test{leaf("same", pass), leaf("same", pass)}}

	out, code := execute(t, tree, "run")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Found duplicated test names, these names are: same")

	out, code = execute(t, tree, "run", "--allow-duplicates")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "2 tests run")
}

func TestRunCmd_Filter(t *testing.T) {
	tree := m.TestList{Tests: []m.Test{
		group("math", leaf("add", pass)),
		group("io", leaf("read", fail)),
	}}

	out, code := execute(t, tree, "run", "--filter", "math")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "1 tests run")
}

func TestRunCmd_InvalidFilter(t *testing.T) {
	out, code := execute(t, leaf("a", pass), "run", "--filter", "[")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "invalid configuration")
}

func TestRunCmd_Sequenced(t *testing.T) {
	tree := m.TestList{Tests: []m.Test{
		leaf("parallel", pass),
		m.Sequenced{Test: leaf("serial", pass)},
	}}

	out, code := execute(t, tree, "run")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Starting sequenced tests...")
}

func TestRunCmd_Timeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}

		return nil
	}

	out, code := execute(t, leaf("slow", slow), "run", "--timeout", "10ms")

	assert.Equal(t, m.StatusFailed, code)
	assert.Contains(t, out, "Timeout (10ms)")
}

func TestRunCmd_InvalidTimeout(t *testing.T) {
	out, code := execute(t, leaf("a", pass), "run", "--timeout", "soon")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "invalid configuration")
}

func TestRunCmd_ReportsAndView(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "summary.yaml")
	journal := filepath.Join(dir, "run.gob")

	tree := m.TestList{Tests: []m.Test{leaf("a", pass), leaf("b", fail)}}

	_, code := execute(t, tree, "run", "--report", report, "--journal", journal)
	require.Equal(t, m.StatusFailed, code)
	require.FileExists(t, report)
	require.FileExists(t, journal)

	out, code := execute(t, nil, "view", journal, "--locations")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "2 tests run")
	assert.Contains(t, out, "1 passed, 0 ignored, 1 failed, 0 errored")
	assert.Contains(t, out, "helpers_test.go")
}

func TestRunCmd_RejectsArgs(t *testing.T) {
	out, code := execute(t, leaf("a", pass), "run", "extra")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Error:")
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "", want: 0},
		{raw: "0", want: 0},
		{raw: "0s", want: 0},
		{raw: " 250ms ", want: 250 * time.Millisecond},
		{raw: "2m", want: 2 * time.Minute},
		{raw: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseTimeout(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
