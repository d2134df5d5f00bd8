package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/spf13/viper"
)

// resetConfig gives the test a fresh viper instance with the CLI defaults.
func resetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	initConfig()

	t.Cleanup(func() {
		viper.Reset()
		initConfig()
	})
}

// execute runs the CLI against tree and returns the combined output and exit code.
func execute(t *testing.T, tree m.Test, args ...string) (string, int) {
	t.Helper()

	resetConfig(t)

	var out bytes.Buffer

	args = append(args, "--"+logFileFlagName, filepath.Join(t.TempDir(), "arbor.log"))
	code := Run(context.Background(), tree, args, &out, &out)

	return out.String(), code
}

func pass(context.Context) error { return nil }

func fail(context.Context) error { return m.NewAssertionError("numbers differ") }

func raise(context.Context) error { return errors.New("disk on fire") }

func leaf(name string, code m.TestCode) m.Test {
	return m.TestLabel{Name: name, Test: m.TestCase{Code: code}}
}

func group(name string, tests ...m.Test) m.Test {
	return m.TestLabel{Name: name, Test: m.TestList{Tests: tests}}
}

func focusedTree() m.Test {
	return m.TestList{Tests: []m.Test{
		m.TestLabel{Name: "only", Test: m.TestCase{Code: pass}, State: m.Focused},
		leaf("other", pass),
	}}
}
