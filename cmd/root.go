// Package cmd provides the root command and CLI setup for arbor.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"arbor.dev/pkg/arbor/internal/adapter"
	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// registeredTree is the tree evaluated by the run and list commands.
var registeredTree m.Test = m.TestList{}

var reportStore = adapter.NewReportStore()

var (
	logFileFlag    string
	logVerboseFlag bool
)

const rootLongDescription = `arbor evaluates a tree of tests declared in Go code.

Tests are grouped into lists and labels, may be focused or marked pending,
and run in parallel unless they sit under a sequenced node. Settings are read
from arbor.yaml, ARBOR_* environment variables and flags, in increasing order
of precedence.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "arbor",
		Short:         "Evaluate a test tree",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "file receiving the structured log")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVar(&logVerboseFlag, logVerboseFlagName, viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logVerboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// newCommand assembles the root command with every subcommand.
func newCommand() *cobra.Command {
	cmd := newRootCmd()
	cmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newViewCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Run executes the command line args against tree and returns the exit code.
// Errors are printed to errOut.
func Run(ctx context.Context, tree m.Test, args []string, out, errOut io.Writer) int {
	if tree == nil {
		tree = m.TestList{}
	}

	registeredTree = tree

	cmd := newCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Silent() {
			_, _ = fmt.Fprintln(errOut, "Error:", err)
		}
	}

	return ExitCodeOf(err)
}

// Execute runs the CLI for tree with the process arguments and exits.
// This is called by main.main().
func Execute(tree m.Test) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, tree, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// bindFlags binds the command's flags to their config keys. Commands sharing a
// key bind just before they run so the executing command's flag wins.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for name, key := range keys {
		bindFlagToConfig(cmd.Flags().Lookup(name), key)
	}
}
