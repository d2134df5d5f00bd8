package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"arbor.dev/pkg/arbor/internal/adapter"
	"arbor.dev/pkg/arbor/internal/controller"
	"arbor.dev/pkg/arbor/internal/domain"
	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	sequencedFlag       bool
	workersFlag         int
	timeoutFlag         string
	failOnFocusedFlag   bool
	allowDuplicatesFlag bool
	filterFlag          []string
	tuiFlag             string
	verboseFlag         bool
	locationsFlag       bool
	reportFlag          string
	journalFlag         string
)

// runFlagKeys maps run flags to their config keys.
var runFlagKeys = map[string]string{
	sequencedFlagName:     sequencedConfigKey,
	workersFlagName:       workersConfigKey,
	timeoutFlagName:       timeoutConfigKey,
	failOnFocusedFlagName: failOnFocusedConfigKey,
	allowDuplicatesName:   allowDuplicatesConfigKey,
	filterFlagName:        filterConfigKey,
	reportFlagName:        reportConfigKey,
	journalFlagName:       journalConfigKey,
	tuiFlagName:           tuiConfigKey,
	verboseFlagName:       verboseConfigKey,
	locationsFlagName:     locationsConfigKey,
}

// stdoutIsTTY is replaced in tests.
var stdoutIsTTY = func() bool { return controller.IsTTY(os.Stdout) }

const runLongDescription = `Run the registered test tree.

The exit code is 0 when every test passed or was ignored. Bit 0 is set when a
test failed and bit 1 when a test raised an error. A run rejected before
execution (duplicate names, focused tests with --fail-on-focused) exits 1.`

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the test tree",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd, runFlagKeys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := runOptions()
			if err != nil {
				return wrapExit(m.StatusFailed, "invalid configuration", err)
			}

			printer := newRunPrinter(cmd.OutOrStdout())
			if stopper, ok := printer.(interface{ Stop() }); ok {
				defer stopper.Stop()
			}

			runner := domain.NewRunner(controller.NewLoggingPrinter(printer, slog.Default()), options...)

			summary, status, err := runner.Evaluate(cmd.Context(), registeredTree)
			if err != nil {
				return wrapExit(status, "run rejected", err)
			}

			if err := saveReports(summary); err != nil {
				return wrapExit(m.StatusErrored, "save reports", err)
			}

			if status != m.StatusSuccess {
				return &ExitError{code: status}
			}

			return nil
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func configureRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolVar(&sequencedFlag, sequencedFlagName, viper.GetBool(sequencedConfigKey), "run every test sequentially")
	flags.IntVarP(&workersFlag, workersFlagName, "w", viper.GetInt(workersConfigKey), "maximum concurrently running tests (0 = number of CPUs)")
	flags.StringVar(&timeoutFlag, timeoutFlagName, viper.GetString(timeoutConfigKey), "per-test time limit, e.g. 30s (0 disables)")
	flags.BoolVar(&failOnFocusedFlag, failOnFocusedFlagName, viper.GetBool(failOnFocusedConfigKey), "fail before running if any test is focused")
	flags.BoolVar(&allowDuplicatesFlag, allowDuplicatesName, viper.GetBool(allowDuplicatesConfigKey), "allow two tests with the same name")
	flags.StringArrayVarP(&filterFlag, filterFlagName, "f", viper.GetStringSlice(filterConfigKey), "only run tests matching the glob (can be repeated)")

	addOutputFlags(cmd)

	flags.StringVar(&reportFlag, reportFlagName, viper.GetString(reportConfigKey), "write a YAML summary report to this file")
	flags.StringVar(&journalFlag, journalFlagName, viper.GetString(journalConfigKey), "write a result journal to this file, readable with 'arbor view'")
}

func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&tuiFlag, tuiFlagName, viper.GetString(tuiConfigKey), "live progress view: auto, always or never")
	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(verboseConfigKey), "report every test, not only failures")
	flags.BoolVar(&locationsFlag, locationsFlagName, viper.GetBool(locationsConfigKey), "add a per-test table with source locations to the summary")
}

func runOptions() ([]domain.Option, error) {
	timeout, err := parseTimeout(viper.GetString(timeoutConfigKey))
	if err != nil {
		return nil, err
	}

	if timeout < 0 {
		return nil, fmt.Errorf("%s must not be negative", timeoutConfigKey)
	}

	workers := viper.GetInt(workersConfigKey)
	if workers < 0 {
		return nil, fmt.Errorf("%s must not be negative", workersConfigKey)
	}

	filter := viper.GetStringSlice(filterConfigKey)
	if _, err := domain.MatchNames(filter); err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	return []domain.Option{
		domain.WithParallel(!viper.GetBool(sequencedConfigKey)),
		domain.WithWorkers(workers),
		domain.WithTestTimeout(timeout),
		domain.WithFailOnFocusedTests(viper.GetBool(failOnFocusedConfigKey)),
		domain.WithAllowDuplicateNames(viper.GetBool(allowDuplicatesConfigKey)),
		domain.WithFilter(filter),
		domain.WithLocator(adapter.RelativeLocator(wd)),
	}, nil
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", timeoutConfigKey, raw, err)
	}

	return timeout, nil
}

func newRunPrinter(out io.Writer) controller.Printer {
	tty := false
	if out == io.Writer(os.Stdout) {
		tty = stdoutIsTTY()
	}

	return controller.NewPrinter(out, useTUI(viper.GetString(tuiConfigKey), tty),
		controller.WithVerbose(viper.GetBool(verboseConfigKey)),
		controller.WithSummaryLocation(viper.GetBool(locationsConfigKey)),
	)
}

func saveReports(summary m.TestResultSummary) error {
	if path := viper.GetString(reportConfigKey); path != "" {
		if err := reportStore.SaveSummary(path, summary); err != nil {
			return err
		}
	}

	if path := viper.GetString(journalConfigKey); path != "" {
		results := make([]m.TestRunResult, 0, summary.Total())
		for _, bucket := range [][]m.TestRunResult{summary.Passed, summary.Ignored, summary.Failed, summary.Errored} {
			results = append(results, bucket...)
		}

		if err := reportStore.SaveJournal(path, results); err != nil {
			return err
		}
	}

	return nil
}
