package cmd

import (
	"arbor.dev/pkg/arbor/internal/controller"
	"arbor.dev/pkg/arbor/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var viewLocationsFlag bool

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <journal>",
		Short: "View the results of a previous run",
		Long:  "Load a result journal written by 'arbor run --journal' and print its summary.",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd, map[string]string{locationsFlagName: locationsConfigKey})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := reportStore.LoadJournal(args[0])
			if err != nil {
				return wrapExit(1, "load journal", err)
			}

			summary := domain.Summarize(results)
			for _, result := range results {
				summary.Duration += result.Duration
			}

			printer := controller.NewSimplePrinter(cmd.OutOrStdout(),
				controller.WithSummaryLocation(viper.GetBool(locationsConfigKey)))

			printer.Summary(cmd.Context(), summary)

			return nil
		},
	}

	cmd.Flags().BoolVar(&viewLocationsFlag, locationsFlagName, viper.GetBool(locationsConfigKey), "add a per-test table with source locations")

	return cmd
}
