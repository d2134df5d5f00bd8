package cmd

import (
	"fmt"
	"os"
	"strconv"

	"arbor.dev/pkg/arbor/internal/adapter"
	"arbor.dev/pkg/arbor/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listFilterFlag []string

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tests that run would schedule",
		Long: `List every test of the registered tree in declaration order with its
resolved focus state, whether it runs sequenced, and whether it would be skipped.`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd, map[string]string{filterFlagName: filterConfigKey})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := viper.GetStringSlice(filterConfigKey)

			runner := domain.NewRunner(nil, domain.WithFilter(filter))

			flat, err := runner.List(registeredTree)
			if err != nil {
				return wrapExit(1, "list tests", err)
			}

			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve working directory: %w", err)
			}

			locate := adapter.RelativeLocator(wd)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Test", "Focus", "Sequenced", "Skip", "Location"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetAutoWrapText(false)

			for _, leaf := range domain.Wrap(flat) {
				reason, skipped := leaf.Focus.SkipReason()
				if !skipped {
					reason = "-"
				}

				table.Append([]string{
					leaf.Name,
					leaf.State.String(),
					strconv.FormatBool(leaf.Sequenced),
					reason,
					locate(leaf.Code).String(),
				})
			}

			table.SetFooter([]string{"Total", strconv.Itoa(len(flat)), "", "", ""})
			table.Render()

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&listFilterFlag, filterFlagName, "f", viper.GetStringSlice(filterConfigKey), "only list tests matching the glob (can be repeated)")

	return cmd
}
