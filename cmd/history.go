package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent PATH operations",
	Long:  "Show recent PATH operations recorded by install and uninstall runs (time, operation, outcome, directory)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		showPath, _ := cmd.Flags().GetBool("path")
		j, err := journal.OpenDefault()
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		events, err := j.List(limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "no history")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", humanize.Time(e.CreatedAt), e.Op, e.Outcome, e.Scope, e.InstallDir)
			if e.Error != "" {
				fmt.Fprintf(out, "\terror: %s\n", e.Error)
			}
			if showPath && e.PathBefore != e.PathAfter {
				fmt.Fprintf(out, "\tbefore: %s\n\tafter:  %s\n", e.PathBefore, e.PathAfter)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of entries to show (0 for all)")
	historyCmd.Flags().Bool("path", false, "Show PATH values before and after each change")
	rootCmd.AddCommand(historyCmd)
}
