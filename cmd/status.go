package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <install-dir>",
	Short: "Show whether the install directory is on PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cleanup, err := openManager()
		if err != nil {
			return err
		}
		defer cleanup()

		st, err := m.Status(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "amcsetup status for %s:\n", st.Dir)
		fmt.Fprintf(out, "- Store: %s (scope %s)\n", st.Store, settings.Scope)
		if st.ReadErr != nil {
			fmt.Fprintf(out, "- PATH: unreadable (%v)\n", st.ReadErr)
		}
		fmt.Fprintf(out, "- On PATH: %v", st.OnPath)
		if st.Occurrences > 1 {
			fmt.Fprintf(out, " (%d entries)", st.Occurrences)
		}
		fmt.Fprintln(out)
		if st.PendingSnapshot {
			fmt.Fprintln(out, "- Uninstall snapshot: pending")
		} else {
			fmt.Fprintln(out, "- Uninstall snapshot: none")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
