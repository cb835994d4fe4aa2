package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/install"
)

const (
	phaseBegin  = "begin"
	phaseFinish = "finish"
	phaseAll    = "all"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <install-dir>",
	Short: "Remove the install directory from PATH",
	Long: "Remove the configurator's install directory from the persisted PATH and broadcast the change.\n\n" +
		"Installers call --phase begin before removing package files and --phase finish after; " +
		"finish removes the entry from the PATH captured at begin. --phase all runs both.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		phase, _ := cmd.Flags().GetString("phase")
		dry, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")
		out := cmd.OutOrStdout()

		var run func(*install.Manager) (install.Report, error)
		switch phase {
		case phaseBegin:
			run = func(m *install.Manager) (install.Report, error) { return m.BeginUninstall(cmd.Context(), dir) }
		case phaseFinish:
			run = func(m *install.Manager) (install.Report, error) { return m.FinishUninstall(cmd.Context(), dir) }
		case phaseAll:
			run = func(m *install.Manager) (install.Report, error) { return m.Uninstall(cmd.Context(), dir) }
		default:
			return fmt.Errorf("unknown phase %q (want %s, %s or %s)", phase, phaseBegin, phaseFinish, phaseAll)
		}

		m, cleanup, err := openManager()
		if err != nil {
			return err
		}
		defer cleanup()

		if phase != phaseBegin {
			actions, err := m.PlanUninstall(dir)
			if err != nil {
				return err
			}
			printActions(out, fmt.Sprintf("Planned actions for uninstall of %s:", dir), actions)
		}
		if dry {
			return nil
		}
		if phase != phaseBegin && !yes && !confirm(cmd, "Proceed?") {
			fmt.Fprintln(out, "aborted")
			return nil
		}

		r, err := run(m)
		if err != nil {
			return err
		}
		printReport(out, r)
		return nil
	},
}

func init() {
	uninstallCmd.Flags().String("phase", phaseAll, "Uninstall phase: begin, finish or all")
	uninstallCmd.Flags().BoolP("dry-run", "n", false, "Show actions but do not perform them")
	uninstallCmd.Flags().Bool("yes", false, "Assume yes for prompts")
	rootCmd.AddCommand(uninstallCmd)
}
