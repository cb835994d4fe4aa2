package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/install"
)

var checkCmd = &cobra.Command{
	Use:   "check <install-dir>",
	Short: "Print true when the install directory still needs a PATH entry",
	Long: "Print true when the install directory is missing from the persisted PATH, false otherwise. " +
		"Installers use this as the condition for the PATH step.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := install.ValidateDir(args[0]); err != nil {
			return err
		}
		m, cleanup, err := openManager()
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintln(cmd.OutOrStdout(), m.NeedsPathEntry(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
