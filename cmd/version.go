package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "amcsetup %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
