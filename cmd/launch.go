package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/launch"
)

var launchCmd = &cobra.Command{
	Use:   "launch <install-dir>",
	Short: "Start the configurator",
	Long:  "Start the configurator from the install directory without waiting for it, passing --language and --device.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("language") {
			settings.App.Language, _ = cmd.Flags().GetString("language")
		}
		if cmd.Flags().Changed("device") {
			settings.App.Device, _ = cmd.Flags().GetString("device")
		}
		if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
			opts := launchOptions(args[0])
			argv, err := launch.Args(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(append([]string{opts.Executable}, argv...), " "))
			return nil
		}
		return startApp(cmd, args[0])
	},
}

func init() {
	launchCmd.Flags().String("language", "", "UI language (en, zh_CN, pt, de, it, ja); default from the locale")
	launchCmd.Flags().String("device", "", "Flight controller connection, e.g. COM3")
	launchCmd.Flags().Bool("print", false, "Print the command line instead of starting it")
	rootCmd.AddCommand(launchCmd)
}
