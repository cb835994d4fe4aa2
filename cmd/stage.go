package cmd

import (
	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/stage"
)

var stageCmd = &cobra.Command{
	Use:   "stage-templates <install-dir>",
	Short: "Copy vehicle templates into the shared data directory",
	Long: "Copy the vehicle templates shipped in the install directory into the directory the configurator " +
		"reads them from. Existing files are kept unless --overwrite is given.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dry, _ := cmd.Flags().GetBool("dry-run")
		if cmd.Flags().Changed("dest") {
			settings.Templates.Dest, _ = cmd.Flags().GetString("dest")
		}
		if cmd.Flags().Changed("overwrite") {
			settings.Templates.Overwrite, _ = cmd.Flags().GetBool("overwrite")
		}
		if dry {
			res, err := stage.Plan(templateOptions(args[0]))
			if err != nil {
				return err
			}
			printActions(cmd.OutOrStdout(), "Planned template staging:", res.Actions)
			return nil
		}
		return stageTemplates(cmd, args[0])
	},
}

func init() {
	stageCmd.Flags().BoolP("dry-run", "n", false, "Show actions but do not perform them")
	stageCmd.Flags().String("dest", "", "Destination directory (default: the configurator's data directory)")
	stageCmd.Flags().Bool("overwrite", false, "Replace templates that already exist in the destination")
	rootCmd.AddCommand(stageCmd)
}
