package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/config"
	"github.com/VoxDroid/amcsetup/internal/launch"
	"github.com/VoxDroid/amcsetup/internal/logging"
	"github.com/VoxDroid/amcsetup/internal/stage"
)

var installCmd = &cobra.Command{
	Use:   "install <install-dir>",
	Short: "Add the install directory to PATH",
	Long: "Add the configurator's install directory to the persisted PATH if it is " +
		"not already there and broadcast the change. Use --dry-run to preview actions.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		dry, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")
		withTemplates, _ := cmd.Flags().GetBool("templates")
		start, _ := cmd.Flags().GetBool("launch")
		out := cmd.OutOrStdout()

		m, cleanup, err := openManager()
		if err != nil {
			return err
		}
		defer cleanup()

		actions, err := m.PlanInstall(dir)
		if err != nil {
			return err
		}
		printActions(out, fmt.Sprintf("Planned actions for install of %s:", dir), actions)
		if withTemplates {
			res, err := stage.Plan(templateOptions(dir))
			if err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			} else {
				printActions(out, "Planned template staging:", res.Actions)
			}
		}
		if dry {
			return nil
		}
		if !yes && !confirm(cmd, "Proceed?") {
			fmt.Fprintln(out, "aborted")
			return nil
		}

		r, err := m.AddPathEntry(cmd.Context(), dir)
		if err != nil {
			return err
		}
		printReport(out, r)

		if withTemplates {
			if err := stageTemplates(cmd, dir); err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
		}
		if start {
			if err := startApp(cmd, dir); err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
		}
		fmt.Fprintln(out, "install completed")
		return nil
	},
}

func templateOptions(installDir string) stage.Options {
	src := settings.Templates.Source
	if !filepath.IsAbs(src) {
		src = filepath.Join(installDir, src)
	}
	dst := settings.Templates.Dest
	if dst == "" {
		dst = config.TemplatesDir()
	}
	logger := logging.GetLogger("stage")
	return stage.Options{Source: src, Dest: dst, Overwrite: settings.Templates.Overwrite, Logger: &logger}
}

func stageTemplates(cmd *cobra.Command, installDir string) error {
	opts := templateOptions(installDir)
	res, err := stage.Templates(opts)
	if err != nil {
		return err
	}
	leaves, err := stage.LeafDirs(opts.Source)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Staged %d vehicle template(s) into %s (%d files copied, %d kept)\n",
		len(leaves), opts.Dest, res.Copied, res.Skipped)
	return nil
}

func launchOptions(installDir string) launch.Options {
	exe := settings.App.Executable
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(installDir, exe)
	}
	return launch.Options{
		Executable: exe,
		Language:   launch.DetectLanguage(settings.App.Language, nil),
		Device:     settings.App.Device,
		ExtraArgs:  settings.App.ExtraArgs,
	}
}

func startApp(cmd *cobra.Command, installDir string) error {
	opts := launchOptions(installDir)
	pid, err := launch.Start(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started %s (pid %d)\n", filepath.Base(opts.Executable), pid)
	return nil
}

func init() {
	installCmd.Flags().BoolP("dry-run", "n", false, "Show actions but do not perform them")
	installCmd.Flags().Bool("yes", false, "Assume yes for prompts")
	installCmd.Flags().Bool("templates", false, "Also stage vehicle templates")
	installCmd.Flags().Bool("launch", false, "Start the configurator when done")
	rootCmd.AddCommand(installCmd)
}
