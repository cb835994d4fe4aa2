package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/config"
	"github.com/VoxDroid/amcsetup/internal/logging"
)

var (
	cfgFile   string
	verbosity int
	scopeFlag string
	storeFile string
	noNotify  bool

	settings *config.Settings
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "amcsetup",
	Short: "amcsetup runs the install and uninstall steps of the Methodic Configurator installer",
	Long: "amcsetup keeps the configurator's install directory on the persisted PATH, " +
		"stages vehicle templates and starts the application after installation.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		s, err := config.Load(config.ConfigFile(cfgFile))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("scope") {
			s.Scope = scopeFlag
		}
		if storeFile != "" {
			s.StoreFile = storeFile
		}
		if err := s.Validate(); err != nil {
			return err
		}
		settings = s

		logFile := ""
		if _, err := config.EnsureDataDir(); err == nil {
			logFile, _ = config.LogPath()
		}
		closeLog = logging.SetupLogger(verbosity, logFile)
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "amcsetup: run 'amcsetup --help' to see available commands")
	},
}

// finishLogging closes the log file. It runs as a cobra finalizer so failing
// commands close it too.
func finishLogging() {
	closeLog()
	closeLog = func() {}
}

func init() {
	cobra.OnFinalize(finishLogging)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/amcsetup/config.toml)")
	pf.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.StringVar(&scopeFlag, "scope", config.ScopeMachine, "PATH scope to manage: machine or user")
	pf.StringVar(&storeFile, "store-file", "", "Keep the PATH value in this file instead of the system store")
	pf.BoolVar(&noNotify, "no-notify", false, "Do not broadcast the environment change")
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
