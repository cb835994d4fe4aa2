package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/amcsetup/internal/envstore"
	"github.com/VoxDroid/amcsetup/internal/install"
	"github.com/VoxDroid/amcsetup/internal/journal"
	"github.com/VoxDroid/amcsetup/internal/logging"
	"github.com/VoxDroid/amcsetup/internal/notify"
	"github.com/VoxDroid/amcsetup/internal/utils"
)

// openManager builds the PATH manager for the current settings. The journal
// is optional: without it two-phase uninstall falls back to a live read.
func openManager() (*install.Manager, func(), error) {
	store, err := envstore.Open(settings)
	if err != nil {
		return nil, nil, err
	}
	var notifier notify.Notifier = notify.New()
	if noNotify {
		notifier = notify.Noop{}
	}
	logger := logging.GetLogger("install")
	opts := install.Options{
		Store:         store,
		Notifier:      notifier,
		Logger:        &logger,
		NotifyTimeout: settings.NotifyTimeout,
		Scope:         settings.Scope,
	}
	cleanup := func() {}
	j, err := journal.OpenDefault()
	if err != nil {
		log.Warn().Err(err).Msg("Journal unavailable; uninstall snapshots will not survive this process")
	} else {
		opts.Journal = j
		cleanup = func() { _ = j.Close() }
	}
	m := install.New(opts)
	log.Debug().Str("runID", m.RunID()).Str("store", store.Describe()).Str("scope", settings.Scope).Msg("Installer step started")
	return m, cleanup, nil
}

func confirm(cmd *cobra.Command, msg string) bool {
	return utils.Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), msg)
}

func printActions(out io.Writer, header string, actions []string) {
	fmt.Fprintln(out, header)
	for _, a := range actions {
		fmt.Fprintf(out, "- %s\n", a)
	}
}

// printReport prints the outcome of a PATH operation. Write and notify
// failures are shown but do not fail the command.
func printReport(out io.Writer, r install.Report) {
	switch {
	case r.Op == install.OpSnapshot:
		fmt.Fprintf(out, "Captured PATH for uninstall of %s\n", r.Dir)
	case r.Info() != nil:
		fmt.Fprintf(out, "%v; nothing to remove\n", r.Info())
	case r.Changed && r.Op == install.OpAdd:
		fmt.Fprintf(out, "Added %s to PATH\n", r.Dir)
	case r.Changed:
		fmt.Fprintf(out, "Removed %s from PATH\n", r.Dir)
	case r.Err == nil:
		fmt.Fprintf(out, "%s is already on PATH\n", r.Dir)
	}
	if r.ReadErr != nil {
		fmt.Fprintf(out, "warning: %v (assumed empty)\n", r.ReadErr)
	}
	if r.Err != nil {
		fmt.Fprintf(out, "warning: %v\n", r.Err)
	}
}
