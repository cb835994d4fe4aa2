package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/VoxDroid/amcsetup/internal/config"
)

const testDir = `C:\Program Files\ArduPilot Methodic Configurator`

// sandbox points the data directory at a temp dir and returns the path of a
// PATH file seeded with initial.
func sandbox(t *testing.T, initial string) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv(config.EnvHome, filepath.Join(tmp, "home"))
	t.Setenv(config.EnvDB, "")
	store := filepath.Join(tmp, "PATH")
	if err := os.WriteFile(store, []byte(initial), 0o644); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func readStore(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	return string(b)
}
