package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// EnvHome overrides the data directory.
	EnvHome = "AMCSETUP_HOME"
	// EnvDB overrides the journal database path.
	EnvDB = "AMCSETUP_DB"
)

// DataDir returns the directory used to store amcsetup data (journal and log).
func DataDir() (string, error) {
	if v := os.Getenv(EnvHome); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".amcsetup"), nil
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return d, nil
}

// DBPath returns the full path to the SQLite journal.
func DBPath() (string, error) {
	if v := os.Getenv(EnvDB); v != "" {
		return v, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "journal.db"), nil
}

// LogPath returns the log file written next to the journal.
func LogPath() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "amcsetup.log"), nil
}

// TemplatesDir returns the shared directory the configurator reads vehicle
// templates from.
func TemplatesDir() string {
	return filepath.Join(xdg.DataHome, ".ardupilot_methodic_configurator", "vehicle_templates")
}
