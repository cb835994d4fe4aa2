package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ScopeMachine, s.Scope)
	assert.Equal(t, "Path", s.ValueName)
	assert.Equal(t, 5*time.Second, s.NotifyTimeout)
	assert.Equal(t, "vehicle_templates", s.Templates.Source)
	assert.False(t, s.Templates.Overwrite)
}

func TestLoadFileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	content := `
scope = "user"
notify_timeout = "2s"

[app]
language = "de"
device = "COM3"

[templates]
dest = "C:\\ProgramData\\amc\\vehicle_templates"
overwrite = true
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	t.Setenv("AMCSETUP_APP__DEVICE", "COM7")

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ScopeUser, s.Scope)
	assert.Equal(t, 2*time.Second, s.NotifyTimeout)
	assert.Equal(t, "de", s.App.Language)
	assert.Equal(t, "COM7", s.App.Device)
	assert.Equal(t, `C:\ProgramData\amc\vehicle_templates`, s.Templates.Dest)
	assert.True(t, s.Templates.Overwrite)
}

func TestLoadRejectsBadScope(t *testing.T) {
	t.Setenv("AMCSETUP_SCOPE", "galaxy")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scope")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestConfigFileExplicitWins(t *testing.T) {
	assert.Equal(t, "x.toml", ConfigFile("x.toml"))
}
