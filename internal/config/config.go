// Package config resolves amcsetup data locations and layered settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore, e.g. AMCSETUP_APP__LANGUAGE=de.
const EnvPrefix = "AMCSETUP_"

// Scopes for the PATH value being managed.
const (
	ScopeMachine = "machine"
	ScopeUser    = "user"
)

// Settings holds everything the installer hooks can be configured with.
type Settings struct {
	Scope         string        `koanf:"scope"`
	ValueName     string        `koanf:"value_name"`
	StoreFile     string        `koanf:"store_file"`
	NotifyTimeout time.Duration `koanf:"notify_timeout"`
	App           App           `koanf:"app"`
	Templates     Templates     `koanf:"templates"`
}

// App describes the configurator executable started after install.
type App struct {
	Executable string `koanf:"executable"`
	Language   string `koanf:"language"`
	Device     string `koanf:"device"`
	ExtraArgs  string `koanf:"extra_args"`
}

// Templates describes where vehicle templates are staged from and to.
type Templates struct {
	Source    string `koanf:"source"`
	Dest      string `koanf:"dest"`
	Overwrite bool   `koanf:"overwrite"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"scope":               ScopeMachine,
		"value_name":          "Path",
		"store_file":          "",
		"notify_timeout":      "5s",
		"app.executable":      "ardupilot_methodic_configurator.exe",
		"app.language":        "",
		"app.device":          "",
		"app.extra_args":      "",
		"templates.source":    "vehicle_templates",
		"templates.dest":      "",
		"templates.overwrite": false,
	}
}

// ConfigFile returns the config file to load: explicit wins, otherwise the
// XDG config location if such a file exists. Empty means defaults only.
func ConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p, err := xdg.SearchConfigFile("amcsetup/config.toml"); err == nil {
		return p
	}
	return ""
}

// Load layers defaults, the TOML file at path (if any) and AMCSETUP_*
// environment variables, then validates the result.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	envKey := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that cannot be defaulted sensibly.
func (s *Settings) Validate() error {
	s.Scope = strings.ToLower(strings.TrimSpace(s.Scope))
	switch s.Scope {
	case ScopeMachine, ScopeUser:
	default:
		return fmt.Errorf("invalid scope %q: want %q or %q", s.Scope, ScopeMachine, ScopeUser)
	}
	if s.ValueName == "" {
		return fmt.Errorf("value_name must not be empty")
	}
	if s.NotifyTimeout < 0 {
		return fmt.Errorf("notify_timeout must not be negative")
	}
	return nil
}
