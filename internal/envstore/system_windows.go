//go:build windows

package envstore

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/VoxDroid/amcsetup/internal/config"
)

// MachineEnvironmentKey holds machine-wide environment variables under HKLM.
const MachineEnvironmentKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

// UserEnvironmentKey holds per-user environment variables under HKCU.
const UserEnvironmentKey = `Environment`

// Registry stores the value in the Windows registry.
type Registry struct {
	Root      registry.Key
	Path      string
	ValueName string
}

// NewRegistry returns the registry store for scope.
func NewRegistry(scope, valueName string) (*Registry, error) {
	switch scope {
	case config.ScopeMachine:
		return &Registry{Root: registry.LOCAL_MACHINE, Path: MachineEnvironmentKey, ValueName: valueName}, nil
	case config.ScopeUser:
		return &Registry{Root: registry.CURRENT_USER, Path: UserEnvironmentKey, ValueName: valueName}, nil
	}
	return nil, fmt.Errorf("unknown scope %q", scope)
}

func openSystem(scope, valueName string) (Store, error) {
	return NewRegistry(scope, valueName)
}

// Get implements Store. Both REG_SZ and REG_EXPAND_SZ are accepted and
// returned unexpanded.
func (r *Registry) Get() (string, error) {
	k, err := registry.OpenKey(r.Root, r.Path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", r.Describe(), err)
	}
	defer k.Close()
	v, _, err := k.GetStringValue(r.ValueName)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("read %s: %w", r.Describe(), err)
	}
	return v, nil
}

// Set implements Store with a single REG_EXPAND_SZ write.
func (r *Registry) Set(value string) error {
	k, err := registry.OpenKey(r.Root, r.Path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open %s for write: %w", r.Describe(), err)
	}
	defer k.Close()
	if err := k.SetExpandStringValue(r.ValueName, value); err != nil {
		return fmt.Errorf("write %s: %w", r.Describe(), err)
	}
	return nil
}

// Describe implements Store.
func (r *Registry) Describe() string {
	root := "HKCU"
	if r.Root == registry.LOCAL_MACHINE {
		root = "HKLM"
	}
	return root + `\` + r.Path + `\` + r.ValueName
}
