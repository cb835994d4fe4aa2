// Package envstore reads and writes the persisted PATH value.
package envstore

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/VoxDroid/amcsetup/internal/config"
	"github.com/VoxDroid/amcsetup/internal/fsutil"
)

// ErrNotExist is returned by Get when the value has never been written.
var ErrNotExist = errors.New("environment value does not exist")

// Store is the persistent home of one environment value.
type Store interface {
	Get() (string, error)
	Set(value string) error
	// Describe names the backing location for logs and plans.
	Describe() string
}

// Memory is an in-process Store. ReadErr and WriteErr, when set, are
// returned instead of touching the value.
type Memory struct {
	mu       sync.Mutex
	value    string
	present  bool
	writes   int
	ReadErr  error
	WriteErr error
}

// NewMemory returns a Memory store holding value.
func NewMemory(value string) *Memory {
	return &Memory{value: value, present: true}
}

// Get implements Store.
func (m *Memory) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	if !m.present {
		return "", ErrNotExist
	}
	return m.value, nil
}

// Set implements Store.
func (m *Memory) Set(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.value = value
	m.present = true
	m.writes++
	return nil
}

// Describe implements Store.
func (m *Memory) Describe() string { return "memory" }

// Value returns the stored value regardless of injected errors.
func (m *Memory) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Writes counts successful Set calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// File keeps the value in a plain text file. It stands in for the registry
// on hosts without one and for sandboxed runs.
type File struct {
	Path string
}

// Get implements Store.
func (f File) Get() (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotExist
		}
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// Set implements Store. The value is written to a temp file in the same
// directory and renamed over the target.
func (f File) Set(value string) error {
	if err := fsutil.WriteFile(f.Path, strings.NewReader(value)); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// Describe implements Store.
func (f File) Describe() string { return "file " + f.Path }

// Open returns the Store selected by s: a File when store_file is set,
// otherwise the platform store for s.Scope.
func Open(s *config.Settings) (Store, error) {
	if s.StoreFile != "" {
		return File{Path: s.StoreFile}, nil
	}
	return openSystem(s.Scope, s.ValueName)
}
