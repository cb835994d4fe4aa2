package install

import (
	"errors"
	"fmt"

	"github.com/VoxDroid/amcsetup/internal/journal"
	"github.com/VoxDroid/amcsetup/internal/pathlist"
)

// PlanInstall returns a list of human-readable actions that AddPathEntry
// would perform for dir against the current stored value.
func (m *Manager) PlanInstall(dir string) ([]string, error) {
	if err := ValidateDir(dir); err != nil {
		return nil, err
	}
	var r Report
	cur := m.readPath(&r)
	actions := []string{fmt.Sprintf("Read PATH from %s", m.store.Describe())}
	if r.ReadErr != nil {
		actions = append(actions, fmt.Sprintf("PATH could not be read (%v); an empty value will be assumed", r.ReadErr))
	}
	if !pathlist.NeedsEntry(dir, cur) {
		actions = append(actions, fmt.Sprintf("No-op: %s is already on PATH", dir))
		return actions, nil
	}
	actions = append(actions,
		fmt.Sprintf("Append %s to PATH", dir),
		fmt.Sprintf("Write PATH back to %s", m.store.Describe()),
		fmt.Sprintf("Broadcast environment change (timeout %s per window)", m.notifyTimeout),
	)
	return actions, nil
}

// PlanUninstall returns a list of actions that FinishUninstall would perform.
func (m *Manager) PlanUninstall(dir string) ([]string, error) {
	if err := ValidateDir(dir); err != nil {
		return nil, err
	}
	actions := []string{}
	var cur string
	snap, err := m.loadSnapshot(dir)
	switch {
	case err == nil && snap.Present:
		cur = snap.Value
		actions = append(actions, fmt.Sprintf("Use PATH captured at %s (run %s)", snap.TakenAt.Format("2006-01-02 15:04:05"), snap.RunID))
	case err == nil || errors.Is(err, journal.ErrNoSnapshot):
		var r Report
		cur = m.readPath(&r)
		actions = append(actions, fmt.Sprintf("Read PATH from %s", m.store.Describe()))
	default:
		return nil, err
	}
	if pathlist.NeedsEntry(dir, cur) {
		actions = append(actions, fmt.Sprintf("No-op: %s is not on PATH", dir))
		return actions, nil
	}
	actions = append(actions,
		fmt.Sprintf("Remove %s from PATH", dir),
		fmt.Sprintf("Write PATH back to %s", m.store.Describe()),
		fmt.Sprintf("Broadcast environment change (timeout %s per window)", m.notifyTimeout),
	)
	return actions, nil
}

// Status describes where an install directory stands.
type Status struct {
	Dir             string
	Store           string
	OnPath          bool
	Occurrences     int
	PendingSnapshot bool
	ReadErr         error
}

// Status inspects the stored PATH and the journal for dir.
func (m *Manager) Status(dir string) (*Status, error) {
	if err := ValidateDir(dir); err != nil {
		return nil, err
	}
	var r Report
	cur := m.readPath(&r)
	st := &Status{
		Dir:         dir,
		Store:       m.store.Describe(),
		Occurrences: pathlist.Count(cur, dir),
		ReadErr:     r.ReadErr,
	}
	st.OnPath = st.Occurrences > 0
	if _, err := m.loadSnapshot(dir); err == nil {
		st.PendingSnapshot = true
	} else if !errors.Is(err, journal.ErrNoSnapshot) {
		return st, err
	}
	return st, nil
}
