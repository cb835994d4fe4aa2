// Package install keeps the application's install directory on the persisted
// PATH: added on install, removed on uninstall, with running processes told
// about each change.
//
// A run reads the stored value once, mutates it at most once and writes it
// back with a single write. Nothing guards the read-modify-write against
// other writers; installer steps are serialized by the host framework and
// nothing else is expected to edit PATH during that window.
package install

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/VoxDroid/amcsetup/internal/envstore"
	"github.com/VoxDroid/amcsetup/internal/journal"
	"github.com/VoxDroid/amcsetup/internal/notify"
	"github.com/VoxDroid/amcsetup/internal/pathlist"
)

// Journal is the subset of the journal the manager writes to.
type Journal interface {
	Record(e journal.Event) (int64, error)
	SaveSnapshot(s journal.Snapshot) error
	LoadSnapshot(dir string) (journal.Snapshot, error)
	DeleteSnapshot(dir string) error
}

// Options configures a Manager. Store is required.
type Options struct {
	Store         envstore.Store
	Notifier      notify.Notifier
	Journal       Journal
	Logger        *zerolog.Logger
	NotifyTimeout time.Duration
	Scope         string
	RunID         string
}

// Manager performs PATH membership updates for one installer invocation.
type Manager struct {
	store         envstore.Store
	notifier      notify.Notifier
	journal       Journal
	log           zerolog.Logger
	notifyTimeout time.Duration
	scope         string
	runID         string

	mu      sync.Mutex
	pending map[string]journal.Snapshot // used when no journal is configured
}

// New returns a Manager. A nil Notifier means no broadcast; a nil Journal
// keeps uninstall snapshots in memory for the life of the Manager.
func New(opts Options) *Manager {
	m := &Manager{
		store:         opts.Store,
		notifier:      opts.Notifier,
		journal:       opts.Journal,
		log:           zerolog.Nop(),
		notifyTimeout: opts.NotifyTimeout,
		scope:         opts.Scope,
		runID:         opts.RunID,
		pending:       map[string]journal.Snapshot{},
	}
	if opts.Logger != nil {
		m.log = *opts.Logger
	}
	if m.notifier == nil {
		m.notifier = notify.Noop{}
	}
	if m.notifyTimeout <= 0 {
		m.notifyTimeout = notify.DefaultTimeout
	}
	if m.runID == "" {
		m.runID = uuid.NewString()
	}
	return m
}

// RunID identifies this invocation in logs and the journal.
func (m *Manager) RunID() string { return m.runID }

var windowsAbs = regexp.MustCompile(`^([A-Za-z]:[\\/]|\\\\[^\\]+\\[^\\]+)`)

// ValidateDir rejects values that cannot be a PATH segment for an install
// directory.
func ValidateDir(dir string) error {
	switch {
	case strings.TrimSpace(dir) == "":
		return fmt.Errorf("install directory must not be empty")
	case !utf8.ValidString(dir):
		return fmt.Errorf("install directory contains invalid encoding")
	case strings.IndexFunc(dir, unicode.IsControl) >= 0:
		return fmt.Errorf("install directory %q contains a control character", dir)
	case strings.Contains(dir, pathlist.ListSeparator):
		return fmt.Errorf("install directory %q must not contain %q", dir, pathlist.ListSeparator)
	case !windowsAbs.MatchString(dir) && !strings.HasPrefix(dir, "/"):
		return fmt.Errorf("install directory %q must be an absolute path", dir)
	}
	return nil
}

// NeedsPathEntry reports whether dir is missing from the stored PATH. A read
// failure counts as an empty PATH.
func (m *Manager) NeedsPathEntry(dir string) bool {
	var r Report
	return pathlist.NeedsEntry(dir, m.readPath(&r))
}

// AddPathEntry appends dir to the stored PATH unless it is already present,
// then broadcasts the change. Failures are logged and reported on the
// Report; the returned error is only for invalid input or cancellation.
func (m *Manager) AddPathEntry(ctx context.Context, dir string) (Report, error) {
	r := m.newReport(OpAdd, dir)
	if err := m.begin(ctx, dir); err != nil {
		return r, err
	}
	m.dropPendingSnapshot(dir)
	r.step(PhaseReadPath)
	cur := m.readPath(&r)
	r.Before = cur
	r.After = cur

	if !pathlist.NeedsEntry(dir, cur) {
		m.log.Info().Str("dir", dir).Msg("Install directory already on PATH")
		m.finish(ctx, &r, false)
		return r, nil
	}

	r.step(PhaseMutate)
	next := pathlist.Append(cur, dir)
	m.commit(ctx, &r, next)
	return r, nil
}

// RemovePathEntry removes dir from the stored PATH in one step. Removing an
// entry that is not present succeeds without writing.
func (m *Manager) RemovePathEntry(ctx context.Context, dir string) (Report, error) {
	r := m.newReport(OpRemove, dir)
	if err := m.begin(ctx, dir); err != nil {
		return r, err
	}
	r.step(PhaseReadPath)
	cur := m.readPath(&r)
	m.removeFrom(ctx, &r, cur)
	return r, nil
}

// BeginUninstall captures the stored PATH before any package files are
// removed. FinishUninstall later removes dir from this captured value.
func (m *Manager) BeginUninstall(ctx context.Context, dir string) (Report, error) {
	r := m.newReport(OpSnapshot, dir)
	if err := m.begin(ctx, dir); err != nil {
		return r, err
	}
	r.step(PhaseReadPath)
	cur, present := m.readStored(&r)
	r.Before = cur
	r.After = cur

	snap := journal.Snapshot{
		InstallDir: dir,
		Value:      cur,
		Present:    present,
		RunID:      m.runID,
		TakenAt:    time.Now(),
	}
	if err := m.saveSnapshot(snap); err != nil {
		m.log.Warn().Err(err).Str("dir", dir).Msg("Failed to store uninstall snapshot; finish will read PATH again")
		r.fail(err)
	} else {
		m.log.Info().Str("dir", dir).Bool("onPath", !pathlist.NeedsEntry(dir, cur)).Msg("Captured PATH for uninstall")
	}
	r.step(PhaseDone)
	m.record(r)
	return r, nil
}

// FinishUninstall removes dir from the PATH captured by BeginUninstall and
// persists the result. Without a usable snapshot (none taken, or PATH was
// absent or unreadable at begin) the current value is used.
func (m *Manager) FinishUninstall(ctx context.Context, dir string) (Report, error) {
	r := m.newReport(OpRemove, dir)
	if err := m.begin(ctx, dir); err != nil {
		return r, err
	}
	r.step(PhaseReadPath)
	var cur string
	snap, err := m.loadSnapshot(dir)
	switch {
	case err == nil && !snap.Present:
		m.log.Info().Str("dir", dir).Msg("PATH was not captured at uninstall start; reading PATH now")
		cur = m.readPath(&r)
	case err == nil:
		cur = snap.Value
		m.log.Debug().Str("dir", dir).Str("snapshotRun", snap.RunID).Msg("Using PATH captured at uninstall start")
	case errors.Is(err, journal.ErrNoSnapshot):
		m.log.Info().Str("dir", dir).Msg("No uninstall snapshot; reading PATH now")
		cur = m.readPath(&r)
	default:
		m.log.Warn().Err(err).Str("dir", dir).Msg("Failed to load uninstall snapshot; reading PATH now")
		cur = m.readPath(&r)
	}
	m.removeFrom(ctx, &r, cur)

	if err := m.deleteSnapshot(dir); err != nil {
		m.log.Warn().Err(err).Str("dir", dir).Msg("Failed to clear uninstall snapshot")
	}
	return r, nil
}

// Uninstall runs both uninstall phases back to back.
func (m *Manager) Uninstall(ctx context.Context, dir string) (Report, error) {
	if _, err := m.BeginUninstall(ctx, dir); err != nil {
		return Report{Op: OpRemove, Dir: dir, RunID: m.runID}, err
	}
	return m.FinishUninstall(ctx, dir)
}

func (m *Manager) newReport(op Op, dir string) Report {
	return Report{Op: op, Dir: dir, RunID: m.runID, Steps: []Phase{PhaseIdle}}
}

func (m *Manager) begin(ctx context.Context, dir string) error {
	if err := ValidateDir(dir); err != nil {
		return err
	}
	return ctx.Err()
}

// readPath returns the stored value, or "" when it is absent or unreadable.
func (m *Manager) readPath(r *Report) string {
	v, _ := m.readStored(r)
	return v
}

// readStored is readPath that also reports whether a value was actually read.
func (m *Manager) readStored(r *Report) (string, bool) {
	v, err := m.store.Get()
	if err == nil {
		return v, true
	}
	if errors.Is(err, envstore.ErrNotExist) {
		m.log.Info().Str("store", m.store.Describe()).Msg("PATH value not set; starting from empty")
		return "", false
	}
	r.ReadErr = fmt.Errorf("%w: %v", ErrReadFailure, err)
	m.log.Warn().Err(err).Str("store", m.store.Describe()).Msg("Failed to read PATH; treating as empty")
	return "", false
}

func (m *Manager) removeFrom(ctx context.Context, r *Report, cur string) {
	r.Before = cur
	r.After = cur
	r.step(PhaseMutate)
	next, ok := pathlist.Remove(cur, r.Dir)
	if !ok {
		r.NotFound = true
		m.log.Info().Str("dir", r.Dir).Msg("Install directory not on PATH; nothing to remove")
		m.finish(ctx, r, false)
		return
	}
	m.commit(ctx, r, next)
}

// commit persists next and broadcasts the change when the write succeeded.
func (m *Manager) commit(ctx context.Context, r *Report, next string) {
	r.step(PhasePersist)
	if err := m.store.Set(next); err != nil {
		r.fail(fmt.Errorf("%w: %v", ErrWriteFailure, err))
		m.log.Error().Err(err).Str("dir", r.Dir).Str("store", m.store.Describe()).Msg("Failed to write PATH")
		m.finish(ctx, r, false)
		return
	}
	r.After = next
	r.Changed = true
	m.log.Info().Str("dir", r.Dir).Str("op", string(r.Op)).Str("store", m.store.Describe()).Msg("PATH updated")
	m.log.Debug().Str("before", r.Before).Str("after", r.After).Msg("PATH value")
	m.finish(ctx, r, true)
}

// finish runs the notify phase when wanted and closes the report.
func (m *Manager) finish(ctx context.Context, r *Report, broadcast bool) {
	if broadcast {
		r.step(PhaseNotify)
		if err := m.notifier.Notify(ctx, m.notifyTimeout); err != nil {
			r.fail(fmt.Errorf("%w: %v", ErrNotifyFailure, err))
			m.log.Warn().Err(err).Msg("Environment change broadcast failed; new shells may need a re-login")
		} else {
			r.Notified = true
		}
	} else {
		r.step(PhaseSkipNotify)
	}
	r.step(PhaseDone)
	m.record(*r)
}

func (m *Manager) record(r Report) {
	if m.journal == nil {
		return
	}
	e := journal.Event{
		RunID:      r.RunID,
		Op:         string(r.Op),
		InstallDir: r.Dir,
		Scope:      m.scope,
		PathBefore: r.Before,
		PathAfter:  r.After,
		Outcome:    r.outcome(),
	}
	if r.Op == OpSnapshot && r.Err == nil {
		e.Outcome = journal.OutcomeSnapshot
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	if _, err := m.journal.Record(e); err != nil {
		m.log.Warn().Err(err).Msg("Failed to record PATH event")
	}
}

func (m *Manager) saveSnapshot(s journal.Snapshot) error {
	if m.journal != nil {
		return m.journal.SaveSnapshot(s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[strings.ToLower(s.InstallDir)] = s
	return nil
}

func (m *Manager) loadSnapshot(dir string) (journal.Snapshot, error) {
	if m.journal != nil {
		return m.journal.LoadSnapshot(dir)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.pending[strings.ToLower(dir)]
	if !ok {
		return journal.Snapshot{}, journal.ErrNoSnapshot
	}
	return s, nil
}

// dropPendingSnapshot discards a snapshot left by an uninstall that never
// finished, so a later finish cannot write back a stale PATH.
func (m *Manager) dropPendingSnapshot(dir string) {
	snap, err := m.loadSnapshot(dir)
	switch {
	case errors.Is(err, journal.ErrNoSnapshot):
		return
	case err != nil:
		m.log.Warn().Err(err).Str("dir", dir).Msg("Failed to check for a pending uninstall snapshot")
		return
	}
	m.log.Info().Str("dir", dir).Str("snapshotRun", snap.RunID).Time("takenAt", snap.TakenAt).Msg("Discarding unfinished uninstall snapshot")
	if err := m.deleteSnapshot(dir); err != nil {
		m.log.Warn().Err(err).Str("dir", dir).Msg("Failed to clear uninstall snapshot")
	}
}

func (m *Manager) deleteSnapshot(dir string) error {
	if m.journal != nil {
		return m.journal.DeleteSnapshot(dir)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, strings.ToLower(dir))
	return nil
}
