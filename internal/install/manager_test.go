package install

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/amcsetup/internal/envstore"
	"github.com/VoxDroid/amcsetup/internal/journal"
	"github.com/VoxDroid/amcsetup/internal/notify"
)

const appDir = `C:\Program Files\ArduPilot Methodic Configurator`

type recorder struct {
	calls    int
	timeouts []time.Duration
	err      error
}

func (r *recorder) notifier() notify.Notifier {
	return notify.Func(func(_ context.Context, timeout time.Duration) error {
		r.calls++
		r.timeouts = append(r.timeouts, timeout)
		return r.err
	})
}

func newTestManager(t *testing.T, store envstore.Store, rec *recorder, j Journal) *Manager {
	t.Helper()
	return New(Options{
		Store:         store,
		Notifier:      rec.notifier(),
		Journal:       j,
		NotifyTimeout: 2 * time.Second,
		Scope:         "machine",
		RunID:         "test-run",
	})
}

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAddPathEntryAppends(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows;C:\Tools`)
	rec := &recorder{}
	m := newTestManager(t, store, rec, nil)

	r, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.True(t, r.Changed)
	assert.True(t, r.Notified)
	assert.Equal(t, `C:\Windows;C:\Tools;C:\App`, store.Value())
	assert.Equal(t, "idle>read-path>mutate>persist>notify>done", r.Trace())
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.timeouts)
}

func TestAddPathEntryTwiceKeepsOneEntry(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows`)
	rec := &recorder{}
	m := newTestManager(t, store, rec, nil)

	_, err := m.AddPathEntry(context.Background(), appDir)
	require.NoError(t, err)
	r, err := m.AddPathEntry(context.Background(), appDir)
	require.NoError(t, err)

	assert.False(t, r.Changed)
	assert.Equal(t, "idle>read-path>skip-notify>done", r.Trace())
	assert.Equal(t, `C:\Windows;`+appDir, store.Value())
	assert.Equal(t, 1, store.Writes())
	assert.Equal(t, 1, rec.calls)
}

func TestAddPathEntryCaseInsensitive(t *testing.T) {
	store := envstore.NewMemory(`C:\App;C:\Tools`)
	m := newTestManager(t, store, &recorder{}, nil)

	assert.False(t, m.NeedsPathEntry(`c:\app`))
	r, err := m.AddPathEntry(context.Background(), `c:\app`)
	require.NoError(t, err)
	assert.False(t, r.Changed)
	assert.Zero(t, store.Writes())
}

func TestAddPathEntryReadFailureUsesEmptyBaseline(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows`)
	store.ReadErr = errors.New("access denied")
	m := newTestManager(t, store, &recorder{}, nil)

	r, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.ErrorIs(t, r.ReadErr, ErrReadFailure)
	assert.True(t, r.OK())
	assert.Equal(t, `C:\App`, store.Value())
}

func TestAddPathEntryAbsentValue(t *testing.T) {
	store := &envstore.Memory{}
	m := newTestManager(t, store, &recorder{}, nil)

	r, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.NoError(t, r.ReadErr)
	assert.Equal(t, `C:\App`, store.Value())
}

func TestAddPathEntryWriteFailureIsNotFatal(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows`)
	store.WriteErr = errors.New("registry write rejected")
	rec := &recorder{}
	m := newTestManager(t, store, rec, nil)

	r, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Err, ErrWriteFailure)
	assert.False(t, r.Changed)
	assert.Equal(t, `C:\Windows`, r.After)
	assert.Equal(t, "idle>read-path>mutate>persist>skip-notify>done", r.Trace())
	assert.Zero(t, rec.calls)
}

func TestNotifyFailureIsNotFatal(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows`)
	rec := &recorder{err: errors.New("user32 unavailable")}
	m := newTestManager(t, store, rec, nil)

	r, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.False(t, r.Notified)
	assert.ErrorIs(t, r.Err, ErrNotifyFailure)
	assert.Equal(t, `C:\Windows;C:\App`, store.Value())
}

func TestRemovePathEntry(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows;C:\Tools;C:\App`)
	rec := &recorder{}
	m := newTestManager(t, store, rec, nil)

	r, err := m.RemovePathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, `C:\Windows;C:\Tools`, store.Value())
	assert.Equal(t, 1, rec.calls)
}

func TestRemovePathEntryAbsentIsSuccess(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows;C:\Tools`)
	rec := &recorder{}
	m := newTestManager(t, store, rec, nil)

	r, err := m.RemovePathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.True(t, r.NotFound)
	assert.ErrorIs(t, r.Info(), ErrNotFound)
	assert.NoError(t, r.Err)
	assert.False(t, r.Changed)
	assert.Equal(t, `C:\Windows;C:\Tools`, store.Value())
	assert.Zero(t, store.Writes())
	assert.Zero(t, rec.calls)
}

func TestRemovePathEntryWriteFailureIsNotFatal(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows;C:\App`)
	store.WriteErr = errors.New("denied")
	m := newTestManager(t, store, &recorder{}, nil)

	r, err := m.RemovePathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Err, ErrWriteFailure)
	assert.Equal(t, `C:\Windows;C:\App`, store.Value())
}

func TestAddRemoveRoundTrip(t *testing.T) {
	const orig = `C:\Windows;C:\Tools`
	store := envstore.NewMemory(orig)
	m := newTestManager(t, store, &recorder{}, nil)

	_, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	_, err = m.RemovePathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.Equal(t, orig, store.Value())
}

func TestTwoPhaseUninstallUsesSnapshot(t *testing.T) {
	j := openJournal(t)
	store := envstore.NewMemory(`C:\Windows;C:\App;C:\Tools`)
	rec := &recorder{}

	begin := newTestManager(t, store, rec, j)
	r, err := begin.BeginUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.OK())

	// package removal happens between the phases and may touch the value
	require.NoError(t, store.Set(`C:\Windows;C:\App;C:\Tools;C:\Leftover`))

	finish := New(Options{Store: store, Notifier: rec.notifier(), Journal: j, RunID: "second-run"})
	r, err = finish.FinishUninstall(context.Background(), `c:\app`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, `C:\Windows;C:\Tools`, store.Value())

	_, err = j.LoadSnapshot(`C:\App`)
	assert.ErrorIs(t, err, journal.ErrNoSnapshot)

	events, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "remove", events[0].Op)
	assert.Equal(t, journal.OutcomeChanged, events[0].Outcome)
	assert.Equal(t, "snapshot", events[1].Op)
	assert.Equal(t, journal.OutcomeSnapshot, events[1].Outcome)
}

func TestFinishUninstallAfterUnreadableBeginReadsLive(t *testing.T) {
	j := openJournal(t)
	store := envstore.NewMemory(`C:\Windows;C:\App`)
	store.ReadErr = errors.New("access denied")
	m := newTestManager(t, store, &recorder{}, j)

	r, err := m.BeginUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	require.Error(t, r.ReadErr)
	snap, err := j.LoadSnapshot(`C:\App`)
	require.NoError(t, err)
	assert.False(t, snap.Present)

	store.ReadErr = nil
	r, err = m.FinishUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.False(t, r.NotFound)
	assert.Equal(t, `C:\Windows`, store.Value())
}

func TestBeginUninstallAbsentValueIsNotPresent(t *testing.T) {
	j := openJournal(t)
	store := envstore.NewMemory("")
	require.NoError(t, store.Set(`C:\Windows`))
	m := newTestManager(t, &absentStore{store}, &recorder{}, j)

	_, err := m.BeginUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	snap, err := j.LoadSnapshot(`C:\App`)
	require.NoError(t, err)
	assert.False(t, snap.Present)
}

func TestReinstallDiscardsUnfinishedSnapshot(t *testing.T) {
	j := openJournal(t)
	store := envstore.NewMemory(`C:\Windows;C:\App`)
	m := newTestManager(t, store, &recorder{}, j)

	_, err := m.BeginUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)

	_, err = m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)
	_, err = j.LoadSnapshot(`C:\App`)
	assert.ErrorIs(t, err, journal.ErrNoSnapshot)

	require.NoError(t, store.Set(`C:\Windows;C:\App;C:\Python;C:\Git`))
	r, err := m.FinishUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, `C:\Windows;C:\Python;C:\Git`, store.Value())
}

func TestReinstallDiscardsInMemorySnapshot(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows;C:\App`)
	m := newTestManager(t, store, &recorder{}, nil)

	_, err := m.BeginUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	_, err = m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)

	st, err := m.Status(`C:\App`)
	require.NoError(t, err)
	assert.False(t, st.PendingSnapshot)
}

func TestFinishUninstallWithoutSnapshotReadsLive(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows;C:\App`)
	m := newTestManager(t, store, &recorder{}, openJournal(t))

	r, err := m.FinishUninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, `C:\Windows`, store.Value())
}

func TestUninstallInMemorySnapshot(t *testing.T) {
	store := envstore.NewMemory(`C:\App\;C:\Windows`)
	m := newTestManager(t, store, &recorder{}, nil)

	r, err := m.Uninstall(context.Background(), `C:\App`)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, `C:\Windows`, store.Value())

	st, err := m.Status(`C:\App`)
	require.NoError(t, err)
	assert.False(t, st.PendingSnapshot)
	assert.False(t, st.OnPath)
}

func TestInvalidDirectory(t *testing.T) {
	m := newTestManager(t, envstore.NewMemory(""), &recorder{}, nil)
	for _, dir := range []string{"", "   ", `relative\dir`, `C:\A;C:\B`, "C:\\App\n", "C:\\\xff"} {
		_, err := m.AddPathEntry(context.Background(), dir)
		assert.Error(t, err, "dir %q", dir)
	}
	assert.NoError(t, ValidateDir(`\\server\share\app`))
	assert.NoError(t, ValidateDir(`D:/tools`))
	assert.NoError(t, ValidateDir(`/opt/amc`))
}

func TestCancelledContext(t *testing.T) {
	store := envstore.NewMemory(`C:\Windows`)
	m := newTestManager(t, store, &recorder{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.AddPathEntry(ctx, `C:\App`)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.Writes())
}

func TestJournalRecordsAdd(t *testing.T) {
	j := openJournal(t)
	store := envstore.NewMemory(`C:\Windows`)
	m := newTestManager(t, store, &recorder{}, j)

	_, err := m.AddPathEntry(context.Background(), `C:\App`)
	require.NoError(t, err)

	events, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "test-run", events[0].RunID)
	assert.Equal(t, "machine", events[0].Scope)
	assert.Equal(t, `C:\Windows`, events[0].PathBefore)
	assert.Equal(t, `C:\Windows;C:\App`, events[0].PathAfter)
}

func TestNewGeneratesRunID(t *testing.T) {
	m := New(Options{Store: envstore.NewMemory("")})
	assert.NotEmpty(t, m.RunID())
}

// absentStore reports ErrNotExist on read and writes through to a Memory.
type absentStore struct{ *envstore.Memory }

func (absentStore) Get() (string, error) { return "", envstore.ErrNotExist }
