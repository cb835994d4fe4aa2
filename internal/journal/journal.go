package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoSnapshot is returned when no uninstall snapshot exists for a directory.
var ErrNoSnapshot = errors.New("no uninstall snapshot")

// Outcomes recorded for an event.
const (
	OutcomeChanged  = "changed"
	OutcomeNoop     = "noop"
	OutcomeFailed   = "failed"
	OutcomeSnapshot = "snapshot"
)

// Event is one PATH operation performed by an installer step.
type Event struct {
	ID         int64
	RunID      string
	Op         string
	InstallDir string
	Scope      string
	PathBefore string
	PathAfter  string
	Outcome    string
	Error      string
	CreatedAt  time.Time
}

// Snapshot is the PATH value captured when an uninstall begins. Present is
// false when the value did not exist or could not be read; Value is then
// empty and must not be written back.
type Snapshot struct {
	InstallDir string
	Value      string
	Present    bool
	RunID      string
	TakenAt    time.Time
}

// Journal wraps the SQLite connection.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

// Record appends e. CreatedAt defaults to now.
func (j *Journal) Record(e Event) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.clock()
	}
	res, err := j.db.Exec(`INSERT INTO path_events
		(run_id, op, install_dir, scope, path_before, path_after, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Op, e.InstallDir, e.Scope, e.PathBefore, e.PathAfter, e.Outcome, e.Error, e.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("record event: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit events, newest first. limit <= 0 means all.
func (j *Journal) List(limit int) ([]Event, error) {
	q := `SELECT id, run_id, op, install_dir, scope, path_before, path_after, outcome, error, created_at
		FROM path_events ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Op, &e.InstallDir, &e.Scope, &e.PathBefore, &e.PathAfter, &e.Outcome, &e.Error, &ts); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveSnapshot stores (replacing any earlier one) the PATH value seen when
// uninstalling dir began.
func (j *Journal) SaveSnapshot(s Snapshot) error {
	if s.TakenAt.IsZero() {
		s.TakenAt = j.clock()
	}
	present := 0
	if s.Present {
		present = 1
	}
	_, err := j.db.Exec(`INSERT INTO uninstall_snapshots (dir_key, install_dir, path_value, present, run_id, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(dir_key) DO UPDATE SET
			install_dir = excluded.install_dir,
			path_value = excluded.path_value,
			present = excluded.present,
			run_id = excluded.run_id,
			taken_at = excluded.taken_at`,
		snapshotKey(s.InstallDir), s.InstallDir, s.Value, present, s.RunID, s.TakenAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the snapshot for dir, matched case-insensitively.
func (j *Journal) LoadSnapshot(dir string) (Snapshot, error) {
	var s Snapshot
	var present int
	var ts int64
	err := j.db.QueryRow(`SELECT install_dir, path_value, present, run_id, taken_at
		FROM uninstall_snapshots WHERE dir_key = ?`, snapshotKey(dir)).
		Scan(&s.InstallDir, &s.Value, &present, &s.RunID, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	s.Present = present != 0
	s.TakenAt = time.Unix(0, ts)
	return s, nil
}

// DeleteSnapshot removes the snapshot for dir. Deleting a missing snapshot
// is not an error.
func (j *Journal) DeleteSnapshot(dir string) error {
	if _, err := j.db.Exec(`DELETE FROM uninstall_snapshots WHERE dir_key = ?`, snapshotKey(dir)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// snapshotKey folds dir the way PATH segments are compared. SQLite's NOCASE
// only folds ASCII.
func snapshotKey(dir string) string {
	return strings.ToLower(dir)
}
