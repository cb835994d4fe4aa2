package install

import (
	"errors"
	"fmt"
	"strings"

	"github.com/VoxDroid/amcsetup/internal/journal"
)

// Op names a PATH operation.
type Op string

// Operations performed by the manager.
const (
	OpAdd      Op = "add"
	OpRemove   Op = "remove"
	OpSnapshot Op = "snapshot"
)

// Phase is one state of an install or uninstall run:
// Idle -> ReadPath -> Mutate -> Persist -> Notify|SkipNotify -> Done.
type Phase string

// Phases in run order.
const (
	PhaseIdle       Phase = "idle"
	PhaseReadPath   Phase = "read-path"
	PhaseMutate     Phase = "mutate"
	PhasePersist    Phase = "persist"
	PhaseNotify     Phase = "notify"
	PhaseSkipNotify Phase = "skip-notify"
	PhaseDone       Phase = "done"
)

// Failure kinds. None of them aborts an installer step; they are logged and
// carried on the Report.
var (
	ErrReadFailure   = errors.New("PATH read failed")
	ErrWriteFailure  = errors.New("PATH write failed")
	ErrNotifyFailure = errors.New("environment change broadcast failed")
	// ErrNotFound marks a removal of an entry that was not on PATH. It is
	// informational: returned by Report.Info, never joined into Report.Err.
	ErrNotFound = errors.New("PATH entry not found")
)

// Report describes what a single operation did.
type Report struct {
	Op       Op
	Dir      string
	RunID    string
	Steps    []Phase
	Before   string
	After    string
	Changed  bool
	Notified bool
	NotFound bool
	// ReadErr is set when the stored value could not be read and an empty
	// baseline was used instead.
	ReadErr error
	// Err joins write and notify failures.
	Err error
}

func (r *Report) step(p Phase) { r.Steps = append(r.Steps, p) }

func (r *Report) fail(err error) { r.Err = errors.Join(r.Err, err) }

// OK reports whether the operation completed without write or notify failures.
func (r Report) OK() bool { return r.Err == nil }

// Info returns ErrNotFound, wrapped with the directory, when a removal found
// nothing to remove. Otherwise nil.
func (r Report) Info() error {
	if !r.NotFound {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, r.Dir)
}

// Trace renders the phase sequence, e.g. "idle>read-path>done".
func (r Report) Trace() string {
	parts := make([]string, len(r.Steps))
	for i, p := range r.Steps {
		parts[i] = string(p)
	}
	return strings.Join(parts, ">")
}

func (r Report) outcome() string {
	switch {
	case r.Err != nil:
		return journal.OutcomeFailed
	case r.Changed:
		return journal.OutcomeChanged
	default:
		return journal.OutcomeNoop
	}
}
