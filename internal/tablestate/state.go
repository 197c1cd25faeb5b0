// Package tablestate owns the canonical chest-record table, its content
// fingerprint, and the throttled change-notification signal. Callers mutate
// the table only through this package; observers registered with OnChange
// are invoked synchronously when a real change passes the rate limiter.
package tablestate

import (
	"log/slog"
	"time"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// State holds the table and its change-detection bookkeeping. All access is
// single-threaded and cooperative; the updating flag rejects reentrant
// updates rather than corrupting state.
type State struct {
	table       *types.Table
	fingerprint string
	lastNotify  time.Time
	rateLimit   time.Duration
	updating    bool
	observers   []func(types.ChangeEvent)
	log         *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a State over an empty table with the configured columns and
// rate limit.
func New(cfg types.Config, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	rate := cfg.RateLimit
	if rate == 0 {
		rate = types.DefaultRateLimit
	}
	return &State{
		table:       types.NewTable(cfg.Columns),
		fingerprint: fingerprintUnknown,
		rateLimit:   rate,
		log:         logger,
		now:         time.Now,
	}
}

// Snapshot returns a deep copy of the current table.
func (s *State) Snapshot() *types.Table {
	return s.table.Clone()
}

// RowCount returns the current number of rows.
func (s *State) RowCount() int { return s.table.RowCount() }

// OnChange registers a callback invoked synchronously whenever a change
// notification fires.
func (s *State) OnChange(fn func(types.ChangeEvent)) {
	s.observers = append(s.observers, fn)
}

// Update replaces the table wholesale and triggers a (throttled) change
// notification. A reentrant call arriving while an update is in progress —
// including from an observer fired by this update — is rejected silently.
func (s *State) Update(newTable *types.Table) {
	if s.updating {
		s.log.Debug("reentrant table update rejected")
		return
	}
	s.updating = true
	defer func() { s.updating = false }()

	s.table = newTable.Clone()
	// Bulk replace forces the next notification check to see a change.
	s.fingerprint = fingerprintUnknown
	s.notifyIfChangedLocked()
}

// SetCell edits a single cell in place and triggers a (throttled) change
// notification.
func (s *State) SetCell(row, col int, value string) error {
	if err := s.table.SetCell(row, col, value); err != nil {
		return err
	}
	s.NotifyIfChanged()
	return nil
}

// Invalidate clears the stored fingerprint so the next NotifyIfChanged call
// fires unconditionally once the rate-limit window has passed.
func (s *State) Invalidate() {
	s.fingerprint = fingerprintUnknown
}

// NotifyIfChanged computes a fresh fingerprint and fires the change signal
// when the content changed and the rate limit has elapsed. When the
// fingerprint is unchanged, or the limit has not elapsed, nothing fires and
// the stored fingerprint/time stay untouched.
func (s *State) NotifyIfChanged() {
	if s.updating {
		return
	}
	s.updating = true
	defer func() { s.updating = false }()
	s.notifyIfChangedLocked()
}

func (s *State) notifyIfChangedLocked() {
	fresh := fingerprint(s.table)
	if fresh == s.fingerprint {
		return
	}
	if s.now().Sub(s.lastNotify) < s.rateLimit {
		return
	}
	s.fingerprint = fresh
	s.lastNotify = s.now()

	event := types.ChangeEvent{
		RowCount:    s.table.RowCount(),
		Columns:     s.table.ColumnNames(),
		Fingerprint: fresh,
	}
	for _, fn := range s.observers {
		fn(event)
	}
}
