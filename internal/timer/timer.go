// Package timer implements the single global timer: at most one time entry
// may be running, and the running entry row in the database is the only
// record of that state.
package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/mycket/internal/store"
)

var (
	ErrNoService = errors.New("no service selected")
	ErrIdle      = errors.New("no timer is running")
)

// State of the global timer slot.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Engine drives the IDLE/RUNNING transitions on top of the store.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// StopResult is the observable outcome of stopping the timer.
type StopResult struct {
	Entry *store.TimeEntry
	Hours float64
	Cost  decimal.Decimal
}

// Recover re-derives the timer state after a restart. It returns the running
// entry, or nil when idle.
func (e *Engine) Recover() (*store.TimeEntry, error) {
	entry, err := e.store.GetRunningEntry()
	if err != nil {
		return nil, fmt.Errorf("recover timer: %w", err)
	}
	if entry != nil {
		log.Infof("Resuming running timer: entry %d (%s) started %v",
			entry.ID, entry.ServiceName, entry.StartTime.Format(time.DateTime))
	}
	return entry, nil
}

func (e *Engine) State() (State, error) {
	entry, err := e.store.GetRunningEntry()
	if err != nil {
		return Idle, err
	}
	if entry == nil {
		return Idle, nil
	}
	return Running, nil
}

// Current returns the running entry or nil.
func (e *Engine) Current() (*store.TimeEntry, error) {
	return e.store.GetRunningEntry()
}

// Start moves the timer from IDLE to RUNNING for serviceID.
func (e *Engine) Start(serviceID int64, notes string) (*store.TimeEntry, error) {
	if serviceID == 0 {
		return nil, ErrNoService
	}
	entry, err := e.store.StartEntry(serviceID, notes, e.now())
	if err != nil {
		return nil, fmt.Errorf("start timer: %w", err)
	}
	log.Infof("Timer started: entry %d (%s)", entry.ID, entry.ServiceName)
	return entry, nil
}

// Stop moves the timer from RUNNING to IDLE, replacing the entry notes, and
// reports the final duration and cost.
func (e *Engine) Stop(notes string) (*StopResult, error) {
	running, err := e.store.GetRunningEntry()
	if err != nil {
		return nil, fmt.Errorf("stop timer: %w", err)
	}
	if running == nil {
		return nil, ErrIdle
	}

	entry, err := e.store.StopEntry(running.ID, notes, e.now())
	if err != nil {
		return nil, fmt.Errorf("stop timer: %w", err)
	}
	hours, _ := entry.DurationHours()
	cost, _ := entry.Amount()
	log.Infof("Timer stopped: entry %d (%s) %.2fh %s", entry.ID, entry.ServiceName, hours, cost.StringFixed(2))
	return &StopResult{Entry: entry, Hours: hours, Cost: cost}, nil
}

// Elapsed returns the wall-clock time since the running entry started, or
// zero when idle.
func (e *Engine) Elapsed(entry *store.TimeEntry) time.Duration {
	if entry == nil || !entry.IsRunning() {
		return 0
	}
	d := e.now().Sub(entry.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// AddManual records a completed entry without touching the timer slot.
func (e *Engine) AddManual(serviceID int64, start, end time.Time, notes string) (*store.TimeEntry, error) {
	if serviceID == 0 {
		return nil, ErrNoService
	}
	entry, err := e.store.CreateManualEntry(serviceID, start, end, notes)
	if err != nil {
		return nil, fmt.Errorf("add manual entry: %w", err)
	}
	log.Debugf("Manual entry %d added (%s)", entry.ID, entry.ServiceName)
	return entry, nil
}
