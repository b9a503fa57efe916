package tui

import (
	"time"

	"github.com/sadopc/mycket/internal/store"
	"github.com/sadopc/mycket/internal/timer"
)

// timerModel caches the running entry for display. The database row stays
// the only source of truth; the cache is reloaded after every transition.
type timerModel struct {
	engine *timer.Engine

	current *store.TimeEntry
	elapsed time.Duration
}

func newTimerModel(e *timer.Engine) timerModel {
	return timerModel{engine: e}
}

// load re-reads the running entry from the engine.
func (t *timerModel) load() error {
	cur, err := t.engine.Current()
	if err != nil {
		return err
	}
	t.current = cur
	t.elapsed = t.engine.Elapsed(cur)
	return nil
}

func (t *timerModel) start(serviceID int64, notes string) (*store.TimeEntry, error) {
	entry, err := t.engine.Start(serviceID, notes)
	if err != nil {
		return nil, err
	}
	t.current = entry
	t.elapsed = 0
	return entry, nil
}

func (t *timerModel) stop(notes string) (*timer.StopResult, error) {
	res, err := t.engine.Stop(notes)
	if err != nil {
		return nil, err
	}
	t.current = nil
	t.elapsed = 0
	return res, nil
}

// tick refreshes the elapsed display. Nothing is persisted.
func (t *timerModel) tick() {
	t.elapsed = t.engine.Elapsed(t.current)
}

func (t timerModel) running() bool {
	return t.current != nil
}

func (t timerModel) currentElapsed() time.Duration {
	if t.current == nil {
		return 0
	}
	return t.elapsed
}

func (t timerModel) serviceName() string {
	if t.current == nil {
		return ""
	}
	return t.current.ServiceName
}
