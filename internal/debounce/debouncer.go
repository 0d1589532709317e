// Package debounce delays actions until their input settles.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer keeps at most one pending timer per key.
type Debouncer struct {
	clock   clockwork.Clock
	mu      sync.Mutex
	pending map[string]*entry
}

type entry struct {
	timer clockwork.Timer
}

func New(clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, pending: make(map[string]*entry)}
}

// Schedule cancels any action pending under key and runs action after delay
// of quiescence. The action runs on its own goroutine.
func (d *Debouncer) Schedule(key string, delay time.Duration, action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.pending[key]; ok {
		old.timer.Stop()
	}
	e := &entry{}
	e.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		cur, ok := d.pending[key]
		// a Stop that lost the race with expiry must not run a superseded action
		if !ok || cur != e {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		action()
	})
	d.pending[key] = e
}

// Cancel removes the pending action under key without running it.
// It reports whether something was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether an action is scheduled under key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending action.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, k)
	}
}
