package client

import (
	"sync"
	"time"
)

// DebounceInterval is the pause after the last keystroke before a filter
// change is applied.
const DebounceInterval = 300 * time.Millisecond

// Debouncer coalesces a burst of triggers into a single callback after a
// quiet interval. A new trigger cancels the pending one, so only the last
// value in a burst takes effect.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a Debouncer. A zero interval falls back to
// DebounceInterval.
func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DebounceInterval
	}
	return &Debouncer{interval: interval}
}

// Trigger schedules fn after the quiet interval, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
