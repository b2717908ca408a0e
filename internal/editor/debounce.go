package editor

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers per field: only the last function passed to
// Trigger runs, once the field has been quiet for the delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

// Trigger schedules fn for field, replacing any pending function for that field.
func (d *Debouncer) Trigger(field string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[field]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timers[field] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, field)
		d.mu.Unlock()
		fn()
	})
	d.timers[field] = t
}

// Pending reports whether field has a scheduled function.
func (d *Debouncer) Pending(field string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[field]
	return ok
}

// Stop cancels every pending function. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for field, t := range d.timers {
		t.Stop()
		delete(d.timers, field)
	}
}
