package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects paths and hands them to a callback once no new path
// has arrived for the configured delay.
type Debouncer struct {
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]struct{}
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a Debouncer calling callback with sorted, unique paths.
func NewDebouncer(delay time.Duration, callback func([]string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]struct{}),
		callback: callback,
	}
}

// Add records a path and restarts the delay.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	cb := d.callback
	d.mu.Unlock()

	sort.Strings(paths)
	if cb != nil {
		cb(paths)
	}
}

// Stop cancels any pending flush. Later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
