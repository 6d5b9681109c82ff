package fs

import (
	"sync"
	"time"

	"github.com/gazelib/gazelib/pkg/core"
)

// debouncer coalesces bursts of changes to the same container. Only the last
// change for an ID within the delay is delivered.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]core.Change
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Change),
	}
}

// add schedules emit for change, replacing any pending change of the same ID.
func (d *debouncer) add(change core.Change, emit func(core.Change)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[change.ID] = change
	if t, ok := d.timers[change.ID]; ok && t.Stop() {
		// The stopped timer will not run; release its slot.
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timers[change.ID] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		c, ok := d.pending[change.ID]
		delete(d.pending, change.ID)
		delete(d.timers, change.ID)
		stopped := d.stopped
		d.mu.Unlock()
		if ok && !stopped {
			emit(c)
		}
	})
}

// stopAndWait rejects new changes, cancels pending ones and waits for
// callbacks already running. Callers must unblock those callbacks first.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
