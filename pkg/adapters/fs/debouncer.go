package fs

import (
	"sync"
	"time"

	"github.com/aretw0/learn/pkg/core"
)

// debouncer coalesces bursts of events on the same path. Editors often emit
// several writes per save; only the last one is delivered, except that a
// burst starting with CREATE is still reported as CREATE.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*pendingEvent
	stopped bool
	wg      sync.WaitGroup
}

type pendingEvent struct {
	event core.Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, pending: make(map[string]*pendingEvent)}
}

// add schedules fn for event after the quiet period. Events arriving after
// stopAndWait are dropped.
func (d *debouncer) add(event core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if p, ok := d.pending[event.Path]; ok {
		if p.timer.Stop() {
			if p.event.Type == core.EventCreate && event.Type == core.EventModify {
				event.Type = core.EventCreate
			}
			p.event = event
			p.timer.Reset(d.delay)
			return
		}
		// The timer already fired; its callback owns the old entry.
	}

	p := &pendingEvent{event: event}
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		current := p.event
		if d.pending[event.Path] == p {
			delete(d.pending, event.Path)
		}
		d.mu.Unlock()
		fn(current)
	})
	d.pending[event.Path] = p
}

// stopAndWait drops pending events that have not fired and waits up to
// timeout for running callbacks.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, p := range d.pending {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
