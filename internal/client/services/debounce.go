package services

import (
	"sync"
	"time"
)

// Debouncer runs the last function passed to Trigger for a key once no new
// Trigger for that key has arrived for the configured delay. Keys are
// independent: a burst on one key never delays or drops work on another.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	seq     uint64
	pending map[string]*debounced
	stopped bool

	// running counts functions started by a timer that have not returned
	running sync.WaitGroup
}

type debounced struct {
	seq   uint64
	timer *time.Timer
	fn    func()
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*debounced),
	}
}

// Trigger schedules fn for key, replacing any function still waiting for
// that key and restarting its quiet period. It reports false, and drops fn,
// once the Debouncer has been stopped.
func (d *Debouncer) Trigger(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}

	d.seq++
	seq := d.seq
	p := &debounced{seq: seq, fn: fn}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(key, seq) })
	d.pending[key] = p
	return true
}

// fire runs the pending function for key unless it has been replaced or
// cancelled since the timer was armed.
func (d *Debouncer) fire(key string, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	p.fn()
}

// Cancel drops the pending function for key. It reports whether one was
// waiting.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether a function is waiting for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.pending[key]
	return ok
}

// FlushAll runs every pending function now, in the caller's goroutine, and
// returns how many ran.
func (d *Debouncer) FlushAll() int {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		fns = append(fns, p.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Stop cancels everything still pending, refuses further Triggers and waits
// for functions already started by a timer to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	d.running.Wait()
}
