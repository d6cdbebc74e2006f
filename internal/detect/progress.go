package detect

import (
	"sync"
	"sync/atomic"
)

// Progress is the cooperative progress, pause and cancellation handle passed
// into Detect. Detection polls it once per layer and before lengthy merge
// steps; it never interrupts mid-operation. All methods are safe on a nil
// receiver so callers without progress reporting can pass nil.
type Progress struct {
	total    atomic.Int64
	current  atomic.Int64
	canceled atomic.Bool

	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
}

// NewProgress creates a progress handle.
func NewProgress() *Progress {
	p := &Progress{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Reset sets a new total and clears the current counter.
func (p *Progress) Reset(total int) {
	if p == nil {
		return
	}
	p.total.Store(int64(total))
	p.current.Store(0)
}

// Increment advances the current counter by one.
func (p *Progress) Increment() {
	if p == nil {
		return
	}
	p.current.Add(1)
}

// Current returns the number of completed units.
func (p *Progress) Current() int {
	if p == nil {
		return 0
	}
	return int(p.current.Load())
}

// Total returns the configured unit total.
func (p *Progress) Total() int {
	if p == nil {
		return 0
	}
	return int(p.total.Load())
}

// Cancel requests a cooperative stop. A paused run is resumed so it can
// observe the cancellation.
func (p *Progress) Cancel() {
	if p == nil {
		return
	}
	p.canceled.Store(true)
	p.Resume()
}

// Canceled reports whether cancellation was requested.
func (p *Progress) Canceled() bool {
	return p != nil && p.canceled.Load()
}

// Pause blocks the detection run at its next suspension point.
func (p *Progress) Pause() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume releases a paused run.
func (p *Progress) Resume() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.cond.Broadcast()
}

// checkpoint blocks while paused and then reports whether the run may
// continue. Detection exits cooperatively when it returns false.
func (p *Progress) checkpoint() bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	for p.paused && !p.canceled.Load() {
		p.cond.Wait()
	}
	p.mu.Unlock()
	return !p.canceled.Load()
}
