package runner

import (
	"sync"
	"sync/atomic"
)

// Control carries the cooperative stop/pause flags shared by one
// tournament run's workers and background tasks.
type Control struct {
	stop   atomic.Bool
	paused atomic.Bool
	mu     sync.Mutex
	cond   *sync.Cond
}

// NewControl creates a fresh, unpaused, unstopped control block.
func NewControl() *Control {
	c := &Control{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// RequestStop sets the stop flag and wakes any worker blocked on pause.
func (c *Control) RequestStop() {
	c.stop.Store(true)
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Stopped reports whether a stop has been requested.
func (c *Control) Stopped() bool { return c.stop.Load() }

// Pause sets the paused flag; in-flight games are unaffected, only the
// next job fetch blocks.
func (c *Control) Pause() { c.paused.Store(true) }

// Resume clears the paused flag and wakes blocked workers.
func (c *Control) Resume() {
	c.paused.Store(false)
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Paused reports whether the run is currently paused.
func (c *Control) Paused() bool { return c.paused.Load() }

// WaitIfPaused blocks while paused and not stopped.
func (c *Control) WaitIfPaused() {
	c.mu.Lock()
	for c.paused.Load() && !c.stop.Load() {
		c.cond.Wait()
	}
	c.mu.Unlock()
}
