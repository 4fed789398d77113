// Package pool owns a fixed set of engine sessions and arbitrates exclusive
// pairwise leases between concurrent match-runner workers.
package pool

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tourney/internal/engine"
)

// backoffScheduleMS is the retry backoff ladder applied to a failed engine
// start or restart attempt.
var backoffScheduleMS = []int{0, 1000, 2000, 5000, 10000}

// Pool owns N engine sessions and their busy bits.
type Pool struct {
	log zerolog.Logger
	cwd string

	mu       sync.Mutex
	cond     *sync.Cond
	sessions []*engine.Session
	busy     []bool
}

// New creates a pool for the given specs. Sessions are not started.
func New(specs []engine.Spec, cwd string, log zerolog.Logger) *Pool {
	p := &Pool{log: log, cwd: cwd}
	p.cond = sync.NewCond(&p.mu)
	for _, spec := range specs {
		p.sessions = append(p.sessions, engine.New(spec))
	}
	p.busy = make([]bool, len(p.sessions))
	return p
}

// Count returns the number of engines in the pool.
func (p *Pool) Count() int { return len(p.sessions) }

// Session returns the session for id, for read-only inspection outside a lease.
func (p *Pool) Session(id int) *engine.Session { return p.sessions[id] }

// StartAll initializes every session concurrently with retry backoff,
// returning only once every engine is Ready, or an error naming the first
// engine that exhausted its backoff ladder.
func (p *Pool) StartAll() error {
	g := new(errgroup.Group)
	for id := range p.sessions {
		id := id
		g.Go(func() error {
			return p.initializeEngine(id)
		})
	}
	return g.Wait()
}

func (p *Pool) initializeEngine(id int) error {
	session := p.sessions[id]
	var lastErr error
	for attempt, delayMS := range backoffScheduleMS {
		if delayMS > 0 {
			time.Sleep(time.Duration(delayMS) * time.Millisecond)
		}
		if err := session.Start(p.cwd); err != nil {
			lastErr = err
			p.log.Warn().
				Str("engine", session.Name()).
				Int("attempt", attempt).
				Err(err).
				Msg("WATCHDOG: engine unresponsive during handshake, restarting...")
			session.Stop()
			continue
		}
		session.ClearFailure()
		return nil
	}
	return fmt.Errorf("pool: engine %q failed to start after %d attempts: %w", session.Name(), len(backoffScheduleMS), lastErr)
}

// Lease is an exclusive reservation of two engine ids for one game.
type Lease struct {
	pool         *Pool
	whiteID      int
	blackID      int
	released     bool
}

// White returns the white session.
func (l *Lease) White() *engine.Session { return l.pool.sessions[l.whiteID] }

// Black returns the black session.
func (l *Lease) Black() *engine.Session { return l.pool.sessions[l.blackID] }

// WhiteID returns the white engine id.
func (l *Lease) WhiteID() int { return l.whiteID }

// BlackID returns the black engine id.
func (l *Lease) BlackID() int { return l.blackID }

// Release frees both engine ids. Safe to call more than once.
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true
	l.pool.releasePair(l.whiteID, l.blackID)
}

// AcquirePair blocks until both whiteID and blackID are free, then marks
// both busy and returns a Lease. Ids are locked in canonical (min,max)
// order to prevent deadlock between two workers racing for the same pair.
func (p *Pool) AcquirePair(whiteID, blackID int) *Lease {
	lo, hi := whiteID, blackID
	if lo > hi {
		lo, hi = hi, lo
	}

	p.mu.Lock()
	for p.busy[lo] || p.busy[hi] {
		p.cond.Wait()
	}
	p.busy[lo] = true
	p.busy[hi] = true
	p.mu.Unlock()

	return &Lease{pool: p, whiteID: whiteID, blackID: blackID}
}

func (p *Pool) releasePair(whiteID, blackID int) {
	p.mu.Lock()
	p.busy[whiteID] = false
	p.busy[blackID] = false
	p.mu.Unlock()
	p.cond.Broadcast()
}

// RestartEngine stops and reinitializes the session for id under the pool
// lock, applying the same backoff ladder as StartAll.
func (p *Pool) RestartEngine(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[id].Stop()
	return p.initializeEngine(id)
}

// StopAll politely stops every engine, used during orchestrator teardown.
func (p *Pool) StopAll() {
	for _, s := range p.sessions {
		s.Stop()
	}
}

// RunningCount reports how many sessions currently have a live subprocess,
// used by the metrics writer's engines_running field.
func (p *Pool) RunningCount() int {
	n := 0
	for _, s := range p.sessions {
		if s.IsRunning() {
			n++
		}
	}
	return n
}
