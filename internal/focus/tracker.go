// Package focus tracks which panel instance last received input focus so
// commands without an explicit instance id can be routed.
//
// The tracker never holds instance state. It hands out monotonic ticks, keeps
// the id of the latest candidate and asks a Liveness view (the registry)
// which ids still exist. Purged instances drop out of Active naturally
// because they are no longer reported as live.
package focus

import (
	"sync"
	"time"
)

// DefaultHistory is the number of focus transitions kept for diagnostics.
const DefaultHistory = 64

// Liveness is the registry's view of live instances and their focus ticks.
type Liveness interface {
	// Tick returns the recorded focus tick for a live id.
	Tick(id string) (uint64, bool)
	// EachTick visits every live instance.
	EachTick(fn func(id string, tick uint64))
}

// Kind of focus transition.
type Kind string

const (
	Gained Kind = "gained"
	Lost   Kind = "lost"
)

// Transition records a focus notification.
type Transition struct {
	ID   string
	Kind Kind
	Tick uint64
	At   time.Time
}

// Tracker arbitrates the active instance. It is safe for concurrent use.
type Tracker struct {
	mu            sync.Mutex
	defaultID     string
	tick          uint64
	candidate     string
	candidateTick uint64
	observed      bool
	history       *Ring[Transition]
}

// NewTracker returns a tracker that answers defaultID until the first focus
// event is observed.
func NewTracker(defaultID string) *Tracker {
	return &Tracker{defaultID: defaultID, history: NewRing[Transition](DefaultHistory)}
}

// Gained marks id as the current candidate and returns its new tick.
func (t *Tracker) Gained(id string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick++
	t.candidate = id
	t.candidateTick = t.tick
	t.observed = true
	t.history.Add(Transition{ID: id, Kind: Gained, Tick: t.tick, At: time.Now()})
	return t.tick
}

// Lost is recorded for diagnostics only; it never changes the candidate.
func (t *Tracker) Lost(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history.Add(Transition{ID: id, Kind: Lost, Tick: t.tick, At: time.Now()})
}

// Observed reports whether any focus-gained event has been seen.
func (t *Tracker) Observed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observed
}

// Active returns the live instance with the highest focus tick, or the
// default id when no focus event has been observed or nothing focused is
// still alive.
func (t *Tracker) Active(live Liveness) string {
	t.mu.Lock()
	observed, candidate, candTick := t.observed, t.candidate, t.candidateTick
	t.mu.Unlock()
	if !observed || live == nil {
		return t.defaultID
	}
	if candidate != "" {
		if tick, ok := live.Tick(candidate); ok && tick == candTick {
			return candidate
		}
	}
	var best string
	var bestTick uint64
	live.EachTick(func(id string, tick uint64) {
		if tick > bestTick {
			best, bestTick = id, tick
		}
	})
	if best == "" {
		return t.defaultID
	}
	t.mu.Lock()
	if t.candidateTick == candTick {
		t.candidate, t.candidateTick = best, bestTick
	}
	t.mu.Unlock()
	return best
}

// DefaultID returns the legacy single-instance id.
func (t *Tracker) DefaultID() string { return t.defaultID }

// History returns recorded transitions, oldest first.
func (t *Tracker) History() []Transition {
	return t.history.All()
}
