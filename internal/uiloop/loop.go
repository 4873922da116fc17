// Package uiloop provides the single logical UI thread that engine callbacks,
// window completions and find events are delivered on.
//
// Two implementations satisfy Poster:
//
//   - Loop: a goroutine draining a FIFO of callbacks, used by the daemon.
//   - Queue: a manually drained FIFO, used by tests and by hosts that pump
//     callbacks from their own event loop.
package uiloop

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Poster schedules fn to run later on the UI thread. Post must never run fn
// inline; callers rely on that to avoid re-entering their own locks.
type Poster interface {
	Post(fn func())
}

// ErrStopped is returned by Do when the loop is no longer running.
var ErrStopped = errors.New("uiloop: stopped")

// Loop runs posted callbacks one at a time in the order they were posted.
type Loop struct {
	log zerolog.Logger

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

// New returns a Loop; call Run to start draining it. Recovered callback
// panics are logged to log.
func New(log zerolog.Logger) *Loop {
	return &Loop{
		log:  log,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. Callbacks posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains callbacks until ctx is canceled. A panicking callback is
// recovered so a single instance cannot take the host down.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.pending = nil
		l.mu.Unlock()
		close(l.done)
	}()
	for {
		for {
			l.mu.Lock()
			if len(l.pending) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.pending[0]
			l.pending[0] = nil
			l.pending = l.pending[1:]
			l.mu.Unlock()
			l.runSafe(fn)
		}
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Do posts fn and waits for it to finish on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) runSafe(fn func()) {
	defer func() {
		if v := recover(); v != nil {
			l.log.Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("ui callback panicked")
		}
	}()
	fn()
}
