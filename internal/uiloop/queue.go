package uiloop

import "sync"

// Queue is a Poster that only runs callbacks when drained explicitly.
// Callbacks posted while draining run in the same Drain call.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len reports the number of callbacks waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Step runs the oldest pending callback, if any.
func (q *Queue) Step() bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.mu.Unlock()
	fn()
	return true
}

// Drain runs callbacks until none are pending and returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for q.Step() {
		n++
	}
	return n
}

// Discard drops all pending callbacks without running them.
func (q *Queue) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	q.pending = nil
	return n
}
