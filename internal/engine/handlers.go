package engine

import (
	"sync"

	"github.com/google/uuid"
)

// HandlerSet is a token-keyed set of handlers shared by the engine variants.
// It is safe for concurrent use; Snapshot returns handlers in registration
// order so events fan out deterministically.
type HandlerSet[T any] struct {
	mu    sync.Mutex
	order []Token
	fns   map[Token]T
}

// Add registers fn and returns its token.
func (s *HandlerSet[T]) Add(fn T) Token {
	tok := Token(uuid.NewString())
	s.mu.Lock()
	if s.fns == nil {
		s.fns = make(map[Token]T)
	}
	s.fns[tok] = fn
	s.order = append(s.order, tok)
	s.mu.Unlock()
	return tok
}

// Remove drops the handler for tok; unknown tokens are ignored.
func (s *HandlerSet[T]) Remove(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fns[tok]; !ok {
		return
	}
	delete(s.fns, tok)
	for i, t := range s.order {
		if t == tok {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of registered handlers.
func (s *HandlerSet[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

// Snapshot returns the registered handlers.
func (s *HandlerSet[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, s.fns[t])
	}
	return out
}
