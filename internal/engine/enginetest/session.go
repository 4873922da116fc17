package enginetest

import (
	"sync"

	"webpanel/internal/engine"
)

// Session is a fake engine.Session. Navigate completes successfully and
// sets the title to the URL unless SetTitle is used afterwards.
type Session struct {
	eng    *Engine
	finder *Finder

	mu          sync.Mutex
	url         string
	title       string
	navigations []string
	handlers    engine.HandlerSet[engine.SessionHandlers]
}

func (s *Session) Navigate(url string) error {
	s.mu.Lock()
	s.navigations = append(s.navigations, url)
	s.url = url
	s.title = url
	s.mu.Unlock()
	for _, h := range s.handlers.Snapshot() {
		h := h
		if h.NavigationStarting != nil {
			s.eng.post.Post(func() { h.NavigationStarting(engine.NavigationEvent{URL: url}) })
		}
		if h.NavigationCompleted != nil {
			s.eng.post.Post(func() { h.NavigationCompleted(engine.NavigationEvent{URL: url, Success: true}) })
		}
		if h.TitleChanged != nil {
			s.eng.post.Post(h.TitleChanged)
		}
	}
	return nil
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// SetTitle changes the document title and raises TitleChanged.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	for _, h := range s.handlers.Snapshot() {
		if h.TitleChanged != nil {
			s.eng.post.Post(h.TitleChanged)
		}
	}
}

// Navigations returns every URL passed to Navigate.
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// Subscribers reports how many handler sets are subscribed.
func (s *Session) Subscribers() int { return s.handlers.Len() }

func (s *Session) Subscribe(h engine.SessionHandlers) engine.Subscription {
	tok := s.handlers.Add(h)
	return engine.SubscriptionFunc(func() { s.handlers.Remove(tok) })
}

func (s *Session) Finder() (engine.Finder, bool) {
	if s.finder == nil {
		return nil, false
	}
	return s.finder, true
}

// FakeFinder returns the concrete finder, or nil when NoFind was set.
func (s *Session) FakeFinder() *Finder { return s.finder }
