package pwengine

import (
	"sync"

	"github.com/playwright-community/playwright-go"

	"webpanel/internal/engine"
)

// Session adapts a playwright page. Title and URL are cached from page events
// so reads never wait on the driver.
type Session struct {
	eng  *Engine
	page playwright.Page

	mu       sync.Mutex
	title    string
	url      string
	detached bool
	handlers engine.HandlerSet[engine.SessionHandlers]
}

func newSession(e *Engine, page playwright.Page) *Session {
	s := &Session{eng: e, page: page}
	page.OnFrameNavigated(func(f playwright.Frame) {
		if f.ParentFrame() != nil {
			return
		}
		s.mu.Lock()
		s.url = f.URL()
		s.mu.Unlock()
		s.raise(func(h engine.SessionHandlers) {
			if h.NavigationCompleted != nil {
				h.NavigationCompleted(engine.NavigationEvent{URL: f.URL(), Success: true})
			}
		})
	})
	page.OnLoad(func(p playwright.Page) {
		title, err := p.Title()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.title = title
		s.mu.Unlock()
		s.raise(func(h engine.SessionHandlers) {
			if h.TitleChanged != nil {
				h.TitleChanged()
			}
		})
	})
	return s
}

func (s *Session) Navigate(url string) error {
	s.raise(func(h engine.SessionHandlers) {
		if h.NavigationStarting != nil {
			h.NavigationStarting(engine.NavigationEvent{URL: url})
		}
	})
	go func() {
		if _, err := s.page.Goto(url); err != nil {
			s.eng.log.Debug().Err(err).Str("url", url).Msg("goto failed")
			s.raise(func(h engine.SessionHandlers) {
				if h.NavigationCompleted != nil {
					h.NavigationCompleted(engine.NavigationEvent{URL: url, Status: err.Error()})
				}
			})
		}
	}()
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

func (s *Session) Subscribe(h engine.SessionHandlers) engine.Subscription {
	tok := s.handlers.Add(h)
	return engine.SubscriptionFunc(func() { s.handlers.Remove(tok) })
}

// Finder reports no native find support.
func (s *Session) Finder() (engine.Finder, bool) { return nil, false }

func (s *Session) detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}

// raise posts fn for every subscriber unless the session was released.
func (s *Session) raise(fn func(engine.SessionHandlers)) {
	s.mu.Lock()
	detached := s.detached
	s.mu.Unlock()
	if detached {
		return
	}
	for _, h := range s.handlers.Snapshot() {
		h := h
		s.eng.post.Post(func() { fn(h) })
	}
}
