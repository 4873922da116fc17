package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"webpanel/internal/engine"
)

var errClosed = errors.New("headless: page closed")

// Page implements engine.Session.
type Page struct {
	eng    *Engine
	ctrl   *Controller
	finder *Finder

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	url      string
	title    string
	closed   bool
	handlers engine.HandlerSet[engine.SessionHandlers]
}

func newPage(e *Engine, c *Controller) *Page {
	p := &Page{eng: e, ctrl: c}
	p.finder = newFinder(e.post)
	return p
}

func (p *Page) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Subscribe(h engine.SessionHandlers) engine.Subscription {
	tok := p.handlers.Add(h)
	return engine.SubscriptionFunc(func() { p.handlers.Remove(tok) })
}

func (p *Page) Finder() (engine.Finder, bool) { return p.finder, true }

// Navigate starts loading target. Completion is reported through the
// session handlers; a newer Navigate supersedes an older one.
func (p *Page) Navigate(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "file", "about":
	default:
		return fmt.Errorf("headless: unsupported scheme %q", u.Scheme)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errClosed
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	ev := engine.NavigationEvent{URL: target}
	for _, h := range p.handlers.Snapshot() {
		if h.NavigationStarting != nil {
			fn := h.NavigationStarting
			p.eng.post.Post(func() { fn(ev) })
		}
	}

	if scheme == "about" {
		p.eng.post.Post(func() { p.finish(seq, target, document{}, nil) })
		return nil
	}
	go func() {
		doc, err := p.eng.fetch(ctx, target)
		p.eng.post.Post(func() { p.finish(seq, target, doc, err) })
	}()
	return nil
}

// finish runs on the UI loop; it applies a load result unless superseded.
func (p *Page) finish(seq uint64, target string, doc document, err error) {
	p.mu.Lock()
	if p.closed || seq != p.seq {
		p.mu.Unlock()
		return
	}
	p.cancel = nil
	if err == nil {
		p.url = target
		p.title = doc.title
	}
	p.mu.Unlock()

	ev := engine.NavigationEvent{URL: target, Success: err == nil}
	if err != nil {
		ev.Status = err.Error()
		p.eng.log.Debug().Err(err).Str("url", target).Msg("load failed")
	} else {
		p.finder.reindex(doc.text)
	}
	for _, h := range p.handlers.Snapshot() {
		if h.NavigationCompleted != nil {
			h.NavigationCompleted(ev)
		}
		if err == nil && h.TitleChanged != nil {
			h.TitleChanged()
		}
	}
}

func (p *Page) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// document is what the engine keeps of a loaded page.
type document struct {
	title string
	text  string
}

func (e *Engine) fetch(ctx context.Context, target string) (document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return document{}, err
	}
	req.Header.Set("User-Agent", e.ua)
	resp, err := e.client.Do(req)
	if err != nil {
		return document{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return document{}, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return parseDocument(io.LimitReader(resp.Body, e.max))
}

// parseDocument extracts the title and the visible text of an HTML page.
func parseDocument(r io.Reader) (document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return document{}, fmt.Errorf("parse html: %w", err)
	}
	var doc document
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if doc.title == "" && n.FirstChild != nil {
					doc.title = strings.Join(strings.Fields(n.FirstChild.Data), " ")
				}
				return
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	doc.text = strings.Join(parts, " ")
	return doc, nil
}
