package headless

import (
	"errors"
	"strings"
	"sync"

	"webpanel/internal/engine"
	"webpanel/internal/uiloop"
)

var errForeignOptions = errors.New("headless: find options from another engine")

type findOptions struct {
	mu            sync.Mutex
	term          string
	caseSensitive bool
	highlightAll  bool
	suppress      bool
}

func (o *findOptions) SetTerm(term string)             { o.mu.Lock(); o.term = term; o.mu.Unlock() }
func (o *findOptions) SetCaseSensitive(v bool)         { o.mu.Lock(); o.caseSensitive = v; o.mu.Unlock() }
func (o *findOptions) SetHighlightAll(v bool)          { o.mu.Lock(); o.highlightAll = v; o.mu.Unlock() }
func (o *findOptions) SetSuppressDefaultDialog(v bool) { o.mu.Lock(); o.suppress = v; o.mu.Unlock() }
func (o *findOptions) Release()                        {}

// Finder searches the visible text of the current document. Like native
// engines, Start reports the match count but leaves the active index at -1
// until the first FindNext or FindPrevious.
type Finder struct {
	post uiloop.Poster

	mu            sync.Mutex
	text          string
	term          string
	caseSensitive bool
	active        bool
	total         int
	index         int
	indexH        engine.HandlerSet[func()]
	countH        engine.HandlerSet[func()]
}

func newFinder(post uiloop.Poster) *Finder {
	return &Finder{post: post, index: -1}
}

func (f *Finder) CreateOptions() (engine.FindOptions, error) { return &findOptions{}, nil }

func (f *Finder) Start(opts engine.FindOptions, done func(error)) {
	o, ok := opts.(*findOptions)
	if !ok {
		if done != nil {
			f.post.Post(func() { done(errForeignOptions) })
		}
		return
	}
	o.mu.Lock()
	term, cs := o.term, o.caseSensitive
	o.mu.Unlock()

	f.mu.Lock()
	f.term, f.caseSensitive = term, cs
	f.active = true
	f.index = -1
	f.total = countMatches(f.text, term, cs)
	f.mu.Unlock()
	if done != nil {
		f.post.Post(func() { done(nil) })
	}
	raise(f.post, f.countH.Snapshot())
}

func (f *Finder) FindNext() { f.step(1) }

func (f *Finder) FindPrevious() { f.step(-1) }

func (f *Finder) step(dir int) {
	f.mu.Lock()
	if !f.active || f.total == 0 {
		f.mu.Unlock()
		return
	}
	switch {
	case f.index < 0 && dir > 0:
		f.index = 0
	case f.index < 0:
		f.index = f.total - 1
	default:
		f.index = (f.index + dir + f.total) % f.total
	}
	f.mu.Unlock()
	raise(f.post, f.indexH.Snapshot())
}

func (f *Finder) Stop() {
	f.mu.Lock()
	f.active = false
	f.total = 0
	f.index = -1
	f.mu.Unlock()
}

func (f *Finder) ActiveMatchIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

func (f *Finder) MatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (f *Finder) OnActiveMatchIndexChanged(fn func()) engine.Token { return f.indexH.Add(fn) }
func (f *Finder) OnMatchCountChanged(fn func()) engine.Token       { return f.countH.Add(fn) }

func (f *Finder) Remove(tok engine.Token) {
	f.indexH.Remove(tok)
	f.countH.Remove(tok)
}

// reindex swaps in a newly loaded document; an active search restarts on it.
func (f *Finder) reindex(text string) {
	f.mu.Lock()
	f.text = text
	active := f.active
	if active {
		f.total = countMatches(text, f.term, f.caseSensitive)
		f.index = -1
	}
	f.mu.Unlock()
	if active {
		raise(f.post, f.countH.Snapshot())
	}
}

func countMatches(text, term string, caseSensitive bool) int {
	if term == "" {
		return 0
	}
	if !caseSensitive {
		text, term = strings.ToLower(text), strings.ToLower(term)
	}
	return strings.Count(text, term)
}
