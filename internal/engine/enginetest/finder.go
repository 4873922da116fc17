package enginetest

import (
	"sync"

	"webpanel/internal/engine"
)

// Options is a fake engine.FindOptions.
type Options struct {
	mu            sync.Mutex
	Term          string
	CaseSensitive bool
	HighlightAll  bool
	Suppress      bool
	released      int
}

func (o *Options) SetTerm(term string)             { o.mu.Lock(); o.Term = term; o.mu.Unlock() }
func (o *Options) SetCaseSensitive(v bool)         { o.mu.Lock(); o.CaseSensitive = v; o.mu.Unlock() }
func (o *Options) SetHighlightAll(v bool)          { o.mu.Lock(); o.HighlightAll = v; o.mu.Unlock() }
func (o *Options) SetSuppressDefaultDialog(v bool) { o.mu.Lock(); o.Suppress = v; o.mu.Unlock() }

func (o *Options) Release() {
	o.mu.Lock()
	o.released++
	o.mu.Unlock()
}

// Released reports how many times Release was called.
func (o *Options) Released() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.released
}

// Finder is a fake engine.Finder. Start reports Engine.Matches matches and
// leaves the active index unset, like engines that need an explicit advance.
type Finder struct {
	eng *Engine

	mu      sync.Mutex
	index   int
	total   int
	active  bool
	options []*Options
	starts  int
	nexts   int
	prevs   int
	stops   int
	indexH  engine.HandlerSet[func()]
	countH  engine.HandlerSet[func()]
}

func (f *Finder) CreateOptions() (engine.FindOptions, error) {
	o := &Options{}
	f.mu.Lock()
	f.options = append(f.options, o)
	f.mu.Unlock()
	return o, nil
}

func (f *Finder) Start(opts engine.FindOptions, done func(error)) {
	o, _ := opts.(*Options)
	f.eng.mu.Lock()
	matches := f.eng.Matches
	f.eng.mu.Unlock()
	f.mu.Lock()
	f.starts++
	f.active = true
	f.index = -1
	f.total = 0
	if o != nil && o.Term != "" {
		f.total = matches
	}
	f.mu.Unlock()
	if done != nil {
		f.eng.post.Post(func() { done(nil) })
	}
	f.raiseCount()
}

func (f *Finder) FindNext() {
	f.mu.Lock()
	f.nexts++
	if f.total > 0 {
		f.index = (f.index + 1) % f.total
	}
	f.mu.Unlock()
	f.raiseIndex()
}

func (f *Finder) FindPrevious() {
	f.mu.Lock()
	f.prevs++
	if f.total > 0 {
		if f.index <= 0 {
			f.index = f.total - 1
		} else {
			f.index--
		}
	}
	f.mu.Unlock()
	f.raiseIndex()
}

func (f *Finder) Stop() {
	f.mu.Lock()
	f.stops++
	f.active = false
	f.index = -1
	f.total = 0
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

// Report overrides the raw index/count and raises the count-changed event.
func (f *Finder) Report(index, total int) {
	f.mu.Lock()
	f.index = index
	f.total = total
	f.mu.Unlock()
	f.raiseCount()
}

// ReportIndex overrides the raw index and raises the index-changed event.
func (f *Finder) ReportIndex(index int) {
	f.mu.Lock()
	f.index = index
	f.mu.Unlock()
	f.raiseIndex()
}

// Calls returns the number of Start, FindNext, FindPrevious and Stop calls.
func (f *Finder) Calls() (starts, nexts, prevs, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.nexts, f.prevs, f.stops
}

// Options returns every options object created so far.
func (f *Finder) Options() []*Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Options(nil), f.options...)
}

// Subscribers reports the number of index and count handlers.
func (f *Finder) Subscribers() (index, count int) { return f.indexH.Len(), f.countH.Len() }

func (f *Finder) raiseIndex() {
	for _, fn := range f.indexH.Snapshot() {
		f.eng.post.Post(fn)
	}
}

func (f *Finder) raiseCount() {
	for _, fn := range f.countH.Snapshot() {
		f.eng.post.Post(fn)
	}
}
