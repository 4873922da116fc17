package window

import (
	"errors"
	"sort"
	"sync"

	"webpanel/internal/uiloop"
)

// ErrRealizeRefused is returned by a Table configured to refuse new windows.
var ErrRealizeRefused = errors.New("window: realize refused")

// Entry is a read-only view of a window held by a Table.
type Entry struct {
	Handle    Handle
	ID        string
	Placement Placement
	Layout    Layout
	Text      string
	Active    bool
}

// Table keeps virtual windows in memory. It is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	post    uiloop.Poster
	next    Handle
	windows map[Handle]*Entry
	refuse  bool
}

// NewTable returns a Table delivering Realize completions through post.
func NewTable(post uiloop.Poster) *Table {
	return &Table{post: post, next: 0x100, windows: make(map[Handle]*Entry)}
}

// Refuse makes subsequent Realize calls fail.
func (t *Table) Refuse(v bool) {
	t.mu.Lock()
	t.refuse = v
	t.mu.Unlock()
}

func (t *Table) Realize(id string, p Placement, done func(Handle, error)) {
	t.mu.Lock()
	if t.refuse {
		t.mu.Unlock()
		t.post.Post(func() { done(None, ErrRealizeRefused) })
		return
	}
	t.next++
	h := t.next
	t.windows[h] = &Entry{Handle: h, ID: id, Placement: p}
	t.mu.Unlock()
	t.post.Post(func() { done(h, nil) })
}

func (t *Table) Valid(h Handle) bool {
	if h == None {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.windows[h]
	return ok
}

func (t *Table) Destroy(h Handle) {
	t.mu.Lock()
	delete(t.windows, h)
	t.mu.Unlock()
}

func (t *Table) Activate(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, e := range t.windows {
		e.Active = k == h
	}
}

func (t *Table) Relayout(h Handle, l Layout) {
	t.mu.Lock()
	if e, ok := t.windows[h]; ok {
		e.Layout = l
	}
	t.mu.Unlock()
}

func (t *Table) SetText(h Handle, text string) {
	t.mu.Lock()
	if e, ok := t.windows[h]; ok {
		e.Text = text
	}
	t.mu.Unlock()
}

// Get returns a copy of the entry for h.
func (t *Table) Get(h Handle) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.windows[h]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns copies of all live windows ordered by handle.
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	out := make([]Entry, 0, len(t.windows))
	for _, e := range t.windows {
		out = append(out, *e)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
