package panel

import (
	"context"
	"sync"
	"testing"

	"webpanel/internal/engine/enginetest"
	"webpanel/internal/uiloop"
	"webpanel/internal/window"
)

// harness wires a registry to the fake engine and an in-memory window table.
// Every completion lands on q, so tests decide when async steps happen.
type harness struct {
	q   *uiloop.Queue
	eng *enginetest.Engine
	win *window.Table
	pub *MemoryPublisher
	reg *Registry
}

func newHarness(t *testing.T, mutate ...func(*RegistryConfig)) *harness {
	t.Helper()
	q := uiloop.NewQueue()
	h := &harness{q: q, eng: enginetest.New(q), win: window.NewTable(q), pub: NewMemoryPublisher()}
	h.eng.Matches = 3
	cfg := RegistryConfig{Engine: h.eng, Windows: h.win, Publisher: h.pub}
	for _, m := range mutate {
		m(&cfg)
	}
	h.reg = NewWithConfig(cfg)
	return h
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func (h *harness) ensure(t *testing.T, req EnsureRequest) Info {
	t.Helper()
	info, err := h.reg.EnsureAndMaybeNavigate(testCtx(t), req)
	if err != nil {
		t.Fatalf("EnsureAndMaybeNavigate(%q): %v", req.ID, err)
	}
	return info
}

// ready ensures id and drains until the engine is Ready.
func (h *harness) ready(t *testing.T, id, url string) Info {
	t.Helper()
	h.ensure(t, EnsureRequest{ID: id, URL: url, Navigate: url != ""})
	h.q.Drain()
	info, ok := h.reg.GetByID(id)
	if !ok {
		t.Fatalf("instance %q missing", id)
	}
	if info.State != StateReady {
		t.Fatalf("instance %q state=%s initErr=%q", id, info.State, info.InitError)
	}
	return info
}

func (h *harness) controller(t *testing.T, id string) *enginetest.Controller {
	t.Helper()
	info, ok := h.reg.GetByID(id)
	if !ok {
		t.Fatalf("instance %q missing", id)
	}
	c := h.eng.ControllerFor(info.Window)
	if c == nil {
		t.Fatalf("no controller for %q (window %s)", id, info.Window)
	}
	return c
}

type memPersister struct {
	mu    sync.Mutex
	items []Persisted
}

func (m *memPersister) SaveAll(_ context.Context, items []Persisted) error {
	m.mu.Lock()
	m.items = append([]Persisted(nil), items...)
	m.mu.Unlock()
	return nil
}

func (m *memPersister) LoadAll(context.Context) ([]Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Persisted(nil), m.items...), nil
}

type recordingOpener struct{ urls []string }

func (o *recordingOpener) Open(u string) error {
	o.urls = append(o.urls, u)
	return nil
}
