package panel

import (
	"fmt"
	"sync"

	"webpanel/internal/engine"
	"webpanel/internal/window"
)

// unavailableEngine stands in when no engine is configured.
type unavailableEngine struct{}

func (unavailableEngine) Name() string { return "none" }

func (unavailableEngine) Available() error {
	return fmt.Errorf("%w: no engine configured", engine.ErrUnavailable)
}

func (unavailableEngine) CreateEnvironment(engine.EnvironmentOptions, func(engine.Environment, error)) {
}

// manualWindows is used when the host attaches windows itself. Realize never
// completes; attached handles stay valid until destroyed.
type manualWindows struct {
	mu   sync.Mutex
	dead map[window.Handle]bool
}

func newManualWindows() *manualWindows {
	return &manualWindows{dead: make(map[window.Handle]bool)}
}

func (m *manualWindows) Realize(string, window.Placement, func(window.Handle, error)) {}

func (m *manualWindows) Valid(h window.Handle) bool {
	if h == window.None {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.dead[h]
}

func (m *manualWindows) Destroy(h window.Handle) {
	m.mu.Lock()
	m.dead[h] = true
	m.mu.Unlock()
}

func (m *manualWindows) Activate(window.Handle)                {}
func (m *manualWindows) Relayout(window.Handle, window.Layout) {}
func (m *manualWindows) SetText(window.Handle, string)         {}
