// Package window defines the contract the panel registry consumes from the
// host's window/layout system, plus Table, an in-memory implementation used
// by the headless daemon and tests.
package window

import "fmt"

// Handle references a native window or container. The zero Handle means the
// window has not been realized.
type Handle uint64

// None is the unrealized handle.
const None Handle = 0

func (h Handle) String() string {
	if h == None {
		return "none"
	}
	return fmt.Sprintf("0x%x", uint64(h))
}

// Placement carries the docking hints a window should be created with.
type Placement struct {
	// WantDock is -1 when unknown (first run), 0 for undocked, 1 for docked.
	WantDock  int
	DockIndex int
	Floating  bool
}

// Layout describes which chrome a panel window currently shows.
type Layout struct {
	TitleVisible   bool
	FindBarVisible bool
}

// System is implemented by the host window layer. Realize must deliver done
// asynchronously; every other method is fire-and-forget.
type System interface {
	Realize(id string, p Placement, done func(Handle, error))
	Valid(h Handle) bool
	Destroy(h Handle)
	Activate(h Handle)
	Relayout(h Handle, l Layout)
	SetText(h Handle, text string)
}
