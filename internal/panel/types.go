package panel

import (
	"strings"
	"time"

	"webpanel/internal/find"
	"webpanel/internal/window"
)

// EngineState is the lifecycle state of an instance's engine binding. It only
// moves forward in declaration order.
type EngineState int

const (
	StateUninitialized EngineState = iota
	StateInitializing
	StateReady
	StateDisposed
)

func (s EngineState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// PanelMode is the caller's display intent for a panel.
type PanelMode int

const (
	ModeUnset PanelMode = iota
	ModeHide
	ModeDocker
	ModeAlways
)

func (m PanelMode) String() string {
	switch m {
	case ModeHide:
		return "hide"
	case ModeDocker:
		return "docker"
	case ModeAlways:
		return "always"
	default:
		return "unset"
	}
}

// ParsePanelMode parses a mode name; unknown values map to ModeUnset.
func ParsePanelMode(s string) PanelMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hide", "hidden":
		return ModeHide
	case "docker", "dock":
		return ModeDocker
	case "always":
		return ModeAlways
	default:
		return ModeUnset
	}
}

// DockIntent is the tri-state want-dock-on-create hint.
type DockIntent int

const (
	DockUnknown DockIntent = -1
	DockUndock  DockIntent = 0
	DockDock    DockIntent = 1
)

// DockState holds persisted docking hints consumed by the window layer.
type DockState struct {
	WantDockOnCreate DockIntent
	LastDockIdx      int
	LastDockFloat    bool
}

// DefaultDockState is used for instances with no persisted hints.
func DefaultDockState() DockState {
	return DockState{WantDockOnCreate: DockUnknown}
}

func (d DockState) placement() window.Placement {
	return window.Placement{WantDock: int(d.WantDockOnCreate), DockIndex: d.LastDockIdx, Floating: d.LastDockFloat}
}

// EnsureRequest is the input to EnsureAndMaybeNavigate. Zero values of Title
// and Mode mean "leave unchanged".
type EnsureRequest struct {
	ID       string
	URL      string
	Navigate bool
	Title    string
	Mode     PanelMode
	// Generate asks Open for a fresh generated id instead of the active
	// instance. ID must be empty.
	Generate bool
}

// Info is a read-only snapshot of one instance.
type Info struct {
	ID            string
	WasRandom     bool
	Window        window.Handle
	TitleOverride string
	LastURL       string
	Mode          PanelMode
	State         EngineState
	LastTabTitle  string
	LastWndText   string
	Dock          DockState
	FocusTick     uint64
	Find          find.Status
	InitFailed    bool
	InitError     string
	CreatedAt     time.Time
	ReadyAt       time.Time
}
