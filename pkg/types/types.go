package types

// OpenRequest is the body of POST /instances.
type OpenRequest struct {
	// Instance id. Empty targets the active instance.
	// example: docs
	ID string `json:"id,omitempty" example:"docs"`
	// URL to navigate to once the engine is ready.
	// example: https://example.com
	URL string `json:"url,omitempty" example:"https://example.com"`
	// Caption override for the panel tab and window.
	// example: Docs
	Title string `json:"title,omitempty" example:"Docs"`
	// Panel mode: hide, docker or always.
	// example: docker
	Mode string `json:"mode,omitempty" example:"docker"`
	// New creates an instance under a generated wv_<n> id. ID must be empty.
	New bool `json:"new,omitempty" example:"false"`
}

// NavigateRequest is the body of the navigate endpoints.
type NavigateRequest struct {
	// Target URL or bare host.
	// example: example.com/page
	URL string `json:"url" example:"example.com/page"`
}

// FindRequest is the body of POST /instances/{id}/find.
type FindRequest struct {
	// Search term. Empty closes the search.
	// example: webview
	Query string `json:"query" example:"webview"`
	// example: false
	CaseSensitive bool `json:"case_sensitive,omitempty" example:"false"`
	// Highlight every match instead of selecting the first one.
	// example: false
	HighlightAll bool `json:"highlight_all,omitempty" example:"false"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// FindStatus is the find-in-page state of one instance.
type FindStatus struct {
	// example: active
	State string `json:"state" example:"active"`
	Query string `json:"query,omitempty"`
	// 1-based active match; 0 when none.
	// example: 1
	Current int `json:"current" example:"1"`
	// example: 3
	Total        int  `json:"total" example:"3"`
	Supported    bool `json:"supported"`
	ShowBar      bool `json:"show_bar"`
	HighlightAll bool `json:"highlight_all,omitempty"`
}

// DockStatus carries the persisted docking hints.
type DockStatus struct {
	// -1 unknown, 0 undocked, 1 docked.
	// example: -1
	WantDockOnCreate int  `json:"want_dock_on_create" example:"-1"`
	LastDockIdx      int  `json:"last_dock_idx"`
	LastDockFloat    bool `json:"last_dock_float"`
}

// InstanceStatus summarizes one panel instance.
type InstanceStatus struct {
	// example: docs
	ID        string `json:"id" example:"docs"`
	WasRandom bool   `json:"was_random,omitempty"`
	// Engine lifecycle state (uninitialized, initializing, ready, disposed).
	// example: ready
	State string `json:"state" example:"ready"`
	// example: https://example.com
	URL string `json:"url,omitempty" example:"https://example.com"`
	// Tab caption.
	// example: Example Domain
	Title string `json:"title,omitempty" example:"Example Domain"`
	// Window text.
	// example: Example Domain - example.com
	WindowText    string     `json:"window_text,omitempty" example:"Example Domain - example.com"`
	TitleOverride string     `json:"title_override,omitempty"`
	Mode          string     `json:"mode"`
	Window        string     `json:"window"`
	Dock          DockStatus `json:"dock"`
	FocusTick     uint64     `json:"focus_tick"`
	Active        bool       `json:"active"`
	Find          FindStatus `json:"find"`
	InitFailed    bool       `json:"init_failed,omitempty"`
	InitError     string     `json:"init_error,omitempty"`
	// example: 1700000000
	CreatedUnix int64 `json:"created_unix" example:"1700000000"`
}

// InstancesResponse wraps GET /instances.
type InstancesResponse struct {
	Instances []InstanceStatus `json:"instances"`
	// Id commands without an explicit instance are routed to.
	// example: wv_default
	Active string `json:"active" example:"wv_default"`
}

// StatusResponse is the registry overview used by /readyz and the TUI.
type StatusResponse struct {
	// example: headless
	Engine    string           `json:"engine" example:"headless"`
	Active    string           `json:"active"`
	Instances []InstanceStatus `json:"instances"`
	// Instance counts keyed by engine state.
	States map[string]int `json:"states"`
	// example: 120
	UptimeSeconds int64 `json:"uptime_seconds" example:"120"`
}

// PurgeResponse reports how many dead instances were removed.
type PurgeResponse struct {
	// example: 1
	Purged int `json:"purged" example:"1"`
}
