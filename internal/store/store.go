// Package store persists panel instance state between runs. Two backends are
// provided: an SQLite database (modernc.org/sqlite, no cgo) and a single
// YAML or JSON file. Open picks one from the path's extension.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"webpanel/internal/common/fsutil"
	"webpanel/internal/panel"
)

// Store is a panel.Persister that holds resources.
type Store interface {
	panel.Persister
	Close() error
}

// Open returns the backend for path: ".db", ".sqlite" and ".sqlite3" use
// SQLite; ".json", ".yaml" and ".yml" use a file. A leading "~" is expanded.
func Open(ctx context.Context, path string) (Store, error) {
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(ctx, path)
	case ".json", ".yaml", ".yml":
		return NewFile(path)
	default:
		return nil, fmt.Errorf("unsupported state file extension: %s", filepath.Ext(path))
	}
}

// entry is the serialized form of panel.Persisted.
type entry struct {
	ID               string `json:"id" yaml:"id"`
	LastURL          string `json:"last_url,omitempty" yaml:"last_url,omitempty"`
	TitleOverride    string `json:"title_override,omitempty" yaml:"title_override,omitempty"`
	Mode             string `json:"mode,omitempty" yaml:"mode,omitempty"`
	WantDockOnCreate int    `json:"want_dock_on_create" yaml:"want_dock_on_create"`
	LastDockIdx      int    `json:"last_dock_idx" yaml:"last_dock_idx"`
	LastDockFloat    bool   `json:"last_dock_float" yaml:"last_dock_float"`
}

func fromPanel(p panel.Persisted) entry {
	e := entry{
		ID:               p.ID,
		LastURL:          p.LastURL,
		TitleOverride:    p.TitleOverride,
		WantDockOnCreate: int(p.Dock.WantDockOnCreate),
		LastDockIdx:      p.Dock.LastDockIdx,
		LastDockFloat:    p.Dock.LastDockFloat,
	}
	if p.Mode != panel.ModeUnset {
		e.Mode = p.Mode.String()
	}
	return e
}

func (e entry) toPanel() panel.Persisted {
	want := panel.DockIntent(e.WantDockOnCreate)
	if want < panel.DockUnknown || want > panel.DockDock {
		want = panel.DockUnknown
	}
	return panel.Persisted{
		ID:            e.ID,
		LastURL:       e.LastURL,
		TitleOverride: e.TitleOverride,
		Mode:          panel.ParsePanelMode(e.Mode),
		Dock: panel.DockState{
			WantDockOnCreate: want,
			LastDockIdx:      e.LastDockIdx,
			LastDockFloat:    e.LastDockFloat,
		},
	}
}
