package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"webpanel/internal/panel"
)

var sample = []panel.Persisted{
	{
		ID:            "docs",
		LastURL:       "https://example.com/docs",
		TitleOverride: "Docs",
		Mode:          panel.ModeAlways,
		Dock:          panel.DockState{WantDockOnCreate: panel.DockDock, LastDockIdx: 3, LastDockFloat: true},
	},
	{
		ID:   "wv_2",
		Dock: panel.DefaultDockState(),
	},
}

func checkSample(t *testing.T, got []panel.Persisted) {
	t.Helper()
	if len(got) != len(sample) {
		t.Fatalf("loaded %d items, want %d", len(got), len(sample))
	}
	for i := range sample {
		if got[i] != sample[i] {
			t.Fatalf("item %d: got %+v want %+v", i, got[i], sample[i])
		}
	}
}

func TestSQLiteSaveReplacesPreviousSet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.SaveAll(ctx, append(sample, panel.Persisted{ID: "stale"})); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveAll(ctx, sample); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkSample(t, got)

	// Reopening applies migrations idempotently and keeps data.
	s.Close()
	s2, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err = s2.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	checkSample(t, got)
}

func TestFileStoreFormats(t *testing.T) {
	for _, name := range []string{"state.yaml", "state.json"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), name)
			st, err := Open(ctx, path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			got, err := st.LoadAll(ctx)
			if err != nil || len(got) != 0 {
				t.Fatalf("missing file: %v %v", got, err)
			}
			if err := st.SaveAll(ctx, sample); err != nil {
				t.Fatalf("save: %v", err)
			}
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(b), "last_url") {
				t.Fatalf("unexpected encoding:\n%s", b)
			}
			got, err = st.LoadAll(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			checkSample(t, got)
		})
	}
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	if _, err := Open(context.Background(), "state.txt"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPersisterWiresIntoRegistry(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.SaveAll(ctx, sample); err != nil {
		t.Fatal(err)
	}
	reg := panel.NewWithConfig(panel.RegistryConfig{Persister: st})
	n, err := reg.LoadAll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("LoadAll n=%d err=%v", n, err)
	}
	ids, err := reg.RestoreAlways(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "docs" {
		t.Fatalf("RestoreAlways=%v err=%v", ids, err)
	}
	info, ok := reg.GetByID("docs")
	if !ok || info.LastURL != "https://example.com/docs" || info.Mode != panel.ModeAlways {
		t.Fatalf("restored info %+v", info)
	}
}
