package panel

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestNormalizeKeepsExplicitIDs(t *testing.T) {
	for _, raw := range []string{"docs", "  docs ", "wv_default"} {
		id, random := Normalize(raw)
		if random {
			t.Fatalf("Normalize(%q) reported random", raw)
		}
		if id != strings.TrimSpace(raw) {
			t.Fatalf("Normalize(%q)=%q", raw, id)
		}
		again, _ := Normalize(id)
		if again != id {
			t.Fatalf("not idempotent: %q -> %q", id, again)
		}
	}
}

func TestNormalizeGeneratesUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, random := Normalize("   ")
		if !random || !strings.HasPrefix(id, "wv_") {
			t.Fatalf("unexpected generated id %q random=%v", id, random)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNormalizeFreeSkipsTakenIDs(t *testing.T) {
	last, _ := Normalize("")
	n, err := strconv.ParseUint(strings.TrimPrefix(last, "wv_"), 10, 64)
	if err != nil {
		t.Fatalf("parse %q: %v", last, err)
	}
	taken := fmt.Sprintf("wv_%d", n+1)
	id, random := normalizeFree("", func(id string) bool { return id == taken })
	if !random || id != fmt.Sprintf("wv_%d", n+2) {
		t.Fatalf("got %q, want wv_%d", id, n+2)
	}
}

func TestEnsureWithoutIDNeverCollides(t *testing.T) {
	h := newHarness(t)
	last, _ := Normalize("")
	n, _ := strconv.ParseUint(strings.TrimPrefix(last, "wv_"), 10, 64)
	claimed := fmt.Sprintf("wv_%d", n+1)
	h.ensure(t, EnsureRequest{ID: claimed})

	info := h.ensure(t, EnsureRequest{})
	if info.ID == claimed || !info.WasRandom {
		t.Fatalf("generated id %q collides with %q", info.ID, claimed)
	}
	if h.reg.Len() != 2 {
		t.Fatalf("want 2 instances, got %d", h.reg.Len())
	}
}

func TestEnsureWithoutIDSkipsRememberedIDs(t *testing.T) {
	last, _ := Normalize("")
	n, _ := strconv.ParseUint(strings.TrimPrefix(last, "wv_"), 10, 64)
	stale := fmt.Sprintf("wv_%d", n+1)
	store := &memPersister{items: []Persisted{{
		ID:            stale,
		LastURL:       "https://old.example",
		TitleOverride: "Old",
		Mode:          ModeDocker,
	}}}
	h := newHarness(t, func(c *RegistryConfig) { c.Persister = store })
	if _, err := h.reg.LoadAll(testCtx(t)); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	info := h.ensure(t, EnsureRequest{})
	if !info.WasRandom || info.ID == stale {
		t.Fatalf("generated id %q reuses remembered %q", info.ID, stale)
	}
	if info.LastURL != "" || info.TitleOverride != "" || info.Mode != ModeUnset {
		t.Fatalf("generated instance inherited state: %+v", info)
	}

	// The remembered entry is still applied when asked for by name.
	old := h.ensure(t, EnsureRequest{ID: stale})
	if old.LastURL != "https://old.example" || old.TitleOverride != "Old" || old.Mode != ModeDocker {
		t.Fatalf("remembered state lost: %+v", old)
	}
}
