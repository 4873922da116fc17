package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"webpanel/internal/config"
	"webpanel/internal/uiloop"

	"github.com/rs/zerolog"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestServerURL(t *testing.T) {
	cases := map[string]string{
		":8089":              "http://127.0.0.1:8089",
		"localhost:9000":     "http://localhost:9000",
		"http://host:1/":     "http://host:1/",
		"https://panel.test": "https://panel.test",
	}
	for in, want := range cases {
		if got := serverURL(in); got != want {
			t.Fatalf("serverURL(%q)=%q want %q", in, got, want)
		}
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte("addr: :7000\nlog_level: debug\nengine: none\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(&options{configPath: p, logLevel: "warn"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.LogLevel != "warn" || cfg.Engine != config.EngineNone || cfg.DefaultInstanceID != "wv_default" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	if _, err := loadConfig(&options{logFormat: "xml"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("unexpected output %q", out)
	}
	if lvl := newLogger(&buf, "bogus", "json").GetLevel(); lvl != zerolog.InfoLevel {
		t.Fatalf("fallback level=%v", lvl)
	}
}

func TestBuildEngine(t *testing.T) {
	q := uiloop.NewQueue()
	for name, want := range map[string]string{config.EngineHeadless: "headless", config.EnginePlaywright: "playwright"} {
		eng, closeFn := buildEngine(config.Config{Engine: name}, q, zerolog.Nop())
		if eng == nil || eng.Name() != want {
			t.Fatalf("%s: got %v", name, eng)
		}
		if name == config.EngineHeadless {
			closeFn()
		}
	}
	if eng, _ := buildEngine(config.Config{Engine: config.EngineNone}, q, zerolog.Nop()); eng != nil {
		t.Fatalf("none engine should be nil, got %s", eng.Name())
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "webpaneld dev") {
		t.Fatalf("version output %q", out.String())
	}
}
