package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestLogCommand(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	r := httptest.NewRequest(http.MethodPost, "/instances/docs/focus", nil)
	logCommand(r, "focus", "docs", http.StatusOK, time.Now(), nil)
	if !strings.Contains(buf.String(), `"verb":"focus"`) || !strings.Contains(buf.String(), `"instance":"docs"`) {
		t.Fatalf("missing command log: %q", buf.String())
	}

	buf.Reset()
	r = httptest.NewRequest(http.MethodPost, "/instances/docs/focus?log=error", nil)
	logCommand(r, "focus", "docs", http.StatusOK, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("error level should skip successes: %q", buf.String())
	}
	logCommand(r, "focus", "docs", http.StatusNotFound, time.Now(), errors.New("instance not found: docs"))
	if !strings.Contains(buf.String(), `"status":404`) {
		t.Fatalf("missing failure log: %q", buf.String())
	}
}
