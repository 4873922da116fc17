package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"webpanel/internal/client"
	"webpanel/internal/engine/headless"
	"webpanel/internal/httpapi"
	"webpanel/internal/panel"
	"webpanel/internal/store"
	"webpanel/internal/uiloop"
	"webpanel/internal/window"
	"webpanel/pkg/types"
)

const docsPage = `<!doctype html>
<html><head><title>Panel Docs</title><style>.panel{}</style></head>
<body><h1>Docs</h1><p>panel one</p><p>Panel two</p><script>var panel = 1;</script></body></html>`

// newSite serves a few static pages.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, docsPage)
	})
	mux.HandleFunc("/other", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Other</title></head><body>nothing here</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// stack is a daemon assembled the way webpaneld serve does it, minus the
// listener: a running UI loop, the headless engine and an in-memory window table.
type stack struct {
	loop *uiloop.Loop
	win  *window.Table
	reg  *panel.Registry
	api  *client.Client
}

func newStack(t *testing.T, st store.Store) *stack {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	loop := uiloop.New(zerolog.Nop())
	go loop.Run(ctx)

	win := window.NewTable(loop)
	cfg := panel.RegistryConfig{
		Engine:      headless.New(loop, headless.Config{}),
		Windows:     win,
		UserDataDir: t.TempDir(),
	}
	if st != nil {
		cfg.Persister = st
	}
	reg := panel.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(panel.NewService(reg, loop)))
	t.Cleanup(func() {
		srv.Close()
		_ = loop.Do(context.Background(), reg.Shutdown)
		cancel()
		<-loop.Done()
	})
	return &stack{loop: loop, win: win, reg: reg, api: client.New(srv.URL)}
}

func (s *stack) onLoop(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, s.loop.Do(context.Background(), fn))
}

// waitFor polls the instance until cond holds.
func (s *stack) waitFor(t *testing.T, id string, cond func(types.InstanceStatus) bool) types.InstanceStatus {
	t.Helper()
	var last types.InstanceStatus
	require.Eventually(t, func() bool {
		st, err := s.api.Get(context.Background(), id)
		if err != nil {
			return false
		}
		last = st
		return cond(st)
	}, 5*time.Second, 10*time.Millisecond, "instance %q never reached the expected state; last=%+v", id, last)
	return last
}
