package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"webpanel/internal/common/fsutil"
	"webpanel/internal/config"
	"webpanel/internal/engine"
	"webpanel/internal/engine/headless"
	"webpanel/internal/engine/pwengine"
	"webpanel/internal/find"
	"webpanel/internal/httpapi"
	"webpanel/internal/panel"
	"webpanel/internal/store"
	"webpanel/internal/title"
	"webpanel/internal/uiloop"
	"webpanel/internal/urlclass"
	"webpanel/internal/window"
)

const (
	defaultUserDataDir = "~/.webpanel/profiles"
	shutdownTimeout    = 5 * time.Second
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr, engineName, statePath, defaultURL, userDataDir string
		external, corsOrigins                                string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the panel registry and its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("addr") {
				cfg.Addr = addr
			}
			if f.Changed("engine") {
				cfg.Engine = engineName
			}
			if f.Changed("state") {
				cfg.StatePath = statePath
			}
			if f.Changed("default-url") {
				cfg.DefaultURL = defaultURL
			}
			if f.Changed("user-data-dir") {
				cfg.UserDataDir = userDataDir
			}
			if f.Changed("external") {
				cfg.ExternalPatterns = splitCSV(external)
			}
			if f.Changed("cors-origins") {
				cfg.CORSEnabled = true
				cfg.CORSAllowedOrigins = splitCSV(corsOrigins)
			}
			cfg = cfg.WithDefaults()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			log := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", config.DefaultAddr, "HTTP listen address, e.g. :8089")
	f.StringVar(&engineName, "engine", config.DefaultEngine, "Browser engine: headless|playwright|none")
	f.StringVar(&statePath, "state", "", "State file (.db, .yaml or .json); empty disables persistence")
	f.StringVar(&defaultURL, "default-url", "", "URL opened by instances created without one")
	f.StringVar(&userDataDir, "user-data-dir", defaultUserDataDir, "Directory holding per-instance browser profiles")
	f.StringVar(&external, "external", "", "Comma-separated glob patterns of URLs opened outside the panel")
	f.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")
	return cmd
}

// buildEngine returns the configured engine and a close func.
func buildEngine(cfg config.Config, post uiloop.Poster, log zerolog.Logger) (engine.Engine, func()) {
	switch cfg.Engine {
	case config.EnginePlaywright:
		e := pwengine.New(post, pwengine.Config{
			Headful: cfg.PlaywrightHeadful,
			Install: cfg.PlaywrightInstall,
			Logger:  log.With().Str("engine", "playwright").Logger(),
		})
		return e, func() {
			if err := e.Close(); err != nil {
				log.Warn().Err(err).Msg("playwright close")
			}
		}
	case config.EngineHeadless:
		return headless.New(post, headless.Config{Logger: log.With().Str("engine", "headless").Logger()}), func() {}
	default:
		return nil, func() {}
	}
}

func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	loop := uiloop.New(log.With().Str("component", "uiloop").Logger())
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	eng, closeEngine := buildEngine(cfg, loop, log)
	defer closeEngine()

	classifier, err := urlclass.New(cfg.ExternalPatterns)
	if err != nil {
		return err
	}
	userDataDir := cfg.UserDataDir
	if userDataDir == "" {
		userDataDir = defaultUserDataDir
	}
	if userDataDir, err = fsutil.ExpandHome(userDataDir); err != nil {
		return err
	}

	var st store.Store
	if cfg.StatePath != "" {
		if st, err = store.Open(ctx, cfg.StatePath); err != nil {
			return fmt.Errorf("open state: %w", err)
		}
		defer st.Close() //nolint:errcheck
	}

	policy := find.SelectFirstMatch
	if !cfg.AutoActivate() {
		policy = find.NeverAutoActivate
	}
	maxTab := cfg.TitleMaxTab
	if maxTab == 0 {
		maxTab = panel.DefaultMaxTab
	}
	rcfg := panel.RegistryConfig{
		Engine:            eng,
		Windows:           window.NewTable(loop),
		Titles:            title.Composer{Base: cfg.TitleBase, MaxTab: maxTab},
		Classifier:        classifier,
		Publisher:         panel.LogPublisher{Log: log},
		Logger:            log,
		DefaultInstanceID: cfg.DefaultInstanceID,
		DefaultURL:        cfg.DefaultURL,
		UserDataDir:       userDataDir,
		FindAutoActivate:  policy,
	}
	if st != nil {
		rcfg.Persister = st
	}
	reg := panel.NewWithConfig(rcfg)

	if st != nil {
		if err := restore(ctx, loop, reg, log); err != nil {
			log.Warn().Err(err).Msg("restore state")
		}
	}

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	if cfg.CORSEnabled {
		httpapi.SetCORSOptions(true, cfg.CORSAllowedOrigins,
			[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			[]string{"Content-Type", "X-Log-Level"})
	}
	svc := panel.NewService(reg, loop)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("engine", reg.EngineName()).Msg("webpaneld listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if iv := cfg.PurgeInterval(); iv > 0 {
		go purgeLoop(ctx, iv, svc, loop, reg, st != nil, log)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	if err := loop.Do(sctx, func() {
		if st != nil {
			if err := reg.SaveAll(sctx); err != nil {
				log.Warn().Err(err).Msg("save state")
			}
		}
		reg.Shutdown()
	}); err != nil {
		log.Warn().Err(err).Msg("registry shutdown")
	}
	return serveErr
}

// restore loads remembered instances and reopens the ones in Always mode.
func restore(ctx context.Context, loop *uiloop.Loop, reg *panel.Registry, log zerolog.Logger) error {
	var err error
	if derr := loop.Do(ctx, func() {
		var n int
		if n, err = reg.LoadAll(ctx); err != nil {
			return
		}
		var ids []string
		if ids, err = reg.RestoreAlways(ctx); err != nil {
			return
		}
		log.Info().Int("remembered", n).Strs("restored", ids).Msg("state restored")
	}); derr != nil {
		return derr
	}
	return err
}

// purgeLoop removes instances whose window died and saves state afterwards.
func purgeLoop(ctx context.Context, every time.Duration, svc *panel.Service, loop *uiloop.Loop, reg *panel.Registry, persist bool, log zerolog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		n, err := svc.Purge(ctx)
		if err != nil || n == 0 || !persist {
			continue
		}
		if err := loop.Do(ctx, func() {
			if err := reg.SaveAll(ctx); err != nil {
				log.Warn().Err(err).Msg("save state after purge")
			}
		}); err != nil {
			return
		}
	}
}
