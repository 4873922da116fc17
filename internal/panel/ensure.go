package panel

import (
	"context"
	"time"

	"webpanel/internal/engine"
	"webpanel/internal/window"
)

// EnsureAndMaybeNavigate returns the instance for req.ID, creating it when
// absent. A non-empty URL is always remembered as the instance's last URL;
// it is navigated immediately only when req.Navigate is set and the engine is
// ready, otherwise it is navigated once initialization completes. A previous
// failed initialization is retried when req.Navigate is set.
func (r *Registry) EnsureAndMaybeNavigate(ctx context.Context, req EnsureRequest) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return Info{}, ErrClosed
	}
	id, wasRandom := normalizeFree(req.ID, r.idTakenLocked)

	rec, ok := r.records[id]
	if !ok {
		rec = r.newRecordLocked(id, wasRandom)
		r.applyRequestLocked(rec, req)
		r.beginInitLocked(rec)
		return rec.info(), nil
	}

	r.applyRequestLocked(rec, req)
	switch {
	case req.Navigate && rec.state == StateReady && req.URL != "":
		r.navigateLocked(rec, req.URL)
	case req.Navigate && rec.initFailed && !rec.initInFlight:
		rec.log.Info().Uint64("attempt", rec.attempt+1).Msg("retrying engine init")
		r.beginInitLocked(rec)
	}
	return rec.info(), nil
}

// idTakenLocked reports whether id is live or still holds state remembered
// from a previous run; generated ids must avoid both.
func (r *Registry) idTakenLocked(id string) bool {
	if _, ok := r.records[id]; ok {
		return true
	}
	_, ok := r.remembered[id]
	return ok
}

func (r *Registry) applyRequestLocked(rec *record, req EnsureRequest) {
	if req.Title != "" && req.Title != rec.titleOverride {
		rec.titleOverride = req.Title
		r.updateTitlesLocked(rec)
	}
	if req.Mode != ModeUnset {
		rec.mode = req.Mode
	}
	if req.URL != "" {
		rec.lastURL = req.URL
	}
}

// AttachWindow records that the host realized window h for id. It drives
// controller creation when the environment is already available.
func (r *Registry) AttachWindow(id string, h window.Handle) error {
	r.mu.Lock()
	defer r.unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrInstanceNotFound(id)
	}
	r.attachWindowLocked(rec, h)
	return nil
}

func (r *Registry) attachWindowLocked(rec *record, h window.Handle) {
	if h == window.None || rec.window == h {
		return
	}
	if rec.window != window.None {
		delete(r.byWindow, rec.window)
	}
	rec.window = h
	rec.realizing = false
	r.byWindow[h] = rec.id
	rec.log.Debug().Stringer("window", h).Msg("window attached")
	r.windows.Relayout(h, rec.layout())
	if rec.lastWndText != "" {
		r.windows.SetText(h, rec.lastWndText)
	}
	r.maybeCreateControllerLocked(rec)
}

// beginInitLocked starts (or restarts) the asynchronous init pipeline.
func (r *Registry) beginInitLocked(rec *record) {
	if rec.state == StateUninitialized {
		r.transitionLocked(rec, StateInitializing)
	}
	if rec.state != StateInitializing {
		return
	}
	rec.attempt++
	rec.initInFlight = true
	rec.initFailed = false
	rec.initErr = ""
	rec.ctrlRequested = false
	initAttempts.Inc()

	if err := r.engine.Available(); err != nil {
		r.initFailedLocked(rec, "available", err)
		return
	}

	id, gen, attempt := rec.id, rec.gen, rec.attempt
	if rec.window == window.None && !rec.realizing {
		rec.realizing = true
		r.windows.Realize(id, rec.dock.placement(), func(h window.Handle, err error) {
			r.onWindowRealized(id, gen, h, err)
		})
	}
	r.engine.CreateEnvironment(engine.EnvironmentOptions{UserDataDir: r.userDataDir, InstanceID: id}, func(env engine.Environment, err error) {
		r.onEnvironment(id, gen, attempt, env, err)
	})
}

func (r *Registry) maybeCreateControllerLocked(rec *record) {
	if rec.pendingEnv == nil || rec.window == window.None || rec.ctrlRequested {
		return
	}
	rec.ctrlRequested = true
	id, gen, attempt := rec.id, rec.gen, rec.attempt
	rec.pendingEnv.CreateController(rec.window, func(c engine.Controller, err error) {
		r.onController(id, gen, attempt, c, err)
	})
}

func (r *Registry) initFailedLocked(rec *record, stage string, err error) {
	rec.initInFlight = false
	rec.initFailed = true
	rec.initErr = err.Error()
	rec.ctrlRequested = false
	if rec.pendingEnv != nil {
		rec.pendingEnv.Release()
		rec.pendingEnv = nil
	}
	initFailures.WithLabelValues(stage).Inc()
	rec.log.Error().Err(err).Str("stage", stage).Uint64("attempt", rec.attempt).Msg("engine init failed")
	r.emit(EventInitFailed, rec.id, map[string]any{"stage": stage, "error": err.Error()})
}

// becomeReadyLocked wires a freshly created controller into rec.
func (r *Registry) becomeReadyLocked(rec *record, ctrl engine.Controller) {
	sess := ctrl.Session()
	native := &nativeHandles{env: rec.pendingEnv, ctrl: ctrl, sess: sess}
	rec.pendingEnv = nil

	id, gen := rec.id, rec.gen
	native.subs = append(native.subs, sess.Subscribe(engine.SessionHandlers{
		TitleChanged: func() { r.onTitleChanged(id, gen) },
		NavigationStarting: func(ev engine.NavigationEvent) {
			r.onNavigation(id, gen, ev, false)
		},
		NavigationCompleted: func(ev engine.NavigationEvent) {
			r.onNavigation(id, gen, ev, true)
		},
	}))
	native.subs = append(native.subs, ctrl.OnFocus(
		func() { r.onFocusGained(id, gen) },
		func() { r.onFocusLost(id, gen) },
	))

	if !r.transitionLocked(rec, StateReady) {
		native.release()
		return
	}
	rec.native = native
	rec.initInFlight = false
	rec.initFailed = false
	rec.readyAt = time.Now()
	initLatency.Observe(rec.readyAt.Sub(rec.createdAt).Seconds())

	finder, _ := sess.Finder()
	rec.find.Attach(finder, func() { r.onFindChanged(id, gen) })

	url := rec.lastURL
	if url == "" {
		url = r.defaultURL
	}
	if url != "" {
		r.navigateLocked(rec, url)
	}
	r.updateTitlesLocked(rec)
	if r.windows.Valid(rec.window) {
		r.windows.Relayout(rec.window, rec.layout())
	}
	rec.log.Info().Str("engine", r.engine.Name()).Bool("find", finder != nil).Msg("engine ready")
	r.emit(EventReady, rec.id, map[string]any{"engine": r.engine.Name()})
}

func (r *Registry) navigateLocked(rec *record, url string) {
	rec.lastURL = url
	sess := rec.session()
	if sess == nil {
		return
	}
	if err := sess.Navigate(url); err != nil {
		rec.log.Warn().Err(err).Str("url", url).Msg("navigate failed")
		return
	}
	navigations.Inc()
	r.emit(EventNavigate, rec.id, map[string]any{"url": url})
}
