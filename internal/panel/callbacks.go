package panel

import (
	"webpanel/internal/engine"
	"webpanel/internal/title"
	"webpanel/internal/window"
)

// Completions and engine events below arrive on the UI loop. Each one looks
// its record up again by (id, generation) and is dropped if the instance was
// purged, closed or replaced in the meantime.

func (r *Registry) skipLocked(id, kind string) {
	callbacksSkipped.WithLabelValues(kind).Inc()
	r.log.Debug().Str("instance", id).Str("callback", kind).Msg("callback_skip")
	r.emit(EventCallbackSkip, id, map[string]any{"callback": kind})
}

func (r *Registry) onWindowRealized(id string, gen uint64, h window.Handle, err error) {
	r.mu.Lock()
	defer r.unlock()
	rec := r.lookupLocked(id, gen)
	if rec == nil {
		if err == nil && h != window.None {
			r.windows.Destroy(h)
		}
		r.skipLocked(id, "window")
		return
	}
	rec.realizing = false
	if err != nil {
		if rec.state == StateInitializing {
			r.initFailedLocked(rec, "window", err)
		}
		return
	}
	r.attachWindowLocked(rec, h)
}

func (r *Registry) onEnvironment(id string, gen, attempt uint64, env engine.Environment, err error) {
	r.mu.Lock()
	defer r.unlock()
	rec := r.lookupLocked(id, gen)
	if rec == nil || rec.attempt != attempt || !rec.initInFlight {
		if env != nil {
			env.Release()
		}
		r.skipLocked(id, "environment")
		return
	}
	if err != nil {
		r.initFailedLocked(rec, "environment", err)
		return
	}
	if rec.pendingEnv != nil {
		rec.pendingEnv.Release()
	}
	rec.pendingEnv = env
	rec.log.Debug().Uint64("attempt", attempt).Msg("environment created")
	r.maybeCreateControllerLocked(rec)
}

func (r *Registry) onController(id string, gen, attempt uint64, ctrl engine.Controller, err error) {
	r.mu.Lock()
	defer r.unlock()
	rec := r.lookupLocked(id, gen)
	if rec == nil || rec.attempt != attempt || !rec.initInFlight || rec.state != StateInitializing {
		if ctrl != nil {
			ctrl.Release()
		}
		r.skipLocked(id, "controller")
		return
	}
	if err != nil {
		r.initFailedLocked(rec, "controller", err)
		return
	}
	r.becomeReadyLocked(rec, ctrl)
}

// readyLocked returns the record only while it is Ready.
func (r *Registry) readyLocked(id string, gen uint64, kind string) *record {
	rec := r.lookupLocked(id, gen)
	if rec == nil || rec.state != StateReady {
		r.skipLocked(id, kind)
		return nil
	}
	return rec
}

func (r *Registry) onTitleChanged(id string, gen uint64) {
	r.mu.Lock()
	defer r.unlock()
	if rec := r.readyLocked(id, gen, "title"); rec != nil {
		r.updateTitlesLocked(rec)
	}
}

func (r *Registry) onNavigation(id string, gen uint64, ev engine.NavigationEvent, completed bool) {
	r.mu.Lock()
	defer r.unlock()
	kind := "navigation_starting"
	if completed {
		kind = "navigation_completed"
	}
	rec := r.readyLocked(id, gen, kind)
	if rec == nil {
		return
	}
	if completed {
		if ev.Success && ev.URL != "" {
			rec.lastURL = ev.URL
		}
		if !ev.Success {
			rec.log.Warn().Str("url", ev.URL).Str("status", ev.Status).Msg("navigation failed")
		}
		r.emit(EventNavigated, id, map[string]any{"url": ev.URL, "success": ev.Success})
	}
	r.updateTitlesLocked(rec)
}

func (r *Registry) onFocusGained(id string, gen uint64) {
	r.mu.Lock()
	defer r.unlock()
	if rec := r.readyLocked(id, gen, "focus_gained"); rec != nil {
		r.markFocusLocked(rec)
	}
}

func (r *Registry) onFocusLost(id string, gen uint64) {
	r.mu.Lock()
	defer r.unlock()
	if rec := r.readyLocked(id, gen, "focus_lost"); rec != nil {
		r.focus.Lost(id)
		focusEvents.WithLabelValues("lost").Inc()
	}
}

func (r *Registry) markFocusLocked(rec *record) {
	rec.focusTick = r.focus.Gained(rec.id)
	focusEvents.WithLabelValues("gained").Inc()
	r.emit(EventFocus, rec.id, map[string]any{"tick": rec.focusTick})
}

func (r *Registry) onFindChanged(id string, gen uint64) {
	r.mu.Lock()
	defer r.unlock()
	rec := r.readyLocked(id, gen, "find")
	if rec == nil {
		return
	}
	before := rec.find.ImplicitAdvances()
	c, changed := rec.find.Sync()
	if n := rec.find.ImplicitAdvances() - before; n > 0 {
		findImplicitAdvances.Add(float64(n))
	}
	if changed {
		r.emit(EventFindCounter, id, map[string]any{"current": c.Current, "total": c.Total})
	}
}

// updateTitlesLocked recomputes captions from the session and writes them to
// the window.
func (r *Registry) updateTitlesLocked(rec *record) {
	src := title.Source{InstanceID: rec.id, Override: rec.titleOverride, URL: rec.lastURL}
	if sess := rec.session(); sess != nil {
		src.PageTitle = sess.Title()
		if u := sess.URL(); u != "" {
			src.URL = u
		}
	}
	caps := r.titles.Compose(src)
	if caps.Tab == rec.lastTabTitle && caps.Window == rec.lastWndText {
		return
	}
	rec.lastTabTitle, rec.lastWndText = caps.Tab, caps.Window
	if rec.window != window.None && r.windows.Valid(rec.window) {
		r.windows.SetText(rec.window, caps.Window)
	}
	r.emit(EventTitle, rec.id, map[string]any{"tab": caps.Tab, "window": caps.Window})
}
