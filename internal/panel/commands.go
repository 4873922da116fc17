package panel

import (
	"context"
	"strings"

	"webpanel/internal/urlclass"
	"webpanel/internal/window"
)

// resolve maps an empty id to the active instance.
func (r *Registry) resolve(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return r.ActiveInstance()
}

// OpenOrActivate ensures the instance exists, navigates to url when given,
// then brings its window to front and focuses it.
func (r *Registry) OpenOrActivate(ctx context.Context, id, url string) (Info, error) {
	return r.Open(ctx, EnsureRequest{ID: id, URL: url})
}

// Open is OpenOrActivate with caption and mode overrides. An empty req.ID
// targets the active instance unless req.Generate asks for a generated id;
// req.Navigate is derived from req.URL. An external URL alone never creates
// an instance, matching Navigate.
func (r *Registry) Open(ctx context.Context, req EnsureRequest) (Info, error) {
	if req.Generate {
		if strings.TrimSpace(req.ID) != "" {
			return Info{}, invalidRequestError{msg: "id must be empty when a generated id is requested"}
		}
		req.ID = ""
	} else {
		req.ID = r.resolve(req.ID)
	}
	if req.URL != "" {
		res := r.classifier.Classify(req.URL)
		switch res.Kind {
		case urlclass.Invalid:
			return Info{}, invalidURLError{raw: req.URL}
		case urlclass.External:
			if err := r.openExternal(req.ID, res.URL); err != nil {
				return Info{}, err
			}
			req.URL = ""
			if req.Title == "" && req.Mode == ModeUnset {
				if req.ID == "" {
					return Info{}, nil
				}
				info, ok := r.GetByID(req.ID)
				if !ok {
					return Info{ID: req.ID}, nil
				}
				return info, nil
			}
		default:
			req.URL = res.URL
		}
	}
	req.Navigate = req.URL != ""
	info, err := r.EnsureAndMaybeNavigate(ctx, req)
	if err != nil {
		return Info{}, err
	}
	if err := r.Activate(info.ID); err != nil {
		return Info{}, err
	}
	info, _ = r.GetByID(info.ID)
	return info, nil
}

// Activate shows the instance's window and gives its page focus.
func (r *Registry) Activate(id string) error {
	id = r.resolve(id)
	r.mu.Lock()
	defer r.unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrInstanceNotFound(id)
	}
	if rec.window != window.None && r.windows.Valid(rec.window) {
		r.windows.Activate(rec.window)
	}
	if rec.native != nil {
		rec.native.ctrl.MoveFocus()
	}
	r.markFocusLocked(rec)
	return nil
}

// Navigate classifies raw and navigates the instance, creating it when
// absent. External targets go to the opener instead.
func (r *Registry) Navigate(ctx context.Context, id, raw string) (Info, error) {
	id = r.resolve(id)
	res := r.classifier.Classify(raw)
	switch res.Kind {
	case urlclass.Invalid:
		return Info{}, invalidURLError{raw: raw}
	case urlclass.External:
		if err := r.openExternal(id, res.URL); err != nil {
			return Info{}, err
		}
		info, ok := r.GetByID(id)
		if !ok {
			return Info{ID: id}, nil
		}
		return info, nil
	}
	return r.EnsureAndMaybeNavigate(ctx, EnsureRequest{ID: id, URL: res.URL, Navigate: true})
}

func (r *Registry) openExternal(id, url string) error {
	r.log.Info().Str("instance", id).Str("url", url).Msg("external url")
	r.publisher.Publish(Event{Name: EventExternalURL, InstanceID: id, Fields: map[string]any{"url": url}})
	return r.opener.Open(url)
}

// Focus records a host-reported focus gain on the instance.
func (r *Registry) Focus(id string) error {
	return r.withRecord(id, func(rec *record) error {
		r.markFocusLocked(rec)
		return nil
	})
}

// ToggleFindBar implements the find shortcut: the first press shows the find
// bar, later presses advance to the next match. Either way the instance
// becomes the focus candidate.
func (r *Registry) ToggleFindBar(id string) error {
	return r.withRecord(id, func(rec *record) error {
		if !rec.find.ShowBar() {
			rec.find.SetShowBar(true)
			r.relayoutLocked(rec)
			r.emit(EventFindBar, rec.id, map[string]any{"visible": true})
		} else {
			rec.find.Navigate(true)
		}
		r.markFocusLocked(rec)
		return nil
	})
}

// Find starts or updates the instance's search. An empty query closes it.
func (r *Registry) Find(id, query string, caseSensitive, highlightAll bool) error {
	return r.withRecord(id, func(rec *record) error {
		if rec.state != StateReady {
			rec.log.Debug().Str("state", rec.state.String()).Msg("find ignored: engine not ready")
			return nil
		}
		if query != "" {
			findSessions.Inc()
			if !rec.find.ShowBar() {
				rec.find.SetShowBar(true)
				r.relayoutLocked(rec)
			}
		}
		rec.find.StartOrUpdate(query, caseSensitive, highlightAll)
		return nil
	})
}

// FindNext moves to the next match; a no-op without an active search.
func (r *Registry) FindNext(id string) error {
	return r.withRecord(id, func(rec *record) error {
		rec.find.Navigate(true)
		return nil
	})
}

// FindPrev moves to the previous match; a no-op without an active search.
func (r *Registry) FindPrev(id string) error {
	return r.withRecord(id, func(rec *record) error {
		rec.find.Navigate(false)
		return nil
	})
}

// CloseFind ends the search and hides the find bar.
func (r *Registry) CloseFind(id string) error {
	return r.withRecord(id, func(rec *record) error {
		if rec.find.ShowBar() {
			rec.find.SetShowBar(false)
			r.relayoutLocked(rec)
			r.emit(EventFindBar, rec.id, map[string]any{"visible": false})
			return nil
		}
		rec.find.Close()
		return nil
	})
}

// SaveDock stores docking hints reported by the window layer.
func (r *Registry) SaveDock(id string, d DockState) error {
	return r.withRecord(id, func(rec *record) error {
		rec.dock = d
		return nil
	})
}

func (r *Registry) withRecord(id string, fn func(rec *record) error) error {
	id = r.resolve(id)
	r.mu.Lock()
	defer r.unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrInstanceNotFound(id)
	}
	return fn(rec)
}

func (r *Registry) relayoutLocked(rec *record) {
	if rec.window != window.None && r.windows.Valid(rec.window) {
		r.windows.Relayout(rec.window, rec.layout())
	}
}
