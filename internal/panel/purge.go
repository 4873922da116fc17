package panel

import "webpanel/internal/window"

// PurgeDead removes every instance whose attached window is no longer valid
// and returns how many were removed. Instances without a window are left
// alone; their window may still be realizing.
func (r *Registry) PurgeDead() int {
	r.mu.Lock()
	defer r.unlock()
	var dead []*record
	for _, rec := range r.records {
		if rec.window != window.None && !r.windows.Valid(rec.window) {
			dead = append(dead, rec)
		}
	}
	for _, rec := range dead {
		r.removeLocked(rec, EventPurged)
	}
	if n := len(dead); n > 0 {
		instancesPurged.Add(float64(n))
		r.log.Info().Int("count", n).Msg("purged dead instances")
	}
	return len(dead)
}

// Close disposes the instance and destroys its window, whatever state its
// engine is in. Completions still in flight for it are dropped on arrival.
func (r *Registry) Close(id string) error {
	if id == "" {
		id = r.ActiveInstance()
	}
	r.mu.Lock()
	defer r.unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrInstanceNotFound(id)
	}
	h := rec.window
	r.removeLocked(rec, EventDisposed)
	if h != window.None && r.windows.Valid(h) {
		r.windows.Destroy(h)
	}
	delete(r.remembered, id)
	return nil
}

// Shutdown disposes every instance. Later ensures fail with ErrClosed.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, rec := range r.records {
		r.removeLocked(rec, EventDisposed)
	}
	r.log.Info().Msg("registry shut down")
}

// removeLocked closes find, releases engine resources exactly once, marks the
// record Disposed and drops it from both indexes.
func (r *Registry) removeLocked(rec *record, reason string) {
	rec.releaseEngine()
	r.transitionLocked(rec, StateDisposed)
	rec.initInFlight = false
	if rec.window != window.None {
		if r.byWindow[rec.window] == rec.id {
			delete(r.byWindow, rec.window)
		}
	}
	delete(r.records, rec.id)
	instancesDisposed.Inc()
	rec.log.Info().Str("reason", reason).Msg("instance removed")
	r.emit(reason, rec.id, map[string]any{"window": rec.window.String()})
}
