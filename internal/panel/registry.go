package panel

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"webpanel/internal/engine"
	"webpanel/internal/find"
	"webpanel/internal/focus"
	"webpanel/internal/urlclass"
	"webpanel/internal/window"
)

// Registry owns every panel instance.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]*record
	byWindow map[window.Handle]string
	// remembered holds persisted state loaded by LoadAll, applied when the id
	// is next ensured.
	remembered map[string]Persisted
	gen        uint64
	closed     bool
	pending    []Event

	engine     engine.Engine
	windows    window.System
	titles     TitleComposer
	classifier URLClassifier
	opener     urlclass.Opener
	persister  Persister
	publisher  EventPublisher
	focus      *focus.Tracker
	log        zerolog.Logger

	defaultURL   string
	userDataDir  string
	autoActivate find.AutoActivatePolicy
	startedAt    time.Time
}

// NewWithConfig constructs a Registry from cfg, applying defaults.
func NewWithConfig(cfg RegistryConfig) *Registry {
	cfg = cfg.withDefaults()
	return &Registry{
		records:      make(map[string]*record),
		byWindow:     make(map[window.Handle]string),
		remembered:   make(map[string]Persisted),
		engine:       cfg.Engine,
		windows:      cfg.Windows,
		titles:       cfg.Titles,
		classifier:   cfg.Classifier,
		opener:       cfg.Opener,
		persister:    cfg.Persister,
		publisher:    cfg.Publisher,
		focus:        focus.NewTracker(cfg.DefaultInstanceID),
		log:          cfg.Logger,
		defaultURL:   cfg.DefaultURL,
		userDataDir:  cfg.UserDataDir,
		autoActivate: cfg.FindAutoActivate,
		startedAt:    time.Now(),
	}
}

// New returns a registry bound to eng and windows with default settings.
func New(eng engine.Engine, windows window.System) *Registry {
	return NewWithConfig(RegistryConfig{Engine: eng, Windows: windows})
}

// EngineName reports the configured engine.
func (r *Registry) EngineName() string { return r.engine.Name() }

// unlock releases the write lock and publishes events queued while it was held.
func (r *Registry) unlock() {
	evs := r.pending
	r.pending = nil
	r.observeStatesLocked()
	r.mu.Unlock()
	for _, e := range evs {
		r.publisher.Publish(e)
	}
}

// emit queues an event; callers hold the write lock.
func (r *Registry) emit(name, id string, fields map[string]any) {
	r.pending = append(r.pending, Event{Name: name, InstanceID: id, Fields: fields})
}

// GetByID returns a snapshot of the instance with id.
func (r *Registry) GetByID(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Info{}, false
	}
	return rec.info(), true
}

// GetByWindow returns the instance hosted in window h.
func (r *Registry) GetByWindow(h window.Handle) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byWindow[h]
	if !ok {
		return Info{}, false
	}
	rec, ok := r.records[id]
	if !ok {
		return Info{}, false
	}
	return rec.info(), true
}

// List returns snapshots of every instance sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.info())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of live instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Tick implements focus.Liveness.
func (r *Registry) Tick(id string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return 0, false
	}
	return rec.focusTick, true
}

// EachTick implements focus.Liveness.
func (r *Registry) EachTick(fn func(id string, tick uint64)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, rec := range r.records {
		fn(id, rec.focusTick)
	}
}

// ActiveInstance returns the live instance that most recently gained focus,
// or the default id when none has.
func (r *Registry) ActiveInstance() string {
	return r.focus.Active(r)
}

// FocusHistory returns recent focus transitions, oldest first.
func (r *Registry) FocusHistory() []focus.Transition {
	return r.focus.History()
}

// newRecordLocked creates and indexes an Uninitialized record, applying any
// remembered persisted state.
func (r *Registry) newRecordLocked(id string, wasRandom bool) *record {
	r.gen++
	log := r.log.With().Str("instance", id).Logger()
	rec := &record{
		id:        id,
		gen:       r.gen,
		wasRandom: wasRandom,
		log:       log,
		dock:      DefaultDockState(),
		state:     StateUninitialized,
		find:      find.New(find.Config{AutoActivate: r.autoActivate, Logger: log}),
		createdAt: time.Now(),
	}
	if p, ok := r.remembered[id]; ok {
		rec.lastURL = p.LastURL
		rec.titleOverride = p.TitleOverride
		rec.mode = p.Mode
		rec.dock = p.Dock
		delete(r.remembered, id)
	}
	r.records[id] = rec
	instancesCreated.Inc()
	r.emit(EventCreated, id, map[string]any{"random": wasRandom})
	return rec
}

// lookupLocked resolves a completion's target: the record must still exist
// and be the same generation that issued the request.
func (r *Registry) lookupLocked(id string, gen uint64) *record {
	rec, ok := r.records[id]
	if !ok || rec.gen != gen || rec.state == StateDisposed {
		return nil
	}
	return rec
}

func (r *Registry) transitionLocked(rec *record, to EngineState) bool {
	from := rec.state
	if !rec.transition(to) {
		return false
	}
	r.emit(EventState, rec.id, map[string]any{"from": from.String(), "to": to.String()})
	return true
}

func (r *Registry) observeStatesLocked() {
	counts := map[EngineState]int{}
	for _, rec := range r.records {
		counts[rec.state]++
	}
	for _, s := range []EngineState{StateUninitialized, StateInitializing, StateReady} {
		instancesByState.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
