package panel

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"webpanel/internal/engine"
	"webpanel/internal/find"
	"webpanel/internal/window"
)

// nativeHandles owns the engine objects of a Ready instance.
type nativeHandles struct {
	env  engine.Environment
	ctrl engine.Controller
	sess engine.Session
	subs []engine.Subscription
	once sync.Once
}

func (n *nativeHandles) release() {
	n.once.Do(func() {
		for _, s := range n.subs {
			s.Unsubscribe()
		}
		n.subs = nil
		if n.ctrl != nil {
			n.ctrl.Release()
		}
		if n.env != nil {
			n.env.Release()
		}
	})
}

// record is the registry-owned state of one instance.
type record struct {
	id        string
	gen       uint64
	wasRandom bool
	log       zerolog.Logger

	window        window.Handle
	titleOverride string
	lastURL       string
	mode          PanelMode
	dock          DockState
	lastTabTitle  string
	lastWndText   string
	focusTick     uint64

	state  EngineState
	native *nativeHandles
	find   *find.Session

	// init pipeline bookkeeping
	attempt       uint64
	initInFlight  bool
	initFailed    bool
	initErr       string
	realizing     bool
	pendingEnv    engine.Environment
	ctrlRequested bool

	createdAt time.Time
	readyAt   time.Time
}

// transition moves the record forward. Backward or repeated moves, and any
// move into Ready from a state other than Initializing, are rejected.
func (rec *record) transition(to EngineState) bool {
	from := rec.state
	if to <= from || (to == StateReady && from != StateInitializing) {
		rec.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("state transition rejected")
		return false
	}
	rec.state = to
	return true
}

func (rec *record) session() engine.Session {
	if rec.native == nil {
		return nil
	}
	return rec.native.sess
}

func (rec *record) layout() window.Layout {
	return window.Layout{TitleVisible: true, FindBarVisible: rec.find.ShowBar()}
}

func (rec *record) info() Info {
	return Info{
		ID:            rec.id,
		WasRandom:     rec.wasRandom,
		Window:        rec.window,
		TitleOverride: rec.titleOverride,
		LastURL:       rec.lastURL,
		Mode:          rec.mode,
		State:         rec.state,
		LastTabTitle:  rec.lastTabTitle,
		LastWndText:   rec.lastWndText,
		Dock:          rec.dock,
		FocusTick:     rec.focusTick,
		Find:          rec.find.Status(),
		InitFailed:    rec.initFailed,
		InitError:     rec.initErr,
		CreatedAt:     rec.createdAt,
		ReadyAt:       rec.readyAt,
	}
}

// releaseEngine drops every engine object the record owns. Safe to call more
// than once.
func (rec *record) releaseEngine() {
	rec.find.Detach()
	if rec.native != nil {
		rec.native.release()
		rec.native = nil
	}
	if rec.pendingEnv != nil {
		rec.pendingEnv.Release()
		rec.pendingEnv = nil
	}
}
