package find

import (
	"github.com/rs/zerolog"

	"webpanel/internal/engine"
)

// State of a find session.
type State int

const (
	Closed State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "closed"
}

// Counter is the user-facing match position: Current is 1-based, 0 means no
// active match. 0 <= Current <= Total always holds.
type Counter struct {
	Current int
	Total   int
}

// Probe is what an AutoActivatePolicy sees on every engine event.
type Probe struct {
	HighlightAll  bool
	AutoActivated bool
	RawIndex      int
	RawTotal      int
}

// AutoActivatePolicy decides whether Sync issues an implicit FindNext to
// select the first match.
type AutoActivatePolicy func(Probe) bool

// SelectFirstMatch is the default policy: when not highlighting all matches,
// an engine that reports matches without an active one gets exactly one
// implicit advance per session.
func SelectFirstMatch(p Probe) bool {
	return !p.HighlightAll && !p.AutoActivated && p.RawIndex < 0 && p.RawTotal > 0
}

// NeverAutoActivate disables implicit advances.
func NeverAutoActivate(Probe) bool { return false }

// Config configures a Session.
type Config struct {
	// AutoActivate defaults to SelectFirstMatch.
	AutoActivate AutoActivatePolicy
	Logger       zerolog.Logger
}

// Status is a read-only snapshot of a session.
type Status struct {
	State         State
	Query         string
	CaseSensitive bool
	HighlightAll  bool
	Counter       Counter
	Supported     bool
	ShowBar       bool
	AutoActivated bool
}

// Session is one instance's find state.
type Session struct {
	policy AutoActivatePolicy
	log    zerolog.Logger

	finder     engine.Finder
	notify     func()
	opts       engine.FindOptions
	indexTok   engine.Token
	countTok   engine.Token
	subscribed bool

	state         State
	query         string
	caseSensitive bool
	highlightAll  bool
	counter       Counter
	autoActivated bool
	implicitNexts int
	showBar       bool
}

// New returns a closed session with no finder attached.
func New(cfg Config) *Session {
	policy := cfg.AutoActivate
	if policy == nil {
		policy = SelectFirstMatch
	}
	return &Session{policy: policy, log: cfg.Logger}
}

// Attach binds the engine finder. f may be nil when the engine has no native
// find; notify is subscribed to the finder's index and count events.
func (s *Session) Attach(f engine.Finder, notify func()) {
	if s.finder != nil {
		s.Close()
	}
	s.finder = f
	s.notify = notify
	if f == nil {
		s.log.Debug().Msg("native find not supported")
	}
}

// Detach closes the session and forgets the finder.
func (s *Session) Detach() {
	s.Close()
	s.finder = nil
	s.notify = nil
}

// Supported reports whether a native finder is attached.
func (s *Session) Supported() bool { return s.finder != nil }

// StartOrUpdate (re)starts the search. An empty query closes the session.
// The same query twice restarts from the top.
func (s *Session) StartOrUpdate(query string, caseSensitive, highlightAll bool) {
	if query == "" {
		s.Close()
		return
	}
	if s.finder == nil {
		s.log.Debug().Str("query", query).Msg("find start ignored: not available")
		return
	}
	if s.state == Active {
		s.finder.Stop()
	}
	s.releaseOptions()
	opts, err := s.finder.CreateOptions()
	if err != nil || opts == nil {
		s.log.Warn().Err(err).Msg("find start aborted: no options")
		s.state = Closed
		s.counter = Counter{}
		return
	}
	opts.SetTerm(query)
	opts.SetCaseSensitive(caseSensitive)
	opts.SetHighlightAll(highlightAll)
	opts.SetSuppressDefaultDialog(true)
	s.opts = opts
	s.subscribe()

	s.state = Active
	s.query = query
	s.caseSensitive = caseSensitive
	s.highlightAll = highlightAll
	s.counter = Counter{}
	s.autoActivated = false

	log := s.log
	s.finder.Start(opts, func(err error) {
		if err != nil {
			log.Warn().Err(err).Msg("find start failed")
		}
	})
	s.log.Debug().Str("query", query).Bool("case", caseSensitive).Bool("highlight", highlightAll).Msg("find start")
}

// Navigate advances to the next or previous match. It reports whether the
// request reached the engine.
func (s *Session) Navigate(forward bool) bool {
	if s.state != Active || s.finder == nil {
		s.log.Debug().Bool("forward", forward).Msg("find navigate ignored: inactive")
		return false
	}
	if forward {
		s.finder.FindNext()
	} else {
		s.finder.FindPrevious()
	}
	return true
}

// Close stops the native session, unsubscribes and resets the counter.
func (s *Session) Close() {
	if s.state == Closed && !s.subscribed && s.opts == nil {
		return
	}
	if s.finder != nil {
		if s.state == Active {
			s.finder.Stop()
		}
		if s.subscribed {
			s.finder.Remove(s.indexTok)
			s.finder.Remove(s.countTok)
		}
	}
	s.subscribed = false
	s.indexTok, s.countTok = "", ""
	s.releaseOptions()
	s.state = Closed
	s.counter = Counter{}
	s.autoActivated = false
	s.log.Debug().Msg("find closed")
}

// Sync recomputes the counter from the engine's raw values and applies the
// auto-activation policy. It reports whether the counter changed.
func (s *Session) Sync() (Counter, bool) {
	if s.finder == nil || s.state != Active {
		return s.counter, false
	}
	rawIndex := s.finder.ActiveMatchIndex()
	rawTotal := s.finder.MatchCount()
	next := Normalize(rawIndex, rawTotal)
	changed := next != s.counter
	s.counter = next

	probe := Probe{HighlightAll: s.highlightAll, AutoActivated: s.autoActivated, RawIndex: rawIndex, RawTotal: rawTotal}
	if s.policy(probe) {
		s.autoActivated = true
		s.implicitNexts++
		s.log.Debug().Int("total", rawTotal).Msg("find auto-activate first match")
		s.finder.FindNext()
	}
	return s.counter, changed
}

// Normalize maps raw engine reporting (0-based index, -1 for none) to a
// clamped 1-based Counter.
func Normalize(rawIndex, rawTotal int) Counter {
	if rawTotal <= 0 {
		return Counter{}
	}
	c := Counter{Total: rawTotal}
	if rawIndex >= 0 {
		c.Current = rawIndex + 1
	}
	if c.Current > c.Total {
		c.Current = c.Total
	}
	return c
}

// Counter returns the current counter; (0,0) when closed or unsupported.
func (s *Session) Counter() Counter { return s.counter }

// State returns the session state.
func (s *Session) State() State { return s.state }

// ImplicitAdvances reports how many implicit FindNext calls were issued.
func (s *Session) ImplicitAdvances() int { return s.implicitNexts }

// ShowBar reports the find bar visibility intent.
func (s *Session) ShowBar() bool { return s.showBar }

// SetShowBar records the find bar visibility intent. Hiding the bar closes
// the session.
func (s *Session) SetShowBar(v bool) {
	s.showBar = v
	if !v {
		s.Close()
	}
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	return Status{
		State:         s.state,
		Query:         s.query,
		CaseSensitive: s.caseSensitive,
		HighlightAll:  s.highlightAll,
		Counter:       s.counter,
		Supported:     s.finder != nil,
		ShowBar:       s.showBar,
		AutoActivated: s.autoActivated,
	}
}

func (s *Session) subscribe() {
	if s.subscribed || s.notify == nil {
		return
	}
	s.indexTok = s.finder.OnActiveMatchIndexChanged(s.notify)
	s.countTok = s.finder.OnMatchCountChanged(s.notify)
	s.subscribed = true
}

func (s *Session) releaseOptions() {
	if s.opts != nil {
		s.opts.Release()
		s.opts = nil
	}
}
