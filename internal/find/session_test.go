package find

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webpanel/internal/engine"
	"webpanel/internal/engine/enginetest"
	"webpanel/internal/uiloop"
	"webpanel/internal/window"
)

// newFinder builds a fake finder reporting matches for any term.
func newFinder(t *testing.T, matches int) (*enginetest.Finder, *uiloop.Queue) {
	t.Helper()
	q := uiloop.NewQueue()
	eng := enginetest.New(q)
	eng.Matches = matches
	var env engine.Environment
	eng.CreateEnvironment(engine.EnvironmentOptions{}, func(e engine.Environment, err error) {
		require.NoError(t, err)
		env = e
	})
	q.Drain()
	var ctrl engine.Controller
	env.CreateController(window.Handle(1), func(c engine.Controller, err error) {
		require.NoError(t, err)
		ctrl = c
	})
	q.Drain()
	f, ok := ctrl.Session().Finder()
	require.True(t, ok)
	return f.(*enginetest.Finder), q
}

func attached(t *testing.T, matches int, cfg Config) (*Session, *enginetest.Finder, *uiloop.Queue) {
	t.Helper()
	f, q := newFinder(t, matches)
	s := New(cfg)
	s.Attach(f, func() { s.Sync() })
	return s, f, q
}

func TestStartSelectsFirstMatchOnce(t *testing.T) {
	s, f, q := attached(t, 3, Config{})
	s.StartOrUpdate("foo", false, false)
	q.Drain()

	_, nexts, _, _ := f.Calls()
	assert.Equal(t, 1, nexts, "exactly one implicit FindNext")
	assert.Equal(t, Counter{Current: 1, Total: 3}, s.Counter())

	// Engine reports the unset index again: no further implicit jump.
	f.Report(-1, 3)
	q.Drain()
	_, nexts, _, _ = f.Calls()
	assert.Equal(t, 1, nexts)
	assert.Equal(t, Counter{Current: 0, Total: 3}, s.Counter())
	assert.Equal(t, 1, s.ImplicitAdvances())
}

func TestHighlightAllSkipsAutoActivation(t *testing.T) {
	s, f, q := attached(t, 3, Config{})
	s.StartOrUpdate("foo", false, true)
	q.Drain()
	_, nexts, _, _ := f.Calls()
	assert.Zero(t, nexts)
	assert.Equal(t, Counter{Current: 0, Total: 3}, s.Counter())
}

func TestNeverAutoActivatePolicy(t *testing.T) {
	s, f, q := attached(t, 2, Config{AutoActivate: NeverAutoActivate})
	s.StartOrUpdate("foo", false, false)
	q.Drain()
	_, nexts, _, _ := f.Calls()
	assert.Zero(t, nexts)
}

func TestStartThenNavigate(t *testing.T) {
	s, _, q := attached(t, 2, Config{})
	s.StartOrUpdate("foo", false, false)
	q.Drain()
	require.Equal(t, Counter{Current: 1, Total: 2}, s.Counter())

	require.True(t, s.Navigate(true))
	q.Drain()
	assert.Equal(t, Counter{Current: 2, Total: 2}, s.Counter())

	require.True(t, s.Navigate(false))
	q.Drain()
	assert.Equal(t, Counter{Current: 1, Total: 2}, s.Counter())
}

func TestEachStartUsesFreshOptions(t *testing.T) {
	s, f, q := attached(t, 1, Config{})
	s.StartOrUpdate("foo", true, false)
	q.Drain()
	s.StartOrUpdate("foo", false, false)
	q.Drain()

	opts := f.Options()
	require.Len(t, opts, 2)
	assert.NotSame(t, opts[0], opts[1])
	assert.Equal(t, 1, opts[0].Released(), "previous options released")
	assert.Zero(t, opts[1].Released())
	assert.True(t, opts[0].CaseSensitive)
	assert.False(t, opts[1].CaseSensitive)
	assert.True(t, opts[1].Suppress)

	starts, nexts, _, stops := f.Calls()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, stops, "previous native session stopped before restart")
	assert.Equal(t, 2, nexts, "restart re-arms auto-activation")
	idx, cnt := f.Subscribers()
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, cnt)
}

func TestCloseReleasesEverything(t *testing.T) {
	s, f, q := attached(t, 2, Config{})
	s.StartOrUpdate("foo", false, false)
	q.Drain()
	s.Close()

	assert.Equal(t, Closed, s.State())
	assert.Equal(t, Counter{}, s.Counter())
	idx, cnt := f.Subscribers()
	assert.Zero(t, idx)
	assert.Zero(t, cnt)
	assert.Equal(t, 1, f.Options()[0].Released())

	_, _, _, stops := f.Calls()
	s.Close()
	_, _, _, stops2 := f.Calls()
	assert.Equal(t, stops, stops2, "closing a closed session is a no-op")
	assert.False(t, s.Navigate(true))
}

func TestEmptyQueryCloses(t *testing.T) {
	s, _, q := attached(t, 2, Config{})
	s.StartOrUpdate("foo", false, false)
	q.Drain()
	s.StartOrUpdate("", false, false)
	assert.Equal(t, Closed, s.State())
	assert.Equal(t, Counter{}, s.Counter())
}

func TestUnsupportedFinderIsNoOp(t *testing.T) {
	s := New(Config{})
	s.Attach(nil, nil)
	s.StartOrUpdate("foo", false, false)
	assert.False(t, s.Supported())
	assert.Equal(t, Closed, s.State())
	assert.Equal(t, Counter{}, s.Counter())
	assert.False(t, s.Navigate(true))
	c, changed := s.Sync()
	assert.Equal(t, Counter{}, c)
	assert.False(t, changed)
}

func TestNormalizeInvariants(t *testing.T) {
	for _, total := range []int{-3, -1, 0, 1, 2, 7} {
		for _, idx := range []int{-9, -1, 0, 1, 5, 6, 7, 40} {
			c := Normalize(idx, total)
			assert.GreaterOrEqual(t, c.Current, 0)
			assert.LessOrEqual(t, c.Current, c.Total)
			if c.Total == 0 {
				assert.Zero(t, c.Current)
			}
		}
	}
	assert.Equal(t, Counter{Current: 2, Total: 2}, Normalize(5, 2))
	assert.Equal(t, Counter{Current: 1, Total: 4}, Normalize(0, 4))
}

func TestCounterInvariantsOverEventSequence(t *testing.T) {
	s, f, q := attached(t, 4, Config{})
	s.StartOrUpdate("x", false, true)
	q.Drain()
	seq := [][2]int{{-1, 4}, {3, 4}, {9, 4}, {2, 0}, {-4, -2}, {0, 1}}
	for _, ev := range seq {
		f.Report(ev[0], ev[1])
		q.Drain()
		c := s.Counter()
		require.GreaterOrEqual(t, c.Current, 0)
		require.LessOrEqual(t, c.Current, c.Total)
		if c.Total == 0 {
			require.Zero(t, c.Current)
		}
	}
}

func TestShowBarHideCloses(t *testing.T) {
	s, _, q := attached(t, 2, Config{})
	s.SetShowBar(true)
	s.StartOrUpdate("foo", false, false)
	q.Drain()
	s.SetShowBar(false)
	st := s.Status()
	assert.False(t, st.ShowBar)
	assert.Equal(t, Closed, st.State)
	assert.True(t, st.Supported)
}
