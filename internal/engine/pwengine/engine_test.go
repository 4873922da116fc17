package pwengine

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webpanel/internal/engine"
	"webpanel/internal/uiloop"
)

func TestDriverFailureMarksEngineUnavailable(t *testing.T) {
	q := uiloop.NewQueue()
	e := New(q, Config{})
	calls := 0
	e.run = func() (*playwright.Playwright, error) {
		calls++
		return nil, errors.New("driver not installed")
	}
	require.NoError(t, e.Available(), "available until a start is attempted")

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		e.CreateEnvironment(engine.EnvironmentOptions{InstanceID: "a"}, func(env engine.Environment, err error) {
			assert.Nil(t, env)
			done <- err
		})
	}
	for i := 0; i < 2; i++ {
		for q.Len() == 0 {
			// completions are posted from a goroutine
			runtime.Gosched()
		}
		q.Step()
		err := <-done
		assert.True(t, errors.Is(err, engine.ErrUnavailable))
	}
	assert.Equal(t, 1, calls, "driver start is attempted once")
	assert.ErrorIs(t, e.Available(), engine.ErrUnavailable)
	assert.NoError(t, e.Close())
}

func TestAvailableAnswersWhileDriverStarts(t *testing.T) {
	q := uiloop.NewQueue()
	e := New(q, Config{})
	entered := make(chan struct{})
	release := make(chan struct{})
	e.run = func() (*playwright.Playwright, error) {
		close(entered)
		<-release
		return nil, errors.New("driver not installed")
	}
	e.CreateEnvironment(engine.EnvironmentOptions{InstanceID: "a"}, func(engine.Environment, error) {})
	<-entered

	answered := make(chan error, 1)
	go func() { answered <- e.Available() }()
	select {
	case err := <-answered:
		assert.NoError(t, err, "no failure recorded while the start is in flight")
	case <-time.After(time.Second):
		close(release)
		t.Fatal("Available blocked on the driver start")
	}

	close(release)
	require.Eventually(t, func() bool { return e.Available() != nil }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, e.Available(), engine.ErrUnavailable)
	assert.NoError(t, e.Close())
}

func TestSessionReportsNoFinder(t *testing.T) {
	s := &Session{eng: New(uiloop.NewQueue(), Config{})}
	f, ok := s.Finder()
	assert.False(t, ok)
	assert.Nil(t, f)
}

func TestDetachedSessionStopsRaising(t *testing.T) {
	q := uiloop.NewQueue()
	s := &Session{eng: New(q, Config{})}
	s.Subscribe(engine.SessionHandlers{TitleChanged: func() {}})
	s.raise(func(h engine.SessionHandlers) { h.TitleChanged() })
	assert.Equal(t, 1, q.Len())
	s.detach()
	s.raise(func(h engine.SessionHandlers) { h.TitleChanged() })
	assert.Equal(t, 1, q.Len())
}
