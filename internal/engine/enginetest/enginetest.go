// Package enginetest provides a scriptable in-memory engine for tests.
//
// Completions are posted to the supplied uiloop.Poster, so tests using a
// uiloop.Queue decide exactly when each asynchronous step lands. Setting Hold
// parks completions until Flush, which is how tests close a panel while its
// engine is still starting.
package enginetest

import (
	"fmt"
	"sync"

	"webpanel/internal/engine"
	"webpanel/internal/uiloop"
	"webpanel/internal/window"
)

// Engine is a fake engine.Engine.
type Engine struct {
	mu   sync.Mutex
	post uiloop.Poster

	// AvailableErr is returned by Available.
	AvailableErr error
	// EnvErr and CtrlErr fail the corresponding creation stage.
	EnvErr  error
	CtrlErr error
	// NoFind creates sessions without a native finder.
	NoFind bool
	// Matches is the match count a finder reports for any non-empty term.
	Matches int
	// Hold parks completions until Flush.
	Hold bool

	held  []func()
	envs  []*Environment
	ctrls []*Controller
}

var _ engine.Engine = (*Engine)(nil)

// New returns a fake engine posting completions to post.
func New(post uiloop.Poster) *Engine {
	return &Engine{post: post}
}

func (e *Engine) Name() string { return "fake" }

func (e *Engine) Available() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.AvailableErr != nil {
		return fmt.Errorf("%w: %v", engine.ErrUnavailable, e.AvailableErr)
	}
	return nil
}

func (e *Engine) CreateEnvironment(opts engine.EnvironmentOptions, done func(engine.Environment, error)) {
	e.mu.Lock()
	err := e.EnvErr
	var env *Environment
	if err == nil {
		env = &Environment{eng: e, Opts: opts}
		e.envs = append(e.envs, env)
	}
	e.mu.Unlock()
	e.deliver(func() {
		if err != nil {
			done(nil, err)
			return
		}
		done(env, nil)
	})
}

// Flush posts every parked completion and clears Hold.
func (e *Engine) Flush() int {
	e.mu.Lock()
	held := e.held
	e.held = nil
	e.Hold = false
	e.mu.Unlock()
	for _, fn := range held {
		e.post.Post(fn)
	}
	return len(held)
}

// Environments returns every environment handed out so far.
func (e *Engine) Environments() []*Environment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Environment(nil), e.envs...)
}

// Controllers returns every controller handed out so far.
func (e *Engine) Controllers() []*Controller {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Controller(nil), e.ctrls...)
}

// ControllerFor returns the most recent controller created for h.
func (e *Engine) ControllerFor(h window.Handle) *Controller {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.ctrls) - 1; i >= 0; i-- {
		if e.ctrls[i].Window == h {
			return e.ctrls[i]
		}
	}
	return nil
}

// Leaked counts environments and controllers that were never released.
func (e *Engine) Leaked() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, env := range e.envs {
		if env.Released() == 0 {
			n++
		}
	}
	for _, c := range e.ctrls {
		if c.Released() == 0 {
			n++
		}
	}
	return n
}

func (e *Engine) deliver(fn func()) {
	e.mu.Lock()
	if e.Hold {
		e.held = append(e.held, fn)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.post.Post(fn)
}

// Environment is a fake engine.Environment.
type Environment struct {
	eng      *Engine
	Opts     engine.EnvironmentOptions
	mu       sync.Mutex
	released int
}

func (env *Environment) CreateController(h window.Handle, done func(engine.Controller, error)) {
	e := env.eng
	e.mu.Lock()
	err := e.CtrlErr
	var c *Controller
	if err == nil {
		c = &Controller{eng: e, Window: h}
		c.session = &Session{eng: e}
		if !e.NoFind {
			c.session.finder = &Finder{eng: e, index: -1}
		}
		e.ctrls = append(e.ctrls, c)
	}
	e.mu.Unlock()
	e.deliver(func() {
		if err != nil {
			done(nil, err)
			return
		}
		done(c, nil)
	})
}

func (env *Environment) Release() {
	env.mu.Lock()
	env.released++
	env.mu.Unlock()
}

// Released reports how many times Release was called.
func (env *Environment) Released() int {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.released
}

// Controller is a fake engine.Controller.
type Controller struct {
	eng        *Engine
	Window     window.Handle
	session    *Session
	gained     engine.HandlerSet[func()]
	lost       engine.HandlerSet[func()]
	mu         sync.Mutex
	released   int
	focusMoves int
}

func (c *Controller) Session() engine.Session { return c.session }

// FakeSession returns the concrete session for assertions.
func (c *Controller) FakeSession() *Session { return c.session }

func (c *Controller) OnFocus(gained, lost func()) engine.Subscription {
	var g, l engine.Token
	if gained != nil {
		g = c.gained.Add(gained)
	}
	if lost != nil {
		l = c.lost.Add(lost)
	}
	return engine.SubscriptionFunc(func() {
		c.gained.Remove(g)
		c.lost.Remove(l)
	})
}

func (c *Controller) MoveFocus() {
	c.mu.Lock()
	c.focusMoves++
	c.mu.Unlock()
	c.GainFocus()
}

// FocusMoves reports how often MoveFocus was called.
func (c *Controller) FocusMoves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focusMoves
}

// GainFocus raises the focus-gained event.
func (c *Controller) GainFocus() {
	for _, fn := range c.gained.Snapshot() {
		c.eng.post.Post(fn)
	}
}

// LoseFocus raises the focus-lost event.
func (c *Controller) LoseFocus() {
	for _, fn := range c.lost.Snapshot() {
		c.eng.post.Post(fn)
	}
}

// FocusSubscribers reports the number of focus-gained handlers.
func (c *Controller) FocusSubscribers() int { return c.gained.Len() }

func (c *Controller) Release() {
	c.mu.Lock()
	c.released++
	c.mu.Unlock()
}

// Released reports how many times Release was called.
func (c *Controller) Released() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}
