// Package pwengine drives Chromium through playwright-go. One browser is
// launched lazily and shared; every controller owns a browser context and a
// page. Chromium exposes no find-in-page API to automation, so sessions
// report no native finder.
package pwengine

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"webpanel/internal/engine"
	"webpanel/internal/uiloop"
	"webpanel/internal/window"
)

// Config configures the playwright engine.
type Config struct {
	// Headful shows browser windows; the default is headless.
	Headful bool
	// Install downloads the driver and browsers on first use.
	Install   bool
	UserAgent string
	Logger    zerolog.Logger
}

// Engine implements engine.Engine on top of a shared Chromium instance.
type Engine struct {
	post uiloop.Poster
	cfg  Config
	log  zerolog.Logger

	// run starts the driver; replaced in tests.
	run func() (*playwright.Playwright, error)

	// startMu serializes the driver start; mu guards the fields below and is
	// never held across driver or browser calls.
	startMu  sync.Mutex
	mu       sync.Mutex
	started  bool
	closed   bool
	startErr error
	pw       *playwright.Playwright
	browser  playwright.Browser
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine delivering callbacks through post.
func New(post uiloop.Poster, cfg Config) *Engine {
	e := &Engine{post: post, cfg: cfg, log: cfg.Logger}
	e.run = e.runDriver
	return e
}

func (e *Engine) Name() string { return "playwright" }

// Available reports a previous driver start failure. The driver itself is
// started lazily by the first CreateEnvironment.
func (e *Engine) Available() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startErr
}

func (e *Engine) runDriver() (*playwright.Playwright, error) {
	opts := &playwright.RunOptions{Browsers: []string{"chromium"}, Verbose: false, Stdout: io.Discard, Stderr: io.Discard}
	if e.cfg.Install {
		if err := playwright.Install(opts); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}
	return playwright.Run(opts)
}

// start launches the driver and browser once. It blocks and must not run on
// the UI loop. Concurrent callers wait on startMu; Available never does.
func (e *Engine) start() (playwright.Browser, error) {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	e.mu.Lock()
	if e.started || e.closed {
		browser, err := e.browser, e.startErr
		if e.closed && err == nil {
			err = fmt.Errorf("%w: engine closed", engine.ErrUnavailable)
		}
		e.mu.Unlock()
		return browser, err
	}
	e.started = true
	e.mu.Unlock()

	browser, pw, err := e.launch()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.startErr = err
		return nil, err
	}
	if e.closed {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: engine closed", engine.ErrUnavailable)
	}
	e.pw, e.browser = pw, browser
	return browser, nil
}

func (e *Engine) launch() (playwright.Browser, *playwright.Playwright, error) {
	pw, err := e.run()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", engine.ErrUnavailable, err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(!e.cfg.Headful)})
	if err != nil {
		_ = pw.Stop()
		return nil, nil, fmt.Errorf("%w: launch chromium: %v", engine.ErrUnavailable, err)
	}
	e.log.Info().Str("version", browser.Version()).Msg("chromium launched")
	return browser, pw, nil
}

func (e *Engine) CreateEnvironment(opts engine.EnvironmentOptions, done func(engine.Environment, error)) {
	go func() {
		browser, err := e.start()
		if err != nil {
			e.post.Post(func() { done(nil, err) })
			return
		}
		env := &Environment{eng: e, browser: browser, instance: opts.InstanceID}
		e.post.Post(func() { done(env, nil) })
	}()
}

// Close shuts the browser and driver down. A start still in flight stops
// what it launched once it finishes.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	var firstErr error
	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			firstErr = err
		}
		e.browser = nil
	}
	if e.pw != nil {
		if err := e.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.pw = nil
	}
	return firstErr
}

// Environment is a handle on the shared browser.
type Environment struct {
	eng      *Engine
	browser  playwright.Browser
	instance string

	mu       sync.Mutex
	released bool
}

func (env *Environment) CreateController(h window.Handle, done func(engine.Controller, error)) {
	env.mu.Lock()
	released := env.released
	env.mu.Unlock()
	post := env.eng.post
	if released {
		post.Post(func() { done(nil, fmt.Errorf("pwengine: environment released")) })
		return
	}
	go func() {
		c, err := newController(env, h)
		post.Post(func() {
			if err != nil {
				done(nil, err)
				return
			}
			done(c, nil)
		})
	}()
}

func (env *Environment) Release() {
	env.mu.Lock()
	env.released = true
	env.mu.Unlock()
}
