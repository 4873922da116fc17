// Package headless is an engine without a renderer: pages are fetched over
// HTTP (or read from file: URLs), parsed with golang.org/x/net/html and kept
// as title plus visible text. It supports native find over that text and
// reports focus moves between controllers of one environment.
package headless

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"webpanel/internal/common/fsutil"
	"webpanel/internal/engine"
	"webpanel/internal/uiloop"
	"webpanel/internal/window"
)

// Defaults applied by New.
const (
	DefaultMaxBytes  int64 = 4 << 20
	DefaultTimeout         = 30 * time.Second
	DefaultUserAgent       = "webpanel-headless/1.0"
)

var errReleased = errors.New("headless: environment released")

// Config configures the headless engine.
type Config struct {
	// Client performs fetches. Nil builds one with DefaultTimeout that also
	// serves file: URLs.
	Client    *http.Client
	UserAgent string
	// MaxBytes caps how much of a response body is parsed.
	MaxBytes int64
	Logger   zerolog.Logger
}

// Engine implements engine.Engine.
type Engine struct {
	post   uiloop.Poster
	client *http.Client
	ua     string
	max    int64
	log    zerolog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine delivering callbacks through post.
func New(post uiloop.Poster, cfg Config) *Engine {
	if cfg.Client == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
		cfg.Client = &http.Client{Timeout: DefaultTimeout, Transport: tr}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &Engine{post: post, client: cfg.Client, ua: cfg.UserAgent, max: cfg.MaxBytes, log: cfg.Logger}
}

func (e *Engine) Name() string { return "headless" }

func (e *Engine) Available() error {
	if e.post == nil {
		return fmt.Errorf("%w: headless engine has no ui loop", engine.ErrUnavailable)
	}
	return nil
}

func (e *Engine) CreateEnvironment(opts engine.EnvironmentOptions, done func(engine.Environment, error)) {
	var dir string
	var err error
	if opts.UserDataDir != "" {
		dir, err = fsutil.EnsureDir(filepath.Join(opts.UserDataDir, opts.InstanceID))
	}
	env := &Environment{eng: e, dir: dir, refs: 1}
	e.log.Debug().Str("instance", opts.InstanceID).Str("dir", dir).Msg("environment created")
	e.post.Post(func() {
		if err != nil {
			done(nil, fmt.Errorf("profile dir: %w", err))
			return
		}
		done(env, nil)
	})
}

// Environment groups controllers that share a profile. It stays alive until
// its own reference and every controller are released.
type Environment struct {
	eng *Engine
	dir string

	mu      sync.Mutex
	refs    int
	focused *Controller
}

// Dir is the profile directory, empty when no user data dir was configured.
func (env *Environment) Dir() string { return env.dir }

func (env *Environment) CreateController(h window.Handle, done func(engine.Controller, error)) {
	env.mu.Lock()
	if env.refs == 0 {
		env.mu.Unlock()
		env.eng.post.Post(func() { done(nil, errReleased) })
		return
	}
	env.refs++
	env.mu.Unlock()
	c := &Controller{env: env, window: h}
	c.page = newPage(env.eng, c)
	env.eng.post.Post(func() { done(c, nil) })
}

func (env *Environment) Release() { env.unref() }

func (env *Environment) unref() {
	env.mu.Lock()
	defer env.mu.Unlock()
	if env.refs > 0 {
		env.refs--
	}
}

// Refs reports outstanding references (environment plus live controllers).
func (env *Environment) Refs() int {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.refs
}

// moveFocus makes c the focused controller and returns the previous one.
func (env *Environment) moveFocus(c *Controller) *Controller {
	env.mu.Lock()
	defer env.mu.Unlock()
	prev := env.focused
	env.focused = c
	return prev
}

func (env *Environment) dropFocus(c *Controller) {
	env.mu.Lock()
	if env.focused == c {
		env.focused = nil
	}
	env.mu.Unlock()
}

// Controller hosts one page in one window.
type Controller struct {
	env    *Environment
	window window.Handle
	page   *Page

	gained engine.HandlerSet[func()]
	lost   engine.HandlerSet[func()]
	once   sync.Once
}

func (c *Controller) Session() engine.Session { return c.page }

// Window returns the host window this controller was created for.
func (c *Controller) Window() window.Handle { return c.window }

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
	prev := c.env.moveFocus(c)
	if prev == c {
		return
	}
	if prev != nil {
		raise(c.env.eng.post, prev.lost.Snapshot())
	}
	raise(c.env.eng.post, c.gained.Snapshot())
}

func (c *Controller) Release() {
	c.once.Do(func() {
		c.page.close()
		c.env.dropFocus(c)
		c.env.unref()
	})
}

func raise(post uiloop.Poster, fns []func()) {
	for _, fn := range fns {
		post.Post(fn)
	}
}
