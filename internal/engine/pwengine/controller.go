package pwengine

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"webpanel/internal/engine"
	"webpanel/internal/window"
)

// focusBinding is exposed to every page; focusScript reports window focus
// changes through it.
const focusBinding = "__webpanelFocus"

const focusScript = `(() => {
  window.addEventListener('focus', () => window.` + focusBinding + `(true));
  window.addEventListener('blur', () => window.` + focusBinding + `(false));
})();`

// Controller owns one browser context and its page.
type Controller struct {
	env    *Environment
	window window.Handle
	bctx   playwright.BrowserContext
	page   playwright.Page
	sess   *Session

	gained engine.HandlerSet[func()]
	lost   engine.HandlerSet[func()]
	once   sync.Once
}

func newController(env *Environment, h window.Handle) (*Controller, error) {
	opts := playwright.BrowserNewContextOptions{}
	if ua := env.eng.cfg.UserAgent; ua != "" {
		opts.UserAgent = playwright.String(ua)
	}
	bctx, err := env.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	c := &Controller{env: env, window: h, bctx: bctx, page: page}
	c.sess = newSession(env.eng, page)

	if err := page.ExposeFunction(focusBinding, func(args ...interface{}) interface{} {
		focused := len(args) > 0 && args[0] == true
		if focused {
			raise(env.eng, c.gained.Snapshot())
		} else {
			raise(env.eng, c.lost.Snapshot())
		}
		return nil
	}); err != nil {
		c.close()
		return nil, fmt.Errorf("expose focus binding: %w", err)
	}
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(focusScript)}); err != nil {
		c.close()
		return nil, fmt.Errorf("add focus script: %w", err)
	}
	env.eng.log.Debug().Str("instance", env.instance).Stringer("window", h).Msg("page created")
	return c, nil
}

func (c *Controller) Session() engine.Session { return c.sess }

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

// MoveFocus brings the page to front; the focus script reports the result.
func (c *Controller) MoveFocus() {
	go func() {
		if err := c.page.BringToFront(); err != nil {
			c.env.eng.log.Debug().Err(err).Msg("bring to front failed")
		}
	}()
}

func (c *Controller) Release() {
	c.once.Do(func() {
		c.sess.detach()
		go c.close()
	})
}

func (c *Controller) close() {
	if err := c.page.Close(); err != nil {
		c.env.eng.log.Debug().Err(err).Msg("page close")
	}
	if err := c.bctx.Close(); err != nil {
		c.env.eng.log.Debug().Err(err).Msg("context close")
	}
}

func raise(e *Engine, fns []func()) {
	for _, fn := range fns {
		e.post.Post(fn)
	}
}
