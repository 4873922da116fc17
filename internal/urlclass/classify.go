// Package urlclass decides what to do with raw user input typed into a
// panel: navigate in the panel, hand it to another application, or reject it.
package urlclass

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

// Kind of classification result.
type Kind int

const (
	Invalid Kind = iota
	InPanel
	External
)

func (k Kind) String() string {
	switch k {
	case InPanel:
		return "in_panel"
	case External:
		return "external"
	default:
		return "invalid"
	}
}

// Result of classifying raw input.
type Result struct {
	Kind Kind
	// URL is the normalized target (scheme added for bare hosts).
	URL string
}

// inPanelSchemes are rendered by the engine itself.
var inPanelSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"file":  true,
	"about": true,
	"data":  true,
}

// Classifier applies scheme rules and configured external glob patterns.
type Classifier struct {
	patterns []string
	external []glob.Glob
}

// New compiles the external patterns, e.g. "*.pdf" or "https://*.zoom.us/*".
func New(externalPatterns []string) (*Classifier, error) {
	c := &Classifier{}
	for _, p := range externalPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("external pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, p)
		c.external = append(c.external, g)
	}
	return c, nil
}

// Patterns returns the compiled pattern sources.
func (c *Classifier) Patterns() []string { return append([]string(nil), c.patterns...) }

// Classify normalizes raw and decides where it goes.
func (c *Classifier) Classify(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{Kind: Invalid}
	}
	u, err := url.Parse(s)
	if err != nil {
		return Result{Kind: Invalid}
	}
	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "" || looksLikeHostPort(s, u):
		if strings.ContainsAny(s, " \t") || !looksLikeHost(s) {
			return Result{Kind: Invalid}
		}
		s = "https://" + s
	case !inPanelSchemes[scheme]:
		return Result{Kind: External, URL: s}
	}
	for _, g := range c.external {
		if g.Match(s) {
			return Result{Kind: External, URL: s}
		}
	}
	return Result{Kind: InPanel, URL: s}
}

// looksLikeHostPort catches "localhost:8080" which url.Parse reads as a
// scheme named "localhost".
func looksLikeHostPort(s string, u *url.URL) bool {
	if u.Scheme == "" || u.Opaque == "" {
		return false
	}
	port := u.Opaque
	if i := strings.IndexAny(port, "/?#"); i >= 0 {
		port = port[:i]
	}
	if port == "" {
		return false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func looksLikeHost(s string) bool {
	host := s
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return host == "localhost" || strings.Contains(host, ".")
}

// Opener hands external URLs to another application.
type Opener interface {
	Open(url string) error
}

// LogOpener only records the request.
type LogOpener struct {
	Log zerolog.Logger
}

func (o LogOpener) Open(u string) error {
	o.Log.Info().Str("url", u).Msg("external url dispatched")
	return nil
}
