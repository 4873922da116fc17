// Package title composes panel captions from what the engine reports about
// the current page.
package title

import (
	"net/url"
	"strings"
)

// DefaultBase is used when neither an override nor a page title exists.
const DefaultBase = "WebView"

// Source is what the registry knows when a title or navigation event fires.
type Source struct {
	InstanceID string
	PageTitle  string
	URL        string
	Override   string
}

// Captions are written back onto the instance: Tab is the dock tab caption,
// Window is the panel window text.
type Captions struct {
	Tab    string
	Window string
}

// Composer builds captions. The zero value uses DefaultBase.
type Composer struct {
	Base string
	// MaxTab truncates tab captions (in runes); 0 disables truncation.
	MaxTab int
}

// Compose returns the captions for src.
func (c Composer) Compose(src Source) Captions {
	base := c.Base
	if base == "" {
		base = DefaultBase
	}
	domain := Domain(src.URL)
	page := strings.TrimSpace(src.PageTitle)
	if page == src.URL {
		page = ""
	}

	var tab string
	switch {
	case strings.TrimSpace(src.Override) != "":
		tab = strings.TrimSpace(src.Override)
	case page != "":
		tab = page
	case domain != "":
		tab = domain
	default:
		tab = base
	}
	window := tab
	if domain != "" && domain != tab {
		window = tab + " - " + domain
	}
	return Captions{Tab: truncate(tab, c.MaxTab), Window: window}
}

// Domain extracts the host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
