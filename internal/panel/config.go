package panel

import (
	"github.com/rs/zerolog"

	"webpanel/internal/engine"
	"webpanel/internal/find"
	"webpanel/internal/title"
	"webpanel/internal/urlclass"
	"webpanel/internal/window"
)

// Package-level defaults. Callers can override via RegistryConfig.
const (
	DefaultTitleBase = title.DefaultBase
	DefaultMaxTab    = 48
)

// TitleComposer turns page information into captions.
type TitleComposer interface {
	Compose(src title.Source) title.Captions
}

// URLClassifier decides where navigation input goes.
type URLClassifier interface {
	Classify(raw string) urlclass.Result
}

// RegistryConfig holds all parameters for constructing a Registry.
// Zero-values are replaced with defaults in NewWithConfig.
type RegistryConfig struct {
	// Engine creates native environments. Nil means no engine: every instance
	// fails its availability check and stays uninitialized.
	Engine engine.Engine
	// Windows realizes panel windows. Nil means the host reports windows
	// itself through AttachWindow.
	Windows window.System

	Titles     TitleComposer
	Classifier URLClassifier
	Opener     urlclass.Opener
	Persister  Persister
	Publisher  EventPublisher
	Logger     zerolog.Logger

	// DefaultInstanceID answers ActiveInstance before any focus is observed.
	DefaultInstanceID string
	// DefaultURL is navigated when an instance becomes ready with no queued URL.
	DefaultURL string
	// UserDataDir is handed to the engine on environment creation.
	UserDataDir string
	// FindAutoActivate selects the first match on engines that report
	// matches without an active one. Nil uses find.SelectFirstMatch.
	FindAutoActivate find.AutoActivatePolicy
}

func (c RegistryConfig) withDefaults() RegistryConfig {
	if c.Engine == nil {
		c.Engine = unavailableEngine{}
	}
	if c.Windows == nil {
		c.Windows = newManualWindows()
	}
	if c.Titles == nil {
		c.Titles = title.Composer{Base: DefaultTitleBase, MaxTab: DefaultMaxTab}
	}
	if c.Classifier == nil {
		cl, _ := urlclass.New(nil)
		c.Classifier = cl
	}
	if c.Opener == nil {
		c.Opener = urlclass.LogOpener{Log: c.Logger}
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	if c.DefaultInstanceID == "" {
		c.DefaultInstanceID = DefaultInstanceID
	}
	if c.FindAutoActivate == nil {
		c.FindAutoActivate = find.SelectFirstMatch
	}
	return c
}
