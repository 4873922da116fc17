// Package engine defines the capability set the panel registry needs from a
// native browser engine: asynchronous environment and controller creation,
// navigation, title access, event subscription and optional in-page find.
//
// Implementations live in sub-packages (headless, pwengine, enginetest). The
// registry depends only on the interfaces declared here.
//
// Callback contract: every done callback and every event handler is delivered
// through the engine's uiloop.Poster, never inline from the method that
// triggered it.
package engine

import (
	"errors"

	"webpanel/internal/window"
)

// ErrUnavailable reports that the engine's native loader or runtime could not
// be found. It is never fatal; affected instances simply stay uninitialized.
var ErrUnavailable = errors.New("engine unavailable")

// Token identifies an event registration so it can be removed.
type Token string

// EnvironmentOptions configures environment creation.
type EnvironmentOptions struct {
	// UserDataDir is where the engine may keep profile data.
	UserDataDir string
	// InstanceID is informational (logging, profile naming).
	InstanceID string
}

// Engine creates environments.
type Engine interface {
	Name() string
	// Available reports whether the engine can be used at all. A non-nil
	// error wraps ErrUnavailable.
	Available() error
	CreateEnvironment(opts EnvironmentOptions, done func(Environment, error))
}

// Environment is a reference-counted native environment.
type Environment interface {
	CreateController(h window.Handle, done func(Controller, error))
	Release()
}

// Controller hosts a session inside a window.
type Controller interface {
	Session() Session
	// OnFocus subscribes to focus gained / lost notifications.
	OnFocus(gained, lost func()) Subscription
	// MoveFocus gives input focus to the hosted page.
	MoveFocus()
	Release()
}

// NavigationEvent describes a navigation the engine started or finished.
type NavigationEvent struct {
	URL     string
	Success bool
	// Status is an engine-specific error status, empty on success.
	Status string
}

// SessionHandlers are the lifecycle events a session can raise. Nil fields
// are not subscribed.
type SessionHandlers struct {
	TitleChanged        func()
	NavigationStarting  func(NavigationEvent)
	NavigationCompleted func(NavigationEvent)
}

// Session is the page-level capability set.
type Session interface {
	Navigate(url string) error
	Title() string
	URL() string
	Subscribe(h SessionHandlers) Subscription
	// Finder returns the native find capability if the engine has one.
	Finder() (Finder, bool)
}

// Subscription removes the handlers it was returned for.
type Subscription interface {
	Unsubscribe()
}

// FindOptions is an engine-native options object. A new object is created for
// every search; objects are released by their owner.
type FindOptions interface {
	SetTerm(term string)
	SetCaseSensitive(v bool)
	SetHighlightAll(v bool)
	SetSuppressDefaultDialog(v bool)
	Release()
}

// Finder is the native in-page find capability. Indices are 0-based; -1
// means no match is active.
type Finder interface {
	CreateOptions() (FindOptions, error)
	Start(opts FindOptions, done func(error))
	FindNext()
	FindPrevious()
	Stop()
	ActiveMatchIndex() int
	MatchCount() int
	OnActiveMatchIndexChanged(fn func()) Token
	OnMatchCountChanged(fn func()) Token
	Remove(tok Token)
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}
