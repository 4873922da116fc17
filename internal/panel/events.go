package panel

// Event represents a registry lifecycle event.
// Minimal and stable: name + instance ID and optional fields via key/values.
type Event struct {
	Name       string
	InstanceID string
	Fields     map[string]any
}

// EventPublisher receives events from the registry. Implementations should be
// lightweight and non-blocking; Publish must not panic. Events are published
// after the registry lock is released, so publishers may call back in.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// Event names.
const (
	EventCreated      = "created"
	EventState        = "state"
	EventInitFailed   = "init_failed"
	EventReady        = "ready"
	EventNavigate     = "navigate"
	EventNavigated    = "navigated"
	EventTitle        = "title"
	EventFocus        = "focus"
	EventFindCounter  = "find_counter"
	EventFindBar      = "find_bar"
	EventCallbackSkip = "callback_skip"
	EventExternalURL  = "external_url"
	EventDisposed     = "disposed"
	EventPurged       = "purged"
)
