package panel

import "sync"

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Named returns the events called name, optionally limited to one instance.
func (p *MemoryPublisher) Named(name, instanceID string) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Name != name {
			continue
		}
		if instanceID != "" && e.InstanceID != instanceID {
			continue
		}
		out = append(out, e)
	}
	return out
}
