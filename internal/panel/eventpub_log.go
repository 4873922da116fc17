package panel

import "github.com/rs/zerolog"

// LogPublisher writes every event to a zerolog logger at debug level.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Log.Debug().Str("event", e.Name).Str("instance", e.InstanceID)
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("panel event")
}
