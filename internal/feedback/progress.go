package feedback

import "resume-feedback/internal/shared/telemetry"

// Event is one progress update during an analysis.
type Event struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
	Done    bool   `json:"done"`
	Err     string `json:"error,omitempty"`
}

// Publisher receives progress events. Publish must not block the pipeline;
// implementations drop rather than stall.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards events. Used when the caller did not ask for
// progress.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// ChannelPublisher buffers events on a channel for a streaming consumer.
// When the buffer is full the event is dropped and logged, never blocking
// the analysis.
type ChannelPublisher struct {
	events chan Event
}

// NewChannelPublisher allocates a publisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer < 1 {
		buffer = 16
	}
	return &ChannelPublisher{events: make(chan Event, buffer)}
}

// Events exposes the stream for the consumer. Closed by Close.
func (p *ChannelPublisher) Events() <-chan Event {
	return p.events
}

// Publish enqueues the event or drops it when the consumer is behind.
func (p *ChannelPublisher) Publish(ev Event) {
	select {
	case p.events <- ev:
	default:
		telemetry.Warn("progress event dropped", map[string]any{
			"percent": ev.Percent,
			"stage":   ev.Stage,
		})
	}
}

// Close ends the stream. Publish must not be called after Close.
func (p *ChannelPublisher) Close() {
	close(p.events)
}
