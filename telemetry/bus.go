package telemetry

// Sink receives published events. Handle must not publish back into the bus.
type Sink interface {
	Handle(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Handle calls f.
func (f SinkFunc) Handle(e Event) { f(e) }

// Bus fans events out to subscribed sinks in subscription order.
// A nil Bus drops everything.
type Bus struct {
	sinks  []Sink
	nextID int
	ids    []int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds a sink and returns a function that removes it.
func (b *Bus) Subscribe(s Sink) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.sinks = append(b.sinks, s)
	b.ids = append(b.ids, id)
	return func() {
		for i, sid := range b.ids {
			if sid == id {
				b.sinks = append(b.sinks[:i], b.sinks[i+1:]...)
				b.ids = append(b.ids[:i], b.ids[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every sink.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	for _, s := range b.sinks {
		s.Handle(e)
	}
}

// EventLog is a sink that keeps every event it receives.
type EventLog struct {
	events []Event
}

// Handle appends e.
func (l *EventLog) Handle(e Event) {
	l.events = append(l.events, e)
}

// Events returns the recorded events in arrival order.
func (l *EventLog) Events() []Event {
	return l.events
}

// Filter returns the recorded events of one type.
func (l *EventLog) Filter(t EventType) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of one type were recorded.
func (l *EventLog) Count(t EventType) int {
	n := 0
	for _, e := range l.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (l *EventLog) Reset() {
	l.events = l.events[:0]
}
