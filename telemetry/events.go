// Package telemetry provides sensory event fan-out, window statistics,
// phase timing and CSV output.
package telemetry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventNoiseCreated EventType = iota
	EventLightCreated
	EventLightExpired
	EventStimulusExpired
	EventStateChanged
	EventNoiseHeard
	EventNoiseSuppressed
	EventLightAccepted
	EventLightIgnored
	EventDamage
)

var eventNames = [...]string{
	"noise_created",
	"light_created",
	"light_expired",
	"stimulus_expired",
	"state_changed",
	"noise_heard",
	"noise_suppressed",
	"light_accepted",
	"light_ignored",
	"damage",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type EventType
	Time float64 // simulation seconds

	// Optional fields depending on event type
	AgentID    components.AgentID
	StimulusID string
	From, To   components.State // for state changes
	Reason     string
	Pos        r3.Vec
	Amount     float64 // strength for creations, damage applied for damage
}

// NewNoiseCreatedEvent creates a noise creation event.
func NewNoiseCreatedEvent(now float64, n *components.Noise) Event {
	return Event{
		Type:       EventNoiseCreated,
		Time:       now,
		StimulusID: n.ID,
		Pos:        n.Pos,
		Amount:     n.Strength,
	}
}

// NewLightCreatedEvent creates a light creation event for a source or a
// light-kind stimulus.
func NewLightCreatedEvent(now float64, id string, pos r3.Vec, strength float64) Event {
	return Event{
		Type:       EventLightCreated,
		Time:       now,
		StimulusID: id,
		Pos:        pos,
		Amount:     strength,
	}
}

// NewLightExpiredEvent creates a dynamic light expiry event.
func NewLightExpiredEvent(now float64, src components.LightSource) Event {
	return Event{
		Type:       EventLightExpired,
		Time:       now,
		StimulusID: src.ID,
		Pos:        src.Pos,
	}
}

// NewStimulusExpiredEvent creates a stimulus removal event.
func NewStimulusExpiredEvent(now float64, s components.Stimulus) Event {
	base := components.Base(s)
	return Event{
		Type:       EventStimulusExpired,
		Time:       now,
		StimulusID: base.ID,
		Pos:        base.Pos,
	}
}

// NewStateChangedEvent creates a decision state transition event.
func NewStateChangedEvent(now float64, id components.AgentID, from, to components.State, reason, stimulusID string) Event {
	return Event{
		Type:       EventStateChanged,
		Time:       now,
		AgentID:    id,
		From:       from,
		To:         to,
		Reason:     reason,
		StimulusID: stimulusID,
	}
}

// NewAgentEvent creates an agent-scoped event with no extra payload:
// noise heard or suppressed, light accepted or ignored.
func NewAgentEvent(t EventType, now float64, id components.AgentID, stimulusID string) Event {
	return Event{
		Type:       t,
		Time:       now,
		AgentID:    id,
		StimulusID: stimulusID,
	}
}

// NewDamageEvent creates a contact damage event.
func NewDamageEvent(now float64, id components.AgentID, amount float64) Event {
	return Event{
		Type:    EventDamage,
		Time:    now,
		AgentID: id,
		Amount:  amount,
	}
}
