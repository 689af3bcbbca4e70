package components

import "gonum.org/v1/gonum/spatial/r3"

// AgentID identifies a spawned agent. Ids are assigned monotonically from 1.
type AgentID uint32

// State is the decision state of an agent.
type State uint8

const (
	Idle State = iota
	Wandering
	Investigating
	Chasing
)

// Behavior is an agent's behavior class.
type Behavior uint8

const (
	Aggressive Behavior = iota
	// Docile agents are parked in idle and excluded from all sensing.
	Docile
)

// Sense is the kind of stimulus an agent is attending to.
type Sense uint8

const (
	SenseNone Sense = iota
	SenseVision
	SenseLight
	SenseNoise
	SenseUnknown
)

// Zombie holds the decision state of one agent.
// Target and WanderTarget are never both set.
type Zombie struct {
	ID       AgentID
	State    State
	Behavior Behavior
	Capabilities

	DecisionTimer    float64 // cooldown before re-evaluating idle/wander choices
	InvestigateTimer float64 // remaining budget of the current investigation
	Lingering        bool    // arrived at a light and waiting out the linger timer

	LastStimulus     Sense
	CurrentStimulus  Sense
	Reason           string
	DebugTarget      string
	ActiveStimulusID string // stimulus whose outcome is pending; empty when none

	WanderTarget *r3.Vec
	Target       *r3.Vec
}

// IsDocile reports whether the agent is an inert fixture.
func (z *Zombie) IsDocile() bool {
	return z.Behavior == Docile
}
