package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/telemetry"
)

// Debug target labels.
const (
	TargetNone        = "None"
	TargetPlayer      = "Player"
	TargetPoint       = "Point of interest"
	TargetWander      = "Wander point"
	TargetLight       = "Light source"
	TargetNoise       = "Noise origin"
	TargetLastKnown   = "Last known player position"
	TargetOwnPosition = "Own position"
	defaultReason     = "Standing by"
	docileReason      = "Docile testing dummy"
)

// Transition is a requested state change.
type Transition struct {
	To     components.State
	Target *r3.Vec // investigation point, or wander point (random when nil)
	// Timer is the investigation linger for investigating and the decision
	// timer for wandering and idle. Zero draws the configured default.
	Timer      float64
	Reason     string
	StimulusID string

	// Applied after the entry rules when set.
	Sense       components.Sense
	DebugTarget string
}

// ApplyTransition moves z into tr.To and applies that state's entry rules:
// the mutually exclusive target is cleared, timers are reset and the debug
// target is set. It is the only place agent state changes.
func ApplyTransition(z *components.Zombie, tr Transition, rng Rand, geo Geometry, cfg *config.DecisionConfig) {
	z.State = tr.To
	if tr.Reason != "" {
		z.Reason = tr.Reason
	} else if z.Reason == "" {
		z.Reason = defaultReason
	}
	z.ActiveStimulusID = tr.StimulusID
	z.Lingering = false

	switch tr.To {
	case components.Chasing:
		z.Target = nil
		z.WanderTarget = nil
		z.InvestigateTimer = 0
		z.DecisionTimer = Uniform(rng, cfg.ChaseEntry)
		z.CurrentStimulus = components.SenseVision
		z.DebugTarget = TargetPlayer

	case components.Investigating:
		z.Target = copyVec(tr.Target)
		z.InvestigateTimer = timerOr(rng, tr.Timer, cfg.DefaultLinger)
		z.DecisionTimer = Uniform(rng, cfg.InvestigateEntry)
		z.WanderTarget = nil
		if z.CurrentStimulus == components.SenseNone {
			z.CurrentStimulus = components.SenseUnknown
		}
		if z.DebugTarget == "" || z.DebugTarget == TargetNone {
			z.DebugTarget = TargetPoint
		}

	case components.Wandering:
		if tr.Target != nil {
			z.WanderTarget = copyVec(tr.Target)
		} else {
			p := geo.RandomPointInWorld(rng)
			z.WanderTarget = &p
		}
		z.DecisionTimer = timerOr(rng, tr.Timer, cfg.IdleToWander)
		z.Target = nil
		z.InvestigateTimer = 0
		z.CurrentStimulus = components.SenseNone
		z.DebugTarget = TargetWander

	default:
		z.Target = nil
		z.WanderTarget = nil
		z.InvestigateTimer = 0
		z.DecisionTimer = timerOr(rng, tr.Timer, cfg.DefaultIdle)
		z.CurrentStimulus = components.SenseNone
		z.DebugTarget = TargetNone
	}

	if tr.Sense != components.SenseNone {
		z.CurrentStimulus = tr.Sense
		z.LastStimulus = tr.Sense
	}
	if tr.DebugTarget != "" {
		z.DebugTarget = tr.DebugTarget
	}
}

// Transitioner applies transitions and reports them on the bus.
type Transitioner struct {
	cfg *config.DecisionConfig
	rng Rand
	geo Geometry
	bus *telemetry.Bus
}

// NewTransitioner creates a transitioner.
func NewTransitioner(cfg *config.Config, rng Rand, geo Geometry, bus *telemetry.Bus) *Transitioner {
	return &Transitioner{cfg: &cfg.Decision, rng: rng, geo: geo, bus: bus}
}

// Apply runs ApplyTransition and publishes a state change event.
func (t *Transitioner) Apply(z *components.Zombie, tr Transition, now float64) {
	from := z.State
	ApplyTransition(z, tr, t.rng, t.geo, t.cfg)
	t.bus.Publish(telemetry.NewStateChangedEvent(now, z.ID, from, z.State, z.Reason, tr.StimulusID))
}

// NewZombie returns an agent in its spawn state: idle, standing by, with a
// first decision drawn from the configured range. Docile agents start
// parked with a zero timer.
func NewZombie(id components.AgentID, b components.Behavior, rng Rand, cfg *config.Config) components.Zombie {
	z := components.Zombie{
		ID:           id,
		State:        components.Idle,
		Behavior:     b,
		Capabilities: components.CapabilitiesFor(b, cfg.Zombie),
		Reason:       defaultReason,
		DebugTarget:  TargetNone,
	}
	if z.IsDocile() {
		parkDocile(&z)
		return z
	}
	z.DecisionTimer = Uniform(rng, cfg.Zombie.InitialDecision)
	return z
}

// parkDocile pins an inert agent in idle.
func parkDocile(z *components.Zombie) {
	z.State = components.Idle
	z.Reason = docileReason
	z.CurrentStimulus = components.SenseNone
	z.LastStimulus = components.SenseNone
	z.DebugTarget = TargetNone
	z.Target = nil
	z.WanderTarget = nil
	z.Lingering = false
}

func timerOr(rng Rand, v float64, r config.Range) float64 {
	if v != 0 {
		return v
	}
	return Uniform(rng, r)
}

func copyVec(v *r3.Vec) *r3.Vec {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
