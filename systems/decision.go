package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/telemetry"
)

// Target is the player contract consumed by the decision and contact
// systems.
type Target interface {
	Position() r3.Vec
	// ApplyDamage removes health and returns the amount actually applied.
	ApplyDamage(amount float64) float64
}

// Surroundings is what an agent can know about the world besides stimuli.
type Surroundings struct {
	Player   Target // nil when absent
	GameOver bool
}

// Steering is the movement an agent requests for this tick.
type Steering struct {
	Dir   r3.Vec // unit ground direction, zero for none
	Speed float64
}

// DecisionSystem runs the per-agent state machine. Each tick it checks
// vision, then stimuli, then runs the behaviour of whatever state results.
// The order matters: sight pre-empts stimuli, and a chase only partially
// resists noise.
type DecisionSystem struct {
	cfg   *config.Config
	reg   *StimulusRegistry
	habit *Habituation
	trans *Transitioner
	rng   Rand
	geo   Geometry
	bus   *telemetry.Bus
}

// NewDecisionSystem creates the state machine.
func NewDecisionSystem(cfg *config.Config, reg *StimulusRegistry, habit *Habituation, trans *Transitioner, rng Rand, geo Geometry, bus *telemetry.Bus) *DecisionSystem {
	return &DecisionSystem{cfg: cfg, reg: reg, habit: habit, trans: trans, rng: rng, geo: geo, bus: bus}
}

// view is the player as seen from one agent this tick.
type view struct {
	present bool
	pos     r3.Vec
	dist    float64
	inSight bool // within detect range and unobstructed
	held    bool // a chase keeps its view: inSight, or within the lose-sight range and unobstructed
}

// Update advances one agent's decision state and returns its steering.
func (d *DecisionSystem) Update(a AgentRef, env Surroundings, dt, now float64) Steering {
	z := a.Zombie
	if z.IsDocile() {
		parkDocile(z)
		return Steering{}
	}

	d.habit.PruneLight(a.Memory, now)
	d.habit.PruneNoise(a.Memory, now)

	pos := a.Body.Pos
	v := d.look(z, pos, env)
	d.checkVision(z, pos, v, now)

	if !env.GameOver {
		if c, ok := FindStimulusForAgent(d.reg, pos, d.rng, &d.cfg.Perception); ok {
			d.react(a, c, v, now)
		}
	}

	z.DecisionTimer -= dt
	switch z.State {
	case components.Chasing:
		return d.chase(z, pos, v, now)
	case components.Investigating:
		return d.investigate(a, pos, env, dt, now)
	case components.Wandering:
		return d.wander(z, pos)
	default:
		d.idle(z, now)
		return Steering{}
	}
}

func (d *DecisionSystem) look(z *components.Zombie, pos r3.Vec, env Surroundings) view {
	v := view{dist: math.Inf(1)}
	if env.Player == nil {
		return v
	}
	v.present = true
	v.pos = env.Player.Position()
	v.dist = distance(pos, v.pos)
	if env.GameOver {
		return v
	}
	keepRange := z.DetectRange * d.cfg.Perception.LoseSightFactor
	if v.dist < z.DetectRange || (z.State == components.Chasing && v.dist <= keepRange) {
		if d.geo.HasLineOfSight(pos, v.pos) {
			v.inSight = v.dist < z.DetectRange
			v.held = true
		}
	}
	return v
}

func (d *DecisionSystem) checkVision(z *components.Zombie, pos r3.Vec, v view, now float64) {
	switch {
	case v.inSight:
		if z.State != components.Chasing {
			d.trans.Apply(z, Transition{
				To:     components.Chasing,
				Reason: fmt.Sprintf("Player detected (%.1fm)", v.dist),
			}, now)
		} else {
			z.Reason = fmt.Sprintf("Chasing player (%.1fm)", v.dist)
		}
		z.CurrentStimulus = components.SenseVision
		z.LastStimulus = components.SenseVision
		z.DebugTarget = TargetPlayer

	case z.State == components.Chasing && v.held:
		z.Reason = fmt.Sprintf("Chasing player (%.1fm)", v.dist)

	case z.State == components.Chasing:
		target := pos
		reason, label := "Player not present", TargetOwnPosition
		if v.present {
			target = v.pos
			reason, label = "Lost sight of player", TargetLastKnown
		}
		d.trans.Apply(z, Transition{
			To:          components.Investigating,
			Target:      &target,
			Timer:       Uniform(d.rng, d.cfg.Decision.LostSightLinger),
			Reason:      reason,
			Sense:       components.SenseVision,
			DebugTarget: label,
		}, now)
	}
}

// react decides whether the arbitrated candidate replaces the current plan.
func (d *DecisionSystem) react(a AgentRef, c Candidate, v view, now float64) {
	z := a.Zombie
	cfg := &d.cfg.Decision

	canReact := z.State != components.Chasing || !v.held ||
		(c.Kind == components.SenseNoise &&
			(!v.present || v.dist > z.AttackRadius*cfg.FeedGuardFactor || Chance(d.rng, cfg.ChaseNoiseOverrideChance)))
	if !canReact {
		return
	}
	if z.State == components.Investigating && z.Target != nil && distance(*z.Target, c.Pos) <= cfg.RetargetDistance {
		return
	}

	if c.Kind == components.SenseLight {
		if !d.habit.ShouldInvestigateLight(a.Memory, c.ID, now) {
			z.Reason = "Ignoring familiar light"
			d.bus.Publish(telemetry.NewAgentEvent(telemetry.EventLightIgnored, now, z.ID, c.ID))
			return
		}
		d.bus.Publish(telemetry.NewAgentEvent(telemetry.EventLightAccepted, now, z.ID, c.ID))
	}

	tr := Transition{
		To:         components.Investigating,
		Target:     &c.Pos,
		StimulusID: c.ID,
		Sense:      c.Kind,
	}
	if c.Kind == components.SenseLight {
		tr.Timer = Uniform(d.rng, cfg.LightLinger)
		tr.Reason = "Drawn to warm light"
		tr.DebugTarget = TargetLight
	} else {
		tr.Timer = Uniform(d.rng, cfg.NoiseLinger)
		tr.Reason = "Responding to noise pulse"
		tr.DebugTarget = TargetNoise
	}
	d.trans.Apply(z, tr, now)
}

func (d *DecisionSystem) chase(z *components.Zombie, pos r3.Vec, v view, now float64) Steering {
	if !v.present {
		d.trans.Apply(z, Transition{
			To:     components.Idle,
			Timer:  Uniform(d.rng, d.cfg.Decision.NoPlayerIdle),
			Reason: "No player to pursue",
		}, now)
		return Steering{}
	}
	dir, _ := steerTowards(pos, v.pos, d.cfg.Decision.MinSteerDistance)
	if dir == (r3.Vec{}) {
		return Steering{}
	}
	return Steering{Dir: dir, Speed: z.ChaseSpeed}
}

func (d *DecisionSystem) investigate(a AgentRef, pos r3.Vec, env Surroundings, dt, now float64) Steering {
	z := a.Zombie
	cfg := &d.cfg.Decision

	z.InvestigateTimer -= dt
	light := z.CurrentStimulus == components.SenseLight
	if z.Target == nil || z.InvestigateTimer <= 0 {
		if light && z.ActiveStimulusID != "" {
			d.habit.MarkLightOutcome(z, a.Memory, false, now)
			z.ActiveStimulusID = ""
		}
		d.trans.Apply(z, Transition{
			To:     components.Idle,
			Timer:  Uniform(d.rng, cfg.ExpiredIdle),
			Reason: "Investigation window expired",
		}, now)
		return Steering{}
	}
	if z.Lingering {
		return Steering{}
	}

	dir, dist := steerTowards(pos, *z.Target, 0)
	if dist < cfg.ArriveDistance {
		if light && z.ActiveStimulusID != "" {
			d.habit.MarkLightOutcome(z, a.Memory, true, now)
			z.ActiveStimulusID = ""
		}
		if light && !env.GameOver {
			z.InvestigateTimer = Uniform(d.rng, cfg.ArrivalLinger)
			z.Lingering = true
			z.Reason = "Lingering at light source"
			z.LastStimulus = components.SenseNone
		} else {
			d.trans.Apply(z, Transition{
				To:     components.Idle,
				Timer:  Uniform(d.rng, cfg.CompleteIdle),
				Reason: "Investigation complete",
			}, now)
		}
		return Steering{}
	}

	if z.LastStimulus == components.SenseLight {
		z.Reason = fmt.Sprintf("Heading to light (%.1fm)", dist)
	} else {
		z.Reason = fmt.Sprintf("Tracing noise (%.1fm)", dist)
	}
	return Steering{Dir: dir, Speed: z.InvestigateSpeed}
}

func (d *DecisionSystem) wander(z *components.Zombie, pos r3.Vec) Steering {
	cfg := &d.cfg.Decision
	if z.WanderTarget == nil || distance(pos, *z.WanderTarget) < cfg.WanderArrive || z.DecisionTimer <= 0 {
		p := d.geo.RandomPointNear(d.rng, pos, cfg.WanderRadius)
		z.WanderTarget = &p
		z.DecisionTimer = Uniform(d.rng, cfg.WanderRetarget)
		z.Reason = "Picked new wander point"
	}
	dir, _ := steerTowards(pos, *z.WanderTarget, cfg.MinSteerDistance)
	if dir == (r3.Vec{}) {
		return Steering{}
	}
	z.Reason = fmt.Sprintf("Wandering (%.1fm remaining)", distance(pos, *z.WanderTarget))
	return Steering{Dir: dir, Speed: z.WanderSpeed}
}

func (d *DecisionSystem) idle(z *components.Zombie, now float64) {
	if z.Reason == "" {
		z.Reason = "Idle"
	}
	if z.DecisionTimer <= 0 {
		d.trans.Apply(z, Transition{
			To:     components.Wandering,
			Timer:  Uniform(d.rng, d.cfg.Decision.IdleToWander),
			Reason: "Decided to roam",
		}, now)
	}
}
