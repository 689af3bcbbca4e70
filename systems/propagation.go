package systems

import (
	"math"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/telemetry"
)

// AgentRef points at one agent's components for the duration of a tick.
type AgentRef struct {
	Body   *components.Body
	Zombie *components.Zombie
	Memory *components.Memory
}

const heardRingReason = "Heard expanding noise ring"

// Propagator decays stimuli and sweeps noise rings across agents.
type Propagator struct {
	reg   *StimulusRegistry
	habit *Habituation
	trans *Transitioner
	rng   Rand
	cfg   *config.Config
	bus   *telemetry.Bus

	grid *AgentGrid
	near []int
}

// NewPropagator creates a propagator over reg.
func NewPropagator(cfg *config.Config, reg *StimulusRegistry, habit *Habituation, trans *Transitioner, rng Rand, bus *telemetry.Bus) *Propagator {
	return &Propagator{
		reg:   reg,
		habit: habit,
		trans: trans,
		rng:   rng,
		cfg:   cfg,
		bus:   bus,
		grid:  NewAgentGrid(cfg.Derived.WorldHalf, sweepCellSize),
	}
}

// Advance runs one propagation step: decay and expiry of every stimulus,
// ring growth for every surviving noise, then the ring sweep. The sweep is
// skipped while the round is over.
func (p *Propagator) Advance(dt, now float64, agents []AgentRef, gameOver bool) {
	p.decay(dt, now)
	p.grid.Reset(agents)

	for _, s := range p.reg.stimuli {
		noise, ok := s.(*components.Noise)
		if !ok {
			continue
		}
		if !growRing(&noise.Ring, dt) || gameOver {
			continue
		}
		p.sweep(noise, agents, now)
	}
}

// decay fades every stimulus and removes the spent ones, keeping creation
// order.
func (p *Propagator) decay(dt, now float64) {
	kept := p.reg.stimuli[:0]
	for _, s := range p.reg.stimuli {
		e := components.Base(s)
		e.TTL -= dt
		e.Strength = math.Max(0, e.Strength-e.FadeRate*dt)
		if e.TTL <= 0 || e.Strength <= p.cfg.Noise.ExpireStrength {
			p.bus.Publish(telemetry.NewStimulusExpiredEvent(now, s))
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(p.reg.stimuli); i++ {
		p.reg.stimuli[i] = nil
	}
	p.reg.stimuli = kept
}

// growRing advances a ring and reports whether its radius increased.
func growRing(ring *components.NoiseRing, dt float64) bool {
	ring.Life = math.Min(ring.TTL, ring.Life+dt)
	ring.PrevRadius = ring.CurrentRadius
	ratio := 1.0
	if ring.TTL > 0 {
		ratio = ring.Life / ring.TTL
	}
	ring.CurrentRadius = lerp(0, ring.VisualRadius, ratio)
	return ring.CurrentRadius > ring.PrevRadius
}

// sweep resolves each agent the ring passed over this tick, at most once per
// agent per noise.
func (p *Propagator) sweep(noise *components.Noise, agents []AgentRef, now float64) {
	ring := &noise.Ring
	if ring.Hit == nil {
		ring.Hit = make(map[components.AgentID]struct{})
	}
	key := noise.Key()
	p.near = p.grid.QueryInto(p.near[:0], noise.Pos, ring.CurrentRadius)
	for _, i := range p.near {
		a := agents[i]
		z := a.Zombie
		if z.IsDocile() {
			continue
		}
		if _, done := ring.Hit[z.ID]; done {
			continue
		}
		// The first growth also resolves agents standing on the epicentre.
		dist := distance(a.Body.Pos, noise.Pos)
		if dist > ring.CurrentRadius || (dist <= ring.PrevRadius && ring.PrevRadius > 0) {
			continue
		}

		if p.habit.NoiseCooldownActive(a.Memory, key, now) {
			ring.Hit[z.ID] = struct{}{}
			p.bus.Publish(telemetry.NewAgentEvent(telemetry.EventNoiseSuppressed, now, z.ID, noise.ID))
			continue
		}

		if z.State != components.Chasing {
			target := noise.Pos
			p.trans.Apply(z, Transition{
				To:          components.Investigating,
				Target:      &target,
				Timer:       Uniform(p.rng, p.cfg.Decision.NoiseLinger),
				Reason:      heardRingReason,
				StimulusID:  noise.ID,
				Sense:       components.SenseNoise,
				DebugTarget: TargetNoise,
			}, now)
		}
		p.habit.RecordNoise(a.Memory, key, now)
		ring.Hit[z.ID] = struct{}{}
		p.bus.Publish(telemetry.NewAgentEvent(telemetry.EventNoiseHeard, now, z.ID, noise.ID))
	}
}
