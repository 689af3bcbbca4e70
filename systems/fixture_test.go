package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/telemetry"
)

const testDT = 1.0 / 60.0

// fixture wires the systems the way the game does, on an empty terrain.
type fixture struct {
	cfg     *config.Config
	rng     *rand.Rand
	terrain *Terrain
	bus     *telemetry.Bus
	log     *telemetry.EventLog
	reg     *StimulusRegistry
	habit   *Habituation
	trans   *Transitioner
	prop    *Propagator
	dec     *DecisionSystem
	move    *Locomotion
	now     float64
}

func newFixture(seed int64) *fixture {
	return newFixtureWith(config.Default(), seed)
}

func newFixtureWith(cfg *config.Config, seed int64) *fixture {
	f := &fixture{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		terrain: NewTerrain(cfg),
		bus:     telemetry.NewBus(),
		log:     &telemetry.EventLog{},
	}
	f.bus.Subscribe(f.log)
	f.reg = NewStimulusRegistry(cfg, f.bus, func() float64 { return f.now })
	f.habit = NewHabituation(cfg, f.rng)
	f.trans = NewTransitioner(cfg, f.rng, f.terrain, f.bus)
	f.prop = NewPropagator(cfg, f.reg, f.habit, f.trans, f.rng, f.bus)
	f.dec = NewDecisionSystem(cfg, f.reg, f.habit, f.trans, f.rng, f.terrain, f.bus)
	f.move = NewLocomotion(f.terrain)
	return f
}

func (f *fixture) agent(id components.AgentID, pos r3.Vec) AgentRef {
	return f.agentWith(id, pos, components.Aggressive)
}

func (f *fixture) agentWith(id components.AgentID, pos r3.Vec, b components.Behavior) AgentRef {
	z := &components.Zombie{
		ID:            id,
		Behavior:      b,
		Capabilities:  components.CapabilitiesFor(b, f.cfg.Zombie),
		DecisionTimer: 2,
		Reason:        defaultReason,
		DebugTarget:   TargetNone,
	}
	mem := components.NewMemory()
	return AgentRef{
		Body:   &components.Body{Pos: pos, HalfExtent: f.cfg.World.AgentExtent},
		Zombie: z,
		Memory: &mem,
	}
}

// tick runs one full agent pass the way game.World.Step does.
func (f *fixture) tick(agents []AgentRef, env Surroundings) {
	f.now += testDT
	f.reg.TickDynamicLights(testDT)
	f.prop.Advance(testDT, f.now, agents, env.GameOver)
	for _, a := range agents {
		s := f.dec.Update(a, env, testDT, f.now)
		f.move.Move(a, s, testDT)
	}
}

// stubPlayer is a stationary damage target.
type stubPlayer struct {
	pos    r3.Vec
	health float64
	taken  float64
}

func (p *stubPlayer) Position() r3.Vec { return p.pos }

func (p *stubPlayer) ApplyDamage(amount float64) float64 {
	if amount > p.health {
		amount = p.health
	}
	p.health -= amount
	p.taken += amount
	return amount
}

func vec(x, z float64) r3.Vec {
	return r3.Vec{X: x, Y: 1, Z: z}
}

func r3Ground(x, z float64) r3.Vec {
	return r3.Vec{X: x, Z: z}
}
