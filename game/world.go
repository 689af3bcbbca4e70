// Package game owns the simulation context: agent storage, the player, the
// level and the per-tick system order.
package game

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/systems"
	"github.com/pthm-cable/lurch/telemetry"
)

// Options configures a World.
type Options struct {
	Seed   int64
	Logger *slog.Logger // defaults to slog.Default()

	// BareLevel skips walls and lamps, leaving an open floor.
	BareLevel bool

	// Telemetry
	Output        *telemetry.OutputManager // nil disables CSV output
	LogStats      bool
	StatsCallback func(telemetry.WindowStats)
}

// World holds the complete simulation state. It is not safe for
// concurrent use.
type World struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand

	// Agent storage
	ecs         *ecs.World
	agentMap    *ecs.Map3[components.Body, components.Zombie, components.Memory]
	agentFilter *ecs.Filter3[components.Body, components.Zombie, components.Memory]
	order       []ecs.Entity // spawn order, drives iteration
	byID        map[components.AgentID]ecs.Entity
	nextID      components.AgentID

	// Systems
	terrain  *systems.Terrain
	phases   *systems.SystemRegistry
	bus      *telemetry.Bus
	registry *systems.StimulusRegistry
	habit    *systems.Habituation
	trans    *systems.Transitioner
	prop     *systems.Propagator
	decision *systems.DecisionSystem
	move     *systems.Locomotion
	contact  *systems.Contact

	player   *Player
	gameOver bool

	// Clock
	tick int32
	now  float64

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewWorld creates a world with the level built and no agents.
func NewWorld(cfg *config.Config, opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &World{
		cfg:           cfg,
		logger:        logger,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		ecs:           ecs.NewWorld(),
		byID:          make(map[components.AgentID]ecs.Entity),
		nextID:        1,
		terrain:       systems.NewTerrain(cfg),
		phases:        systems.NewSystemRegistry(),
		bus:           telemetry.NewBus(),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:        opts.Output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	w.agentMap = ecs.NewMap3[components.Body, components.Zombie, components.Memory](w.ecs)
	w.agentFilter = ecs.NewFilter3[components.Body, components.Zombie, components.Memory](w.ecs)

	w.registry = systems.NewStimulusRegistry(cfg, w.bus, w.Now)
	w.habit = systems.NewHabituation(cfg, w.rng)
	w.trans = systems.NewTransitioner(cfg, w.rng, w.terrain, w.bus)
	w.prop = systems.NewPropagator(cfg, w.registry, w.habit, w.trans, w.rng, w.bus)
	w.decision = systems.NewDecisionSystem(cfg, w.registry, w.habit, w.trans, w.rng, w.terrain, w.bus)
	w.move = systems.NewLocomotion(w.terrain)
	w.contact = systems.NewContact(w.bus)

	w.bus.Subscribe(w.collector)
	w.bus.Subscribe(newLogSink(logger))

	if !opts.BareLevel {
		w.buildLevel()
	}
	return w
}

// Step advances the simulation by dt seconds: dynamic lights, the stimulus
// registry, then one sequential pass over the agents in spawn order.
// dt is clamped to physics.max_dt; NaN or negative dt is a no-op.
func (w *World) Step(dt float64) {
	if math.IsNaN(dt) || dt < 0 {
		return
	}
	dt = math.Min(dt, w.cfg.Physics.MaxDT)

	w.perf.StartTick()
	w.tick++
	w.now += dt

	w.perf.StartPhase(systems.PhaseLights)
	w.registry.TickDynamicLights(dt)

	agents := w.agentRefs()

	w.perf.StartPhase(systems.PhasePropagation)
	w.prop.Advance(dt, w.now, agents, w.gameOver)

	for _, a := range agents {
		env := w.surroundings()

		w.perf.StartPhase(systems.PhaseDecision)
		steer := w.decision.Update(a, env, dt, w.now)

		w.perf.StartPhase(systems.PhaseLocomotion)
		w.move.Move(a, steer, dt)

		w.perf.StartPhase(systems.PhaseContact)
		if w.contact.Apply(a, env, dt, w.now) > 0 && w.player.Health <= 0 {
			w.setGameOver()
		}
	}

	w.perf.StartPhase(systems.PhaseTelemetry)
	w.flushTelemetry()

	w.perf.EndTick()
}

// surroundings avoids handing the systems a typed nil player.
func (w *World) surroundings() systems.Surroundings {
	env := systems.Surroundings{GameOver: w.gameOver}
	if w.player != nil {
		env.Player = w.player
	}
	return env
}

func (w *World) setGameOver() {
	if w.gameOver {
		return
	}
	w.gameOver = true
	w.logger.Info("game over", "tick", w.tick, "time", w.now)
}

// ResetRound clears game over and restores the player's health.
func (w *World) ResetRound() {
	w.gameOver = false
	if w.player != nil {
		w.player.Health = w.cfg.Player.Health
		w.player.footstepCooldown = 0
	}
}

// Subscribe adds a sink to the world's event bus.
func (w *World) Subscribe(s telemetry.Sink) (unsubscribe func()) {
	return w.bus.Subscribe(s)
}

// Tick returns the number of steps taken.
func (w *World) Tick() int32 { return w.tick }

// Now returns simulation time in seconds.
func (w *World) Now() float64 { return w.now }

// GameOver reports whether the player is down.
func (w *World) GameOver() bool { return w.gameOver }

// Config returns the world's configuration.
func (w *World) Config() *config.Config { return w.cfg }

// Terrain returns the level geometry.
func (w *World) Terrain() *systems.Terrain { return w.terrain }

// Stimuli returns the registry; callers must not retain stimulus pointers
// across steps.
func (w *World) Stimuli() *systems.StimulusRegistry { return w.registry }

// Phases returns the metadata of the timed phases.
func (w *World) Phases() *systems.SystemRegistry { return w.phases }

// Perf returns the current performance window.
func (w *World) Perf() telemetry.PerfStats { return w.perf.Stats() }
