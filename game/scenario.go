package game

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
)

// Scenario names accepted by SetupScenario.
const (
	ScenarioSandbox = "sandbox"
	ScenarioChase   = "chase"
	ScenarioNoise   = "noise"
	ScenarioLight   = "light"
)

// Scenarios lists every scenario name.
var Scenarios = []string{ScenarioSandbox, ScenarioChase, ScenarioNoise, ScenarioLight}

// Script drives a scenario between steps, for example moving the player.
type Script func(w *World, dt float64)

// ScenarioSpec sizes a scenario.
type ScenarioSpec struct {
	Name    string
	Zombies int // aggressive agents
	Docile  int
}

// SetupScenario populates w and returns the per-step script.
//
//   - sandbox: random agents and a player pacing a circle.
//   - chase: one agent five metres from a stationary player.
//   - noise: agents around the centre and a click noise every four seconds.
//   - light: agents and a flare placed every ten seconds, no player.
func SetupScenario(w *World, spec ScenarioSpec) (Script, error) {
	switch spec.Name {
	case "", ScenarioSandbox:
		if err := w.spawnMany(spec.Zombies, spec.Docile); err != nil {
			return nil, err
		}
		w.PlacePlayer(r3.Vec{Y: w.cfg.World.AgentHeight})
		return pacePlayer(6), nil

	case ScenarioChase:
		pos := r3.Vec{Y: w.cfg.World.AgentHeight}
		if _, err := w.SpawnZombie(SpawnOptions{Position: &pos}); err != nil {
			return nil, err
		}
		w.PlacePlayer(r3.Vec{X: 5, Y: w.cfg.World.AgentHeight})
		return nil, nil

	case ScenarioNoise:
		if err := w.spawnMany(spec.Zombies, spec.Docile); err != nil {
			return nil, err
		}
		return every(4, func(w *World) {
			p := w.terrain.RandomPointInWorld(w.rng)
			w.ClickNoise(p)
		}), nil

	case ScenarioLight:
		if err := w.spawnMany(spec.Zombies, spec.Docile); err != nil {
			return nil, err
		}
		return every(10, func(w *World) {
			p := w.terrain.RandomPointInWorld(w.rng)
			w.PlaceLight(p)
		}), nil
	}
	return nil, fmt.Errorf("unknown scenario %q", spec.Name)
}

func (w *World) spawnMany(aggressive, docile int) error {
	for i := 0; i < aggressive+docile; i++ {
		b := components.Aggressive
		if i >= aggressive {
			b = components.Docile
		}
		if _, err := w.SpawnZombie(SpawnOptions{Behavior: b}); err != nil {
			return err
		}
	}
	return nil
}

// pacePlayer walks the player around a circle of the given radius.
func pacePlayer(radius float64) Script {
	return func(w *World, dt float64) {
		p := w.Player()
		if p == nil {
			return
		}
		angle := w.now * w.cfg.Player.Speed / radius / 4
		goal := r3.Vec{X: math.Cos(angle) * radius, Z: math.Sin(angle) * radius}
		dir := r3.Sub(goal, r3.Vec{X: p.Pos.X, Z: p.Pos.Z})
		w.MovePlayer(dir, false, dt)
	}
}

// every runs fn once per period seconds, starting immediately.
func every(period float64, fn func(w *World)) Script {
	next := 0.0
	return func(w *World, _ float64) {
		if w.now < next {
			return
		}
		fn(w)
		next = w.now + period
	}
}
