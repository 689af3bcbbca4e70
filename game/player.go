package game

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/systems"
)

// playerClearance is the radius kept free of walls when placing the player.
const playerClearance = 0.65

// Player is the agents' prey. It satisfies systems.Target.
type Player struct {
	Pos        r3.Vec
	Heading    float64
	Health     float64
	Speed      float64
	HalfExtent float64

	footstepCooldown float64
}

// Position implements systems.Target.
func (p *Player) Position() r3.Vec { return p.Pos }

// ApplyDamage implements systems.Target. Health never drops below zero.
func (p *Player) ApplyDamage(amount float64) float64 {
	if amount <= 0 || p.Health <= 0 {
		return 0
	}
	applied := math.Min(amount, p.Health)
	p.Health -= applied
	return applied
}

// Down reports whether the player has no health left.
func (p *Player) Down() bool { return p.Health <= 0 }

// PlacePlayer puts the player at the nearest open point to pos, creating it
// if needed. Placing a new player clears game over; moving an existing one
// restores its health.
func (w *World) PlacePlayer(pos r3.Vec) *Player {
	if w.player == nil {
		w.player = &Player{
			Speed:      w.cfg.Player.Speed,
			HalfExtent: w.cfg.World.PlayerExtent,
		}
		w.gameOver = false
	}
	p := w.player
	p.Pos = w.terrain.FindOpenPosition(w.rng, pos, playerClearance)
	p.Health = w.cfg.Player.Health
	p.footstepCooldown = 0
	p.Heading = 0
	w.logger.Debug("placed player", "x", p.Pos.X, "z", p.Pos.Z)
	return p
}

// RemovePlayer takes the player out of the world.
func (w *World) RemovePlayer() {
	w.player = nil
}

// Player returns the player, or nil when absent.
func (w *World) Player() *Player { return w.player }

// MovePlayer walks the player along the ground direction dir. Moving emits
// footstep noise on a cooldown; each footstep carries the emitter id of the
// floor cell it lands in so agents habituate to a player pacing in place.
// Does nothing without a player or after game over.
func (w *World) MovePlayer(dir r3.Vec, sprint bool, dt float64) {
	p := w.player
	if p == nil || w.gameOver || dt <= 0 {
		return
	}
	cfg := &w.cfg.Player
	fs := &w.cfg.Noise.Footstep

	dir = r3.Vec{X: dir.X, Z: dir.Z}
	moving := r3.Norm2(dir) > 0
	if moving {
		dir = r3.Unit(dir)
	}
	speed := p.Speed
	if sprint {
		speed *= cfg.SprintFactor
	}

	prev := p.Pos
	p.Pos = w.terrain.Clamp(r3.Add(p.Pos, r3.Scale(speed*dt, dir)))
	if w.terrain.Collides(p.Pos, p.HalfExtent) {
		p.Pos = prev
	}
	if moving {
		p.Heading = math.Atan2(dir.X, dir.Z)
	}

	if !moving || r3.Norm(r3.Sub(p.Pos, prev)) <= cfg.MinMoveForStep {
		p.footstepCooldown = math.Max(p.footstepCooldown-dt, 0)
		return
	}
	p.footstepCooldown -= dt
	if p.footstepCooldown > 0 {
		return
	}

	level, interval := 1.0, fs.WalkInterval
	if sprint {
		level, interval = fs.SprintLevel, fs.SprintInterval
	}
	w.registry.CreateNoise(p.Pos, fs.Strength*level, fs.RadiusBase+level*fs.RadiusPerLevel, fs.TTL,
		systems.NoiseOptions{EmitterID: footstepEmitter(p.Pos, fs.CellSize)})
	p.footstepCooldown = interval
}

// footstepEmitter names the floor cell containing pos. Halves round up.
func footstepEmitter(pos r3.Vec, cellSize float64) string {
	cx := int(math.Floor(pos.X/cellSize + 0.5))
	cz := int(math.Floor(pos.Z/cellSize + 0.5))
	return fmt.Sprintf("player-footsteps:%d:%d", cx, cz)
}
