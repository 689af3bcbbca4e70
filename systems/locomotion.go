package systems

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/telemetry"
)

// Locomotion moves agents in straight lines, clamps them to the level and
// rolls back moves that end inside an obstacle.
type Locomotion struct {
	geo Geometry
}

// NewLocomotion creates the movement step.
func NewLocomotion(geo Geometry) *Locomotion {
	return &Locomotion{geo: geo}
}

// Move applies s to the agent's body. It reports whether the move was
// rolled back by a collision.
func (l *Locomotion) Move(a AgentRef, s Steering, dt float64) bool {
	body := a.Body
	prev := body.Pos
	if s.Dir != (r3.Vec{}) {
		body.Pos = r3.Add(body.Pos, r3.Scale(s.Speed*dt, s.Dir))
		body.Heading = headingOf(s.Dir)
	}
	body.Pos = l.geo.Clamp(body.Pos)
	if l.geo.Collides(body.Pos, body.HalfExtent) {
		body.Pos = prev
		return true
	}
	return false
}

// Contact applies feeding damage from agents touching the player.
type Contact struct {
	bus *telemetry.Bus
}

// NewContact creates the contact damage step.
func NewContact(bus *telemetry.Bus) *Contact {
	return &Contact{bus: bus}
}

// Apply damages the player once for this tick when the agent is within its
// attack radius. It returns the damage actually applied.
func (c *Contact) Apply(a AgentRef, env Surroundings, dt, now float64) float64 {
	z := a.Zombie
	if env.Player == nil || env.GameOver || z.IsDocile() {
		return 0
	}
	dist := distance(a.Body.Pos, env.Player.Position())
	if dist >= z.AttackRadius {
		return 0
	}
	applied := env.Player.ApplyDamage(z.DamageRate * dt)
	z.Reason = fmt.Sprintf("Feeding (%.2fm)", dist)
	c.bus.Publish(telemetry.NewDamageEvent(now, z.ID, applied))
	return applied
}
