package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/systems"
)

// lamp is a fixed world light of the default level.
type lamp struct {
	x, z      float64
	intensity float64
	reach     float64 // spot distance; agents sense three quarters of it
}

var defaultLamps = []lamp{
	{x: -6, z: -4, intensity: 0.6, reach: 20},
	{x: 9, z: 8, intensity: 0.5, reach: 20},
}

// buildLevel scatters walls and installs the lamps.
func (w *World) buildLevel() {
	w.terrain.Obstacles = systems.GenerateWalls(w.rng, w.terrain, w.cfg.Derived.WorldHalf, w.cfg.World.Walls)
	for _, l := range defaultLamps {
		w.AddWorldLight(r3.Vec{X: l.x, Z: l.z}, l.intensity, l.reach*0.75)
	}
	w.logger.Debug("built level", "walls", len(w.terrain.Obstacles), "lamps", len(defaultLamps))
}
