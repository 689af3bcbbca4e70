package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/config"
)

// Geometry is the world collaborator consumed by the decision and
// propagation systems.
type Geometry interface {
	// Clamp returns p limited to the walkable area.
	Clamp(p r3.Vec) r3.Vec
	// RandomPointNear returns a clamped point within radius of origin.
	RandomPointNear(rng Rand, origin r3.Vec, radius float64) r3.Vec
	// RandomPointInWorld returns a point anywhere in the roaming area.
	RandomPointInWorld(rng Rand) r3.Vec
	// HasLineOfSight reports whether from can see to at eye height.
	HasLineOfSight(from, to r3.Vec) bool
	// Collides reports whether a box of the given half extent centred on p
	// overlaps an obstacle.
	Collides(p r3.Vec, halfExtent float64) bool
}

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max r3.Vec
}

// Expand grows the box by d on every side.
func (b AABB) Expand(d float64) AABB {
	pad := r3.Vec{X: d, Y: d, Z: d}
	return AABB{Min: r3.Sub(b.Min, pad), Max: r3.Add(b.Max, pad)}
}

// Overlaps reports whether two boxes intersect.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Contains reports whether p lies inside the box.
func (b AABB) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Center returns the box midpoint.
func (b AABB) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// BoxAround returns the box of an upright body standing with its centre at p.
func BoxAround(p r3.Vec, halfExtent, height float64) AABB {
	return AABB{
		Min: r3.Vec{X: p.X - halfExtent, Y: p.Y - height/2, Z: p.Z - halfExtent},
		Max: r3.Vec{X: p.X + halfExtent, Y: p.Y + height/2, Z: p.Z + halfExtent},
	}
}

const (
	losPadding   = 0.15 // obstacle inflation for sight rays
	losTolerance = 0.25 // hits this close to the target do not block
	minSightLen  = 0.001
)

// Terrain is the square level with wall obstacles. An empty obstacle list is legal.
type Terrain struct {
	Half      float64 // clamp half extent on X and Z
	RoamHalf  float64 // half extent for whole-world random points
	Height    float64 // standing Y of agents
	BodySize  float64 // agent box height
	EyeHeight float64
	Obstacles []AABB
}

// NewTerrain creates an empty terrain sized by the config.
func NewTerrain(cfg *config.Config) *Terrain {
	return &Terrain{
		Half:      cfg.Derived.ClampHalf,
		RoamHalf:  cfg.Derived.RoamHalf,
		Height:    cfg.World.AgentHeight,
		BodySize:  2 * cfg.World.AgentHeight,
		EyeHeight: cfg.World.EyeHeight,
	}
}

// Clamp limits X and Z to the walkable square. Y is preserved.
func (t *Terrain) Clamp(p r3.Vec) r3.Vec {
	p.X = clamp(p.X, -t.Half, t.Half)
	p.Z = clamp(p.Z, -t.Half, t.Half)
	return p
}

// RandomPointNear picks a uniform angle and a uniform distance up to radius.
func (t *Terrain) RandomPointNear(rng Rand, origin r3.Vec, radius float64) r3.Vec {
	angle := rng.Float64() * 2 * math.Pi
	dist := rng.Float64() * radius
	return t.Clamp(r3.Vec{
		X: origin.X + math.Cos(angle)*dist,
		Y: t.Height,
		Z: origin.Z + math.Sin(angle)*dist,
	})
}

// RandomPointInWorld picks a point within the roaming square.
func (t *Terrain) RandomPointInWorld(rng Rand) r3.Vec {
	return r3.Vec{X: Spread(rng, t.RoamHalf), Y: t.Height, Z: Spread(rng, t.RoamHalf)}
}

// HasLineOfSight casts a ray between eye points and tests it against the
// padded obstacle boxes.
func (t *Terrain) HasLineOfSight(from, to r3.Vec) bool {
	origin := r3.Add(from, r3.Vec{Y: t.EyeHeight})
	target := r3.Add(to, r3.Vec{Y: t.EyeHeight})
	delta := r3.Sub(target, origin)
	dist := r3.Norm(delta)
	if dist <= minSightLen {
		return true
	}
	dir := r3.Scale(1/dist, delta)
	for _, ob := range t.Obstacles {
		hit, ok := rayAABB(origin, dir, ob.Expand(losPadding))
		if ok && hit < dist-losTolerance {
			return false
		}
	}
	return true
}

// Collides tests an upright body box centred at p against every obstacle.
func (t *Terrain) Collides(p r3.Vec, halfExtent float64) bool {
	box := BoxAround(p, halfExtent, t.BodySize)
	for _, ob := range t.Obstacles {
		if box.Overlaps(ob) {
			return true
		}
	}
	return false
}

// obstructed reports whether p is inside an obstacle padded by radius.
func (t *Terrain) obstructed(p r3.Vec, radius float64) bool {
	for _, ob := range t.Obstacles {
		if ob.Expand(radius).Contains(p) {
			return true
		}
	}
	return false
}

// FindOpenPosition returns preferred when it is free, otherwise a nearby free
// point, otherwise the origin, otherwise the clamped preference.
func (t *Terrain) FindOpenPosition(rng Rand, preferred r3.Vec, radius float64) r3.Vec {
	const attempts = 24
	p := t.Clamp(r3.Vec{X: preferred.X, Y: t.Height, Z: preferred.Z})
	if !t.obstructed(p, radius) {
		return p
	}
	for i := 0; i < attempts; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := radius + 0.6 + rng.Float64()*4
		c := t.Clamp(r3.Vec{
			X: preferred.X + math.Cos(angle)*dist,
			Y: t.Height,
			Z: preferred.Z + math.Sin(angle)*dist,
		})
		if !t.obstructed(c, radius) {
			return c
		}
	}
	if centre := (r3.Vec{Y: t.Height}); !t.obstructed(centre, radius) {
		return centre
	}
	return p
}

// rayAABB returns the entry distance of a unit ray into a box using the slab
// method. A ray starting inside the box hits at 0.
func rayAABB(origin, dir r3.Vec, box AABB) (float64, bool) {
	tmin := 0.0
	tmax := math.Inf(1)
	axes := [3][4]float64{
		{origin.X, dir.X, box.Min.X, box.Max.X},
		{origin.Y, dir.Y, box.Min.Y, box.Max.Y},
		{origin.Z, dir.Z, box.Min.Z, box.Max.Z},
	}
	for _, a := range axes {
		o, d, lo, hi := a[0], a[1], a[2], a[3]
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// Wall dimensions of generated levels.
const (
	wallLength    = 2.0
	wallThickness = 0.5
	wallHeight    = 2.0
)

// GenerateWalls scatters count walls across the level, keeping the centre
// clear and walls apart. Walls alternate between the two axes with a small
// random twist; the returned boxes bound the twisted walls.
func GenerateWalls(rng Rand, t *Terrain, worldHalf float64, count int) []AABB {
	const (
		minFromCentre  = 6.0
		minBetween     = 3.0
		maxAttempts    = 30
		edgeBiasChance = 0.55
	)

	centres := make([]r3.Vec, 0, count)
	sample := func() r3.Vec {
		if rng.Float64() < edgeBiasChance {
			angle := rng.Float64() * 2 * math.Pi
			radius := worldHalf*0.65 + rng.Float64()*worldHalf*0.3
			return r3.Vec{X: math.Cos(angle) * radius, Y: wallHeight / 2, Z: math.Sin(angle) * radius}
		}
		return r3.Vec{X: Spread(rng, worldHalf*0.55), Y: wallHeight / 2, Z: Spread(rng, worldHalf*0.55)}
	}
	tooClose := func(c r3.Vec) bool {
		if math.Hypot(c.X, c.Z) < minFromCentre {
			return true
		}
		for _, e := range centres {
			if r3.Norm(r3.Sub(e, c)) < minBetween {
				return true
			}
		}
		return false
	}

	walls := make([]AABB, 0, count)
	for i := 0; i < count; i++ {
		c := sample()
		for attempt := 0; tooClose(c) && attempt < maxAttempts; attempt++ {
			c = sample()
		}
		if tooClose(c) {
			dir := r3.Vec{X: c.X, Z: c.Z}
			if r3.Norm(dir) == 0 {
				dir = r3.Vec{X: 1}
			}
			dir = r3.Scale(minFromCentre+1.5, r3.Unit(dir))
			c = r3.Vec{X: dir.X, Y: wallHeight / 2, Z: dir.Z}
		}
		c = t.Clamp(c)
		centres = append(centres, c)

		angle := Spread(rng, math.Pi/12)
		if i%2 == 1 {
			angle += math.Pi / 2
		}
		cos, sin := math.Abs(math.Cos(angle)), math.Abs(math.Sin(angle))
		hx := cos*wallLength/2 + sin*wallThickness/2
		hz := sin*wallLength/2 + cos*wallThickness/2
		walls = append(walls, AABB{
			Min: r3.Vec{X: c.X - hx, Y: 0, Z: c.Z - hz},
			Max: r3.Vec{X: c.X + hx, Y: wallHeight, Z: c.Z + hz},
		})
	}
	return walls
}
