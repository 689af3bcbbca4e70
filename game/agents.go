package game

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/systems"
)

// ErrInvalidSpawn is returned when a spawn position is not finite.
var ErrInvalidSpawn = errors.New("invalid spawn position")

// DefaultRemoveRadius is the pick radius of RemoveNearestZombie.
const DefaultRemoveRadius = 2.5

// spawnClearance is the radius kept free of walls around a new agent.
const spawnClearance = 0.6

// SpawnOptions describe a new agent. A nil Position picks a random point
// near the centre.
type SpawnOptions struct {
	Position *r3.Vec
	Behavior components.Behavior
}

// AgentView is a read-only snapshot of one agent. Memory maps are copies.
type AgentView struct {
	Body   components.Body
	Zombie components.Zombie
	Memory components.Memory
}

// DebugEntry is the per-agent diagnostic line.
type DebugEntry struct {
	State           string
	Reason          string
	CurrentStimulus string
	DebugTarget     string
}

// SpawnZombie adds an agent and returns its id.
func (w *World) SpawnZombie(opts SpawnOptions) (components.AgentID, error) {
	var pos r3.Vec
	if opts.Position != nil {
		pos = *opts.Position
		if !systems.Finite(pos) {
			w.logger.Warn("rejected spawn", "x", pos.X, "y", pos.Y, "z", pos.Z)
			return 0, fmt.Errorf("spawning at %v: %w", pos, ErrInvalidSpawn)
		}
	} else {
		half := w.cfg.Derived.SpawnHalf
		pos = r3.Vec{X: systems.Spread(w.rng, half), Y: w.cfg.World.AgentHeight, Z: systems.Spread(w.rng, half)}
	}
	pos = w.terrain.FindOpenPosition(w.rng, pos, spawnClearance)

	id := w.nextID
	w.nextID++

	body := components.Body{Pos: pos, HalfExtent: w.cfg.World.AgentExtent}
	zombie := systems.NewZombie(id, opts.Behavior, w.rng, w.cfg)
	memory := components.NewMemory()

	e := w.agentMap.NewEntity(&body, &zombie, &memory)
	w.order = append(w.order, e)
	w.byID[id] = e

	w.logger.Debug("spawned zombie", "id", id, "behavior", opts.Behavior.String(), "x", pos.X, "z", pos.Z)
	return id, nil
}

// RemoveZombie deletes an agent. Returns false if the id is unknown.
func (w *World) RemoveZombie(id components.AgentID) bool {
	e, ok := w.byID[id]
	if !ok {
		return false
	}
	delete(w.byID, id)
	for i, o := range w.order {
		if o == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.ecs.Alive(e) {
		w.ecs.RemoveEntity(e)
	}
	return true
}

// RemoveAllZombies deletes every agent and returns how many there were.
func (w *World) RemoveAllZombies() int {
	n := len(w.order)
	for len(w.order) > 0 {
		_, z, _ := w.agentMap.Get(w.order[0])
		w.RemoveZombie(z.ID)
	}
	return n
}

// RemoveNearestZombie deletes the agent closest to point if it lies strictly
// within radius. A radius of zero uses DefaultRemoveRadius.
func (w *World) RemoveNearestZombie(point r3.Vec, radius float64) bool {
	if radius <= 0 {
		radius = DefaultRemoveRadius
	}
	best := math.Inf(1)
	var bestID components.AgentID
	found := false
	for _, e := range w.order {
		body, z, _ := w.agentMap.Get(e)
		d := components.Distance(body.Pos, point)
		if d < radius && d < best {
			best, bestID, found = d, z.ID, true
		}
	}
	if !found {
		return false
	}
	return w.RemoveZombie(bestID)
}

// Agent returns a snapshot of one agent.
func (w *World) Agent(id components.AgentID) (AgentView, bool) {
	e, ok := w.byID[id]
	if !ok {
		return AgentView{}, false
	}
	return snapshot(w.agentMap.Get(e)), true
}

// Agents returns snapshots of every agent in spawn order.
func (w *World) Agents() []AgentView {
	out := make([]AgentView, 0, len(w.order))
	for _, e := range w.order {
		out = append(out, snapshot(w.agentMap.Get(e)))
	}
	return out
}

// ZombieCount returns the number of live agents.
func (w *World) ZombieCount() int { return len(w.order) }

// Debug returns the diagnostic entry of one agent.
func (w *World) Debug(id components.AgentID) (DebugEntry, bool) {
	e, ok := w.byID[id]
	if !ok {
		return DebugEntry{}, false
	}
	_, z, _ := w.agentMap.Get(e)
	return DebugEntry{
		State:           z.State.String(),
		Reason:          z.Reason,
		CurrentStimulus: z.CurrentStimulus.String(),
		DebugTarget:     z.DebugTarget,
	}, true
}

func snapshot(body *components.Body, z *components.Zombie, mem *components.Memory) AgentView {
	v := AgentView{Body: *body, Zombie: *z, Memory: mem.Clone()}
	if z.Target != nil {
		t := *z.Target
		v.Zombie.Target = &t
	}
	if z.WanderTarget != nil {
		t := *z.WanderTarget
		v.Zombie.WanderTarget = &t
	}
	return v
}

// agentRefs resolves component pointers for this step. They are invalid
// after the next spawn or removal.
func (w *World) agentRefs() []systems.AgentRef {
	refs := make([]systems.AgentRef, 0, len(w.order))
	for _, e := range w.order {
		body, z, mem := w.agentMap.Get(e)
		refs = append(refs, systems.AgentRef{Body: body, Zombie: z, Memory: mem})
	}
	return refs
}

// forEachAgent visits every stored agent in archetype order.
func (w *World) forEachAgent(fn func(body *components.Body, z *components.Zombie, mem *components.Memory)) {
	query := w.agentFilter.Query()
	for query.Next() {
		fn(query.Get())
	}
}
