package systems

import (
	"time"

	"github.com/pthm-cable/lurch/telemetry"
)

// Phase identifiers timed by the perf collector, in tick order.
const (
	PhaseLights      = telemetry.PhaseLights
	PhasePropagation = telemetry.PhasePropagation
	PhaseDecision    = telemetry.PhaseDecision
	PhaseLocomotion  = telemetry.PhaseLocomotion
	PhaseContact     = telemetry.PhaseContact
	PhaseTelemetry   = telemetry.PhaseTelemetry
)

// PhaseInfo describes one step of World.Step.
type PhaseInfo struct {
	ID       string
	Name     string
	Summary  string
	Category string // "stimuli", "agents" or "internal"
}

// SystemRegistry lists the tick phases so perf reports and logs agree on
// names and grouping.
type SystemRegistry struct {
	phases []PhaseInfo
	byID   map[string]int
}

// NewSystemRegistry returns the registry of every phase World.Step runs.
func NewSystemRegistry() *SystemRegistry {
	r := &SystemRegistry{byID: make(map[string]int)}
	for _, p := range []PhaseInfo{
		{PhaseLights, "Lights", "Expires dynamic light sources", "stimuli"},
		{PhasePropagation, "Propagation", "Decays stimuli and sweeps noise rings", "stimuli"},
		{PhaseDecision, "Decision", "Prunes memory, arbitrates stimuli and steps the state machine", "agents"},
		{PhaseLocomotion, "Locomotion", "Moves agents with clamp and collision rollback", "agents"},
		{PhaseContact, "Contact", "Applies feeding damage to the player", "agents"},
		{PhaseTelemetry, "Telemetry", "Flushes window statistics and output files", "internal"},
	} {
		r.Register(p)
	}
	return r
}

// Register adds a phase, replacing any earlier phase with the same id.
func (r *SystemRegistry) Register(p PhaseInfo) {
	if i, ok := r.byID[p.ID]; ok {
		r.phases[i] = p
		return
	}
	r.byID[p.ID] = len(r.phases)
	r.phases = append(r.phases, p)
}

// Get returns the phase with the given id.
func (r *SystemRegistry) Get(id string) (PhaseInfo, bool) {
	i, ok := r.byID[id]
	if !ok {
		return PhaseInfo{}, false
	}
	return r.phases[i], true
}

// Name returns the display name of a phase, or the id when unknown.
func (r *SystemRegistry) Name(id string) string {
	if p, ok := r.Get(id); ok {
		return p.Name
	}
	return id
}

// All returns the phases in tick order.
func (r *SystemRegistry) All() []PhaseInfo {
	return r.phases
}

// CategoryShare is the summed perf share of one phase category.
type CategoryShare struct {
	Category string
	Avg      time.Duration
	Pct      float64
}

// Breakdown groups perf stats by category, in first-seen phase order.
func (r *SystemRegistry) Breakdown(s telemetry.PerfStats) []CategoryShare {
	var out []CategoryShare
	index := make(map[string]int)
	for _, p := range r.phases {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, CategoryShare{Category: p.Category})
		}
		out[i].Avg += s.PhaseAvg[p.ID]
		out[i].Pct += s.PhasePct[p.ID]
	}
	return out
}
