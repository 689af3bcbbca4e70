package systems

import (
	"math"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
)

// Habituation applies the per-agent light and noise memory rules.
// Timestamps are simulation seconds.
type Habituation struct {
	cfg   config.MemoryConfig
	noise config.NoiseConfig
	rng   Rand
}

// NewHabituation creates the memory rules from config.
func NewHabituation(cfg *config.Config, rng Rand) *Habituation {
	return &Habituation{cfg: cfg.Memory, noise: cfg.Noise, rng: rng}
}

// ShouldInvestigateLight decides whether an agent follows the light with
// the given id, updating its ledger entry either way. An empty id always
// passes.
func (h *Habituation) ShouldInvestigateLight(mem *components.Memory, id string, now float64) bool {
	if id == "" {
		return true
	}
	if mem.Light == nil {
		mem.Light = make(map[string]components.LightMemoryEntry)
	}
	entry, ok := mem.Light[id]
	if !ok {
		entry = components.LightMemoryEntry{ReturnChance: h.cfg.DefaultReturnChance}
	}

	if now < entry.CooldownUntil {
		// Peek: a reduced chance to look again while cooling down.
		peek := math.Min(entry.ReturnChance*h.cfg.PeekFactor, h.cfg.PeekCap)
		hit := Chance(h.rng, peek)
		entry.LastChecked = now
		if hit {
			entry.CooldownUntil = now + h.cfg.PeekCooldown
			entry.ReturnChance = math.Max(entry.ReturnChance*h.cfg.PeekDecay, h.cfg.PeekFloor)
		}
		mem.Light[id] = entry
		return hit
	}

	chance := entry.ReturnChance
	pursue := Chance(h.rng, chance)
	entry.LastChecked = now
	if pursue {
		entry.CooldownUntil = now + Uniform(h.rng, h.cfg.PursueCooldown)
		entry.ReturnChance = math.Max(chance*h.cfg.PursueDecay, h.cfg.PursueFloor)
	} else {
		entry.CooldownUntil = now + Uniform(h.rng, h.cfg.DeclineCooldown)
		entry.ReturnChance = math.Max(chance*h.cfg.DeclineDecay, h.cfg.DeclineFloor)
	}
	mem.Light[id] = entry
	return pursue
}

// MarkLightOutcome records how the investigation of the agent's active
// light ended. It does nothing without an active stimulus id or a ledger
// entry for it.
func (h *Habituation) MarkLightOutcome(z *components.Zombie, mem *components.Memory, reached bool, now float64) {
	if z.ActiveStimulusID == "" {
		return
	}
	entry, ok := mem.Light[z.ActiveStimulusID]
	if !ok {
		return
	}
	rc := entry.ReturnChance
	if rc <= 0 {
		rc = h.cfg.OutcomeFallback
	}
	entry.LastChecked = now
	if reached {
		entry.CooldownUntil = now + h.cfg.ReachedCooldown
		rc *= h.cfg.ReachedDecay
	} else {
		entry.CooldownUntil = now + h.cfg.GaveUpCooldown
		rc *= h.cfg.GaveUpDecay
	}
	entry.ReturnChance = math.Max(rc, h.cfg.OutcomeFloor)
	mem.Light[z.ActiveStimulusID] = entry
}

// PruneLight forgets lights not checked within the staleness window.
func (h *Habituation) PruneLight(mem *components.Memory, now float64) {
	for id, entry := range mem.Light {
		if now-entry.LastChecked > h.cfg.LightStaleAfter {
			delete(mem.Light, id)
		}
	}
}

// PruneNoise forgets emitters not heard within the staleness window.
func (h *Habituation) PruneNoise(mem *components.Memory, now float64) {
	for key, entry := range mem.Noise {
		if now-entry.LastHeard > h.noise.StaleAfter {
			delete(mem.Noise, key)
		}
	}
}

// NoiseCooldownActive reports whether reactions to key are suppressed.
func (h *Habituation) NoiseCooldownActive(mem *components.Memory, key string, now float64) bool {
	entry, ok := mem.Noise[key]
	return ok && now < entry.CooldownUntil
}

// RecordNoise starts the recall cooldown for key.
func (h *Habituation) RecordNoise(mem *components.Memory, key string, now float64) {
	if mem.Noise == nil {
		mem.Noise = make(map[string]components.NoiseMemoryEntry)
	}
	mem.Noise[key] = components.NoiseMemoryEntry{
		CooldownUntil: now + h.noise.RecallCooldown,
		LastHeard:     now,
	}
}
