package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
)

// Candidate is the best stimulus an agent could attend to this tick.
type Candidate struct {
	ID       string
	Kind     components.Sense
	Pos      r3.Vec
	Strength float64
	Radius   float64
	Score    float64
	Source   bool // a light source rather than a light-kind stimulus
}

// FindStimulusForAgent scores light-kind stimuli and non-world light
// sources in range of pos and returns the best one. Noise is never scored:
// agents hear noise only through the ring sweep. Ties keep the earlier
// candidate, stimuli before sources.
func FindStimulusForAgent(reg *StimulusRegistry, pos r3.Vec, rng Rand, cfg *config.PerceptionConfig) (Candidate, bool) {
	var best Candidate
	bestScore := 0.0
	found := false

	for _, s := range reg.Stimuli() {
		light, ok := s.(*components.Light)
		if !ok {
			continue
		}
		dist := distance(pos, light.Pos)
		if dist > light.Radius {
			continue
		}
		score := light.Strength * cfg.LightWeight / (1 + dist*cfg.StimulusFalloff)
		if score > bestScore {
			bestScore = score
			best = Candidate{
				ID:       light.ID,
				Kind:     components.SenseLight,
				Pos:      light.Pos,
				Strength: light.Strength,
				Radius:   light.Radius,
				Score:    score,
			}
			found = true
		}
	}

	for _, src := range reg.LightSources() {
		if src.WorldLight {
			continue
		}
		dist := distance(pos, src.Pos)
		if dist > src.Radius {
			continue
		}
		flicker := Uniform(rng, cfg.Flicker)
		score := src.Strength * cfg.LightWeight * flicker / (1 + dist*cfg.SourceFalloff)
		if score > bestScore {
			bestScore = score
			best = Candidate{
				ID:       src.ID,
				Kind:     components.SenseLight,
				Pos:      src.Pos,
				Strength: src.Strength,
				Radius:   src.Radius,
				Score:    score,
				Source:   true,
			}
			found = true
		}
	}

	return best, found
}
