package components

import "gonum.org/v1/gonum/spatial/r3"

// Stimulus is a detectable, decaying event. The concrete type is either
// *Noise or *Light; callers type-switch to reach variant fields.
type Stimulus interface {
	emission() *Emission
}

// Emission holds the fields shared by every stimulus kind.
type Emission struct {
	ID        string
	EmitterID string // groups repeated emissions from one source; empty when none
	Pos       r3.Vec
	Strength  float64
	Radius    float64
	TTL       float64
	FadeRate  float64
}

func (e *Emission) emission() *Emission { return e }

// Base returns the shared fields of any stimulus.
func Base(s Stimulus) *Emission {
	return s.emission()
}

// Key returns the id used for habituation: the emitter id when set,
// otherwise the stimulus id.
func (e *Emission) Key() string {
	if e.EmitterID != "" {
		return e.EmitterID
	}
	return e.ID
}

// NoiseRing is the expanding detection ring of a noise.
type NoiseRing struct {
	VisualRadius  float64
	TTL           float64 // seconds for the ring to reach VisualRadius
	Life          float64
	PrevRadius    float64
	CurrentRadius float64
	Hit           map[AgentID]struct{}
}

// Noise is a transient sound. Agents react to it only through the ring sweep.
type Noise struct {
	Emission
	Ring NoiseRing
}

// Light is a decaying light-kind stimulus such as a flare.
type Light struct {
	Emission
}

// LightSource is a standing illumination emitter.
// Static sources never expire; dynamic ones carry a TTL.
type LightSource struct {
	ID         string
	Pos        r3.Vec
	Strength   float64
	Radius     float64
	Dynamic    bool
	WorldLight bool // ambient fixture, never scored by perception
	TTL        float64
	InitialTTL float64
}
