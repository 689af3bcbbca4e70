package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/telemetry"
)

// NoiseOptions customises a noise ring. Zero values take the defaults:
// the configured ripple speed, a visual radius equal to the detection
// radius, and no emitter.
type NoiseOptions struct {
	Speed        float64
	VisualRadius float64
	EmitterID    string
}

// DynamicLightOptions customises a placed light. Zero values take the
// configured dynamic light defaults.
type DynamicLightOptions struct {
	TTL       float64
	Intensity float64
	Radius    float64
}

// StimulusRegistry owns the live stimuli and light sources.
// Stimuli are kept in creation order.
type StimulusRegistry struct {
	cfg     *config.Config
	bus     *telemetry.Bus
	clock   func() float64
	stimuli []components.Stimulus
	lights  []components.LightSource

	nextStimulus int
	nextDynamic  int
	nextStatic   int
}

// NewStimulusRegistry creates an empty registry. clock supplies event
// timestamps and may be nil.
func NewStimulusRegistry(cfg *config.Config, bus *telemetry.Bus, clock func() float64) *StimulusRegistry {
	if clock == nil {
		clock = func() float64 { return 0 }
	}
	return &StimulusRegistry{cfg: cfg, bus: bus, clock: clock}
}

// CreateNoise adds a noise stimulus with an expanding detection ring.
func (r *StimulusRegistry) CreateNoise(pos r3.Vec, strength, radius, ttl float64, opts NoiseOptions) *components.Noise {
	speed := opts.Speed
	if speed == 0 {
		speed = r.cfg.Noise.RippleSpeedMultiplier
	}
	visual := opts.VisualRadius
	if visual == 0 {
		visual = radius
	}

	n := &components.Noise{
		Emission: components.Emission{
			ID:        fmt.Sprintf("noise-%d", r.nextStimulus),
			EmitterID: opts.EmitterID,
			Pos:       pos,
			Strength:  strength,
			Radius:    radius,
			TTL:       ttl,
			FadeRate:  strength / math.Max(ttl, r.cfg.Noise.MinFadeTTL),
		},
		Ring: components.NoiseRing{
			VisualRadius: visual,
			TTL:          ttl / math.Max(speed, r.cfg.Noise.MinRippleSpeed),
			Hit:          make(map[components.AgentID]struct{}),
		},
	}
	r.nextStimulus++
	r.stimuli = append(r.stimuli, n)
	r.bus.Publish(telemetry.NewNoiseCreatedEvent(r.clock(), n))
	return n
}

// CreateLightStimulus adds a decaying light-kind stimulus such as a flare.
func (r *StimulusRegistry) CreateLightStimulus(pos r3.Vec, strength, radius, ttl float64) *components.Light {
	l := &components.Light{
		Emission: components.Emission{
			ID:       fmt.Sprintf("light-%d", r.nextStimulus),
			Pos:      pos,
			Strength: strength,
			Radius:   radius,
			TTL:      ttl,
			FadeRate: strength / math.Max(ttl, r.cfg.Noise.MinFadeTTL),
		},
	}
	r.nextStimulus++
	r.stimuli = append(r.stimuli, l)
	r.bus.Publish(telemetry.NewLightCreatedEvent(r.clock(), l.ID, l.Pos, l.Strength))
	return l
}

// AddLightSource registers a static fixture. An empty id is replaced with
// the next static-N id. The stored source is returned.
func (r *StimulusRegistry) AddLightSource(src components.LightSource) components.LightSource {
	if src.ID == "" {
		src.ID = fmt.Sprintf("static-%d", r.nextStatic)
		r.nextStatic++
	}
	src.Dynamic = false
	r.lights = append(r.lights, src)
	r.bus.Publish(telemetry.NewLightCreatedEvent(r.clock(), src.ID, src.Pos, src.Strength))
	return src
}

// PlaceDynamicLight adds a temporary light source at ground level.
func (r *StimulusRegistry) PlaceDynamicLight(pos r3.Vec, opts DynamicLightOptions) components.LightSource {
	if opts.TTL == 0 {
		opts.TTL = r.cfg.Light.DynamicTTL
	}
	if opts.Intensity == 0 {
		opts.Intensity = r.cfg.Light.DynamicIntensity
	}
	if opts.Radius == 0 {
		opts.Radius = r.cfg.Light.DynamicRadius
	}
	src := components.LightSource{
		ID:         fmt.Sprintf("dynamic-%d", r.nextDynamic),
		Pos:        r3.Vec{X: pos.X, Z: pos.Z},
		Strength:   opts.Intensity * r.cfg.Light.StrengthPerIntensity,
		Radius:     opts.Radius,
		Dynamic:    true,
		TTL:        opts.TTL,
		InitialTTL: opts.TTL,
	}
	r.nextDynamic++
	r.lights = append(r.lights, src)
	r.bus.Publish(telemetry.NewLightCreatedEvent(r.clock(), src.ID, src.Pos, src.Strength))
	return src
}

// RemoveLightSource deletes a light source by id.
func (r *StimulusRegistry) RemoveLightSource(id string) bool {
	for i, src := range r.lights {
		if src.ID == id {
			r.lights = append(r.lights[:i], r.lights[i+1:]...)
			return true
		}
	}
	return false
}

// TickDynamicLights counts down dynamic lights and removes the expired
// ones, returning them.
func (r *StimulusRegistry) TickDynamicLights(dt float64) []components.LightSource {
	var expired []components.LightSource
	kept := r.lights[:0]
	for _, src := range r.lights {
		if src.Dynamic {
			src.TTL -= dt
			if src.TTL <= 0 {
				expired = append(expired, src)
				continue
			}
		}
		kept = append(kept, src)
	}
	r.lights = kept
	now := r.clock()
	for _, src := range expired {
		r.bus.Publish(telemetry.NewLightExpiredEvent(now, src))
	}
	return expired
}

// ClearTransient drops every stimulus and every dynamic light.
// Static fixtures survive.
func (r *StimulusRegistry) ClearTransient() {
	r.stimuli = nil
	kept := r.lights[:0]
	for _, src := range r.lights {
		if !src.Dynamic {
			kept = append(kept, src)
		}
	}
	r.lights = kept
}

// Stimuli returns the live stimuli in creation order. The slice is owned
// by the registry.
func (r *StimulusRegistry) Stimuli() []components.Stimulus {
	return r.stimuli
}

// LightSources returns the registered light sources. The slice is owned by
// the registry.
func (r *StimulusRegistry) LightSources() []components.LightSource {
	return r.lights
}

// Find returns a live stimulus by id.
func (r *StimulusRegistry) Find(id string) (components.Stimulus, bool) {
	for _, s := range r.stimuli {
		if components.Base(s).ID == id {
			return s, true
		}
	}
	return nil, false
}
