package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/systems"
)

// MakeNoise emits a noise ring at pos.
func (w *World) MakeNoise(pos r3.Vec, strength, radius, ttl float64, opts systems.NoiseOptions) *components.Noise {
	return w.registry.CreateNoise(pos, strength, radius, ttl, opts)
}

// ClickNoise emits the sandbox click noise at pos.
func (w *World) ClickNoise(pos r3.Vec) *components.Noise {
	c := w.cfg.Noise.Click
	return w.registry.CreateNoise(pos, c.Strength, c.Radius, c.TTL, systems.NoiseOptions{VisualRadius: c.VisualRadius})
}

// PlaceLight drops the sandbox flare at pos.
func (w *World) PlaceLight(pos r3.Vec) components.LightSource {
	c := w.cfg.Light.Click
	return w.registry.PlaceDynamicLight(pos, systems.DynamicLightOptions{TTL: c.TTL, Intensity: c.Intensity, Radius: c.Radius})
}

// AddWorldLight adds an ambient fixture. World lights light the level but
// agents never investigate them.
func (w *World) AddWorldLight(pos r3.Vec, intensity, radius float64) components.LightSource {
	return w.registry.AddLightSource(components.LightSource{
		Pos:        r3.Vec{X: pos.X, Z: pos.Z},
		Strength:   intensity * w.cfg.Light.StrengthPerIntensity,
		Radius:     radius,
		WorldLight: true,
	})
}

// AddStaticLight adds a permanent light agents can be drawn to.
func (w *World) AddStaticLight(pos r3.Vec, strength, radius float64) components.LightSource {
	return w.registry.AddLightSource(components.LightSource{Pos: pos, Strength: strength, Radius: radius})
}

// AddLightStimulus emits a one-shot light flash.
func (w *World) AddLightStimulus(pos r3.Vec, strength, radius, ttl float64) *components.Light {
	return w.registry.CreateLightStimulus(pos, strength, radius, ttl)
}

// RemoveLight removes a light source by id.
func (w *World) RemoveLight(id string) bool {
	return w.registry.RemoveLightSource(id)
}

// ClearTransientStimuli drops every stimulus and dynamic light.
func (w *World) ClearTransientStimuli() {
	w.registry.ClearTransient()
}
