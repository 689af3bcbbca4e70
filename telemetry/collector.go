package telemetry

import "github.com/pthm-cable/lurch/components"

// Census is the agent population sampled when a window closes.
type Census struct {
	States        [4]int    // occupancy indexed by components.State
	LightLedgers  []float64 // light memory size per agent
	NoiseLedgers  []float64 // noise memory size per agent
	ReturnChances []float64 // every light memory return chance
	PlayerHealth  float64   // -1 when no player
}

// Collector accumulates events within time windows and produces WindowStats.
// It is a Sink; subscribe it to the bus.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	entered          [4]int
	noisesCreated    int
	lightsCreated    int
	lightsExpired    int
	stimuliExpired   int
	noisesHeard      int
	noisesSuppressed int
	lightsAccepted   int
	lightsIgnored    int
	damage           float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Handle counts one event.
func (c *Collector) Handle(e Event) {
	switch e.Type {
	case EventNoiseCreated:
		c.noisesCreated++
	case EventLightCreated:
		c.lightsCreated++
	case EventLightExpired:
		c.lightsExpired++
	case EventStimulusExpired:
		c.stimuliExpired++
	case EventStateChanged:
		if int(e.To) < len(c.entered) && e.From != e.To {
			c.entered[e.To]++
		}
	case EventNoiseHeard:
		c.noisesHeard++
	case EventNoiseSuppressed:
		c.noisesSuppressed++
	case EventLightAccepted:
		c.lightsAccepted++
	case EventLightIgnored:
		c.lightsIgnored++
	case EventDamage:
		c.damage += e.Amount
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, census Census) WindowStats {
	var acceptRate float64
	if seen := c.lightsAccepted + c.lightsIgnored; seen > 0 {
		acceptRate = float64(c.lightsAccepted) / float64(seen)
	}

	lightMean, _, lightP50, lightP90 := ComputeDistribution(census.LightLedgers)
	noiseMean, _, noiseP50, noiseP90 := ComputeDistribution(census.NoiseLedgers)
	rcMean, rcP10, _, _ := ComputeDistribution(census.ReturnChances)

	agents := 0
	for _, n := range census.States {
		agents += n
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents:        agents,
		Idle:          census.States[components.Idle],
		Wandering:     census.States[components.Wandering],
		Investigating: census.States[components.Investigating],
		Chasing:       census.States[components.Chasing],

		EnteredIdle:          c.entered[components.Idle],
		EnteredWandering:     c.entered[components.Wandering],
		EnteredInvestigating: c.entered[components.Investigating],
		EnteredChasing:       c.entered[components.Chasing],

		NoisesCreated:  c.noisesCreated,
		LightsCreated:  c.lightsCreated,
		LightsExpired:  c.lightsExpired,
		StimuliExpired: c.stimuliExpired,

		NoisesHeard:      c.noisesHeard,
		NoisesSuppressed: c.noisesSuppressed,
		LightsAccepted:   c.lightsAccepted,
		LightsIgnored:    c.lightsIgnored,
		LightAcceptRate:  acceptRate,

		DamageDealt:  c.damage,
		PlayerHealth: census.PlayerHealth,

		LightMemoryMean:  lightMean,
		LightMemoryP50:   lightP50,
		LightMemoryP90:   lightP90,
		NoiseMemoryMean:  noiseMean,
		NoiseMemoryP50:   noiseP50,
		NoiseMemoryP90:   noiseP90,
		ReturnChanceMean: rcMean,
		ReturnChanceP10:  rcP10,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.entered = [4]int{}
	c.noisesCreated = 0
	c.lightsCreated = 0
	c.lightsExpired = 0
	c.stimuliExpired = 0
	c.noisesHeard = 0
	c.noisesSuppressed = 0
	c.lightsAccepted = 0
	c.lightsIgnored = 0
	c.damage = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
