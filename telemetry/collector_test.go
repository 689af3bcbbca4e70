package telemetry

import (
	"testing"

	"github.com/pthm-cable/lurch/components"
)

func TestCollector_WindowTicks(t *testing.T) {
	c := NewCollector(10, 1.0/60)
	if got := c.WindowDurationTicks(); got != 600 {
		t.Errorf("window ticks = %d, want 600", got)
	}
	if c.ShouldFlush(599) {
		t.Error("flushed before the window closed")
	}
	if !c.ShouldFlush(600) {
		t.Error("did not flush at window end")
	}

	if got := NewCollector(0, 1).WindowDurationTicks(); got != 1 {
		t.Errorf("degenerate window = %d ticks, want 1", got)
	}
}

func TestCollector_CountsEvents(t *testing.T) {
	c := NewCollector(1, 0.1)
	bus := NewBus()
	bus.Subscribe(c)

	bus.Publish(Event{Type: EventNoiseCreated})
	bus.Publish(Event{Type: EventNoiseCreated})
	bus.Publish(Event{Type: EventLightCreated})
	bus.Publish(Event{Type: EventNoiseHeard})
	bus.Publish(Event{Type: EventNoiseSuppressed})
	bus.Publish(Event{Type: EventLightAccepted})
	bus.Publish(Event{Type: EventLightIgnored})
	bus.Publish(Event{Type: EventLightIgnored})
	bus.Publish(Event{Type: EventLightIgnored})
	bus.Publish(Event{Type: EventDamage, Amount: 0.5})
	bus.Publish(Event{Type: EventDamage, Amount: 0.25})
	bus.Publish(NewStateChangedEvent(1, 1, components.Idle, components.Chasing, "", ""))
	bus.Publish(NewStateChangedEvent(1, 2, components.Chasing, components.Chasing, "", ""))

	s := c.Flush(10, Census{PlayerHealth: 80})

	if s.NoisesCreated != 2 || s.LightsCreated != 1 {
		t.Errorf("created = %d/%d, want 2/1", s.NoisesCreated, s.LightsCreated)
	}
	if s.NoisesHeard != 1 || s.NoisesSuppressed != 1 {
		t.Errorf("heard/suppressed = %d/%d, want 1/1", s.NoisesHeard, s.NoisesSuppressed)
	}
	if s.LightAcceptRate != 0.25 {
		t.Errorf("accept rate = %v, want 0.25", s.LightAcceptRate)
	}
	if s.DamageDealt != 0.75 {
		t.Errorf("damage = %v, want 0.75", s.DamageDealt)
	}
	if s.EnteredChasing != 1 {
		t.Errorf("entered chasing = %d, want 1 (self transitions are not entries)", s.EnteredChasing)
	}
	if s.PlayerHealth != 80 {
		t.Errorf("player health = %v, want 80", s.PlayerHealth)
	}
	if s.SimTimeSec != 1 {
		t.Errorf("sim time = %v, want 1", s.SimTimeSec)
	}
}

func TestCollector_FlushResets(t *testing.T) {
	c := NewCollector(1, 0.1)
	c.Handle(Event{Type: EventNoiseHeard})
	c.Flush(10, Census{})

	if !c.ShouldFlush(20) || c.ShouldFlush(19) {
		t.Error("window did not restart at the flush tick")
	}

	s := c.Flush(20, Census{})
	if s.NoisesHeard != 0 {
		t.Errorf("counter carried over: %d", s.NoisesHeard)
	}
	if s.WindowStartTick != 10 {
		t.Errorf("window start = %d, want 10", s.WindowStartTick)
	}
}

func TestCollector_Census(t *testing.T) {
	c := NewCollector(1, 0.1)
	var census Census
	census.States[components.Idle] = 2
	census.States[components.Chasing] = 1
	census.LightLedgers = []float64{0, 2, 4}
	census.ReturnChances = []float64{0.5, 0.5}

	s := c.Flush(10, census)
	if s.Agents != 3 || s.Idle != 2 || s.Chasing != 1 {
		t.Errorf("occupancy = %d/%d/%d, want 3/2/1", s.Agents, s.Idle, s.Chasing)
	}
	if s.LightMemoryMean != 2 || s.LightMemoryP50 != 2 {
		t.Errorf("light ledger = %v/%v, want 2/2", s.LightMemoryMean, s.LightMemoryP50)
	}
	if s.ReturnChanceMean != 0.5 {
		t.Errorf("return chance mean = %v, want 0.5", s.ReturnChanceMean)
	}
	if s.NoiseMemoryMean != 0 {
		t.Errorf("empty noise ledger mean = %v, want 0", s.NoiseMemoryMean)
	}
}
