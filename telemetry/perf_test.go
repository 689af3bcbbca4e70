package telemetry

import (
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTimedCollector(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

func TestPerfCollector_PhaseTiming(t *testing.T) {
	pc, clock := newTimedCollector(10)

	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(PhasePropagation)
		clock.advance(100 * time.Microsecond)
		pc.StartPhase(PhaseDecision)
		clock.advance(300 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != 400*time.Microsecond {
		t.Errorf("avg tick = %v, want 400µs", stats.AvgTickDuration)
	}
	if got := stats.PhaseAvg[PhasePropagation]; got != 100*time.Microsecond {
		t.Errorf("propagation avg = %v, want 100µs", got)
	}
	if got := stats.PhasePct[PhaseDecision]; got != 75 {
		t.Errorf("decision pct = %v, want 75", got)
	}
	if stats.TicksPerSecond != 2500 {
		t.Errorf("ticks/sec = %v, want 2500", stats.TicksPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newTimedCollector(3)

	// Three slow ticks then three fast ones; only the fast ones remain.
	for _, d := range []time.Duration{9, 9, 9, 1, 1, 1} {
		pc.StartTick()
		pc.StartPhase(PhaseContact)
		clock.advance(d * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.MaxTickDuration != time.Millisecond {
		t.Errorf("max tick = %v, want 1ms", stats.MaxTickDuration)
	}
	if stats.MinTickDuration != time.Millisecond {
		t.Errorf("min tick = %v, want 1ms", stats.MinTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(0)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 250 * time.Microsecond,
		PhasePct:        map[string]float64{PhaseLights: 5, PhaseTelemetry: 20},
	}
	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 250 {
		t.Errorf("row header fields = %d/%d", row.WindowEnd, row.AvgTickUS)
	}
	if row.LightsPct != 5 || row.TelemetryPct != 20 || row.DecisionPct != 0 {
		t.Errorf("phase columns = %+v", row)
	}
}
