package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/lurch/components"
)

const lightID = "dynamic-0"

// ---------- Entry gate ----------

func TestShouldInvestigateLight_EmptyIDPasses(t *testing.T) {
	f := newFixture(1)
	mem := components.NewMemory()
	if !f.habit.ShouldInvestigateLight(&mem, "", 0) {
		t.Error("empty id should always pass")
	}
	if len(mem.Light) != 0 {
		t.Error("empty id should not create an entry")
	}
}

func TestShouldInvestigateLight_FirstSightBranches(t *testing.T) {
	pursued, declined := 0, 0
	for seed := int64(0); seed < 200; seed++ {
		f := newFixture(seed)
		mem := components.NewMemory()
		ok := f.habit.ShouldInvestigateLight(&mem, lightID, 100)
		e := mem.Light[lightID]
		if e.LastChecked != 100 {
			t.Fatalf("lastChecked = %f, want 100", e.LastChecked)
		}
		cooldown := e.CooldownUntil - 100
		if ok {
			pursued++
			if cooldown < 12 || cooldown > 16 {
				t.Errorf("pursue cooldown %f outside [12, 16]", cooldown)
			}
			if math.Abs(e.ReturnChance-0.45) > 1e-9 {
				t.Errorf("pursue return chance = %f, want 0.75*0.6", e.ReturnChance)
			}
		} else {
			declined++
			if cooldown < 5.5 || cooldown > 10 {
				t.Errorf("decline cooldown %f outside [5.5, 10]", cooldown)
			}
			if math.Abs(e.ReturnChance-0.6375) > 1e-9 {
				t.Errorf("decline return chance = %f, want 0.75*0.85", e.ReturnChance)
			}
		}
	}
	if pursued == 0 || declined == 0 {
		t.Errorf("expected both branches over 200 seeds, got %d/%d", pursued, declined)
	}
}

func TestShouldInvestigateLight_Floors(t *testing.T) {
	f := newFixture(3)
	mem := components.NewMemory()
	for i := 0; i < 100; i++ {
		now := float64(i) * 100 // always past any cooldown
		f.habit.ShouldInvestigateLight(&mem, lightID, now)
		rc := mem.Light[lightID].ReturnChance
		if rc < 0.2 || rc > 0.75 {
			t.Fatalf("return chance %f escaped [0.2, 0.75]", rc)
		}
	}
}

func TestShouldInvestigateLight_FailedPeekOnlyTouchesLastChecked(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		f := newFixture(seed)
		mem := components.NewMemory()
		mem.Light[lightID] = components.LightMemoryEntry{CooldownUntil: 50, ReturnChance: 0.3, LastChecked: 1}

		if f.habit.ShouldInvestigateLight(&mem, lightID, 10) {
			e := mem.Light[lightID]
			if e.CooldownUntil != 20 {
				t.Errorf("successful peek cooldown = %f, want now+10", e.CooldownUntil)
			}
			if math.Abs(e.ReturnChance-0.21) > 1e-9 {
				t.Errorf("successful peek return chance = %f, want 0.3*0.7", e.ReturnChance)
			}
			continue
		}
		e := mem.Light[lightID]
		want := components.LightMemoryEntry{CooldownUntil: 50, ReturnChance: 0.3, LastChecked: 10}
		if e != want {
			t.Errorf("failed peek entry = %+v, want %+v", e, want)
		}
	}
}

// TestHabituation_AfterReachedMostlyDeclines covers the statistical bound:
// after one pursuit and a reached outcome, a look within the new cooldown
// is refused at least 60% of the time.
func TestHabituation_AfterReachedMostlyDeclines(t *testing.T) {
	const trials = 2000
	refused := 0
	for seed := int64(0); seed < trials; seed++ {
		f := newFixture(seed)
		mem := components.NewMemory()
		z := &components.Zombie{ActiveStimulusID: lightID}

		mem.Light[lightID] = components.LightMemoryEntry{ReturnChance: 0.75}
		f.habit.MarkLightOutcome(z, &mem, true, 0)

		if !f.habit.ShouldInvestigateLight(&mem, lightID, 5) {
			refused++
		}
	}
	if rate := float64(refused) / trials; rate < 0.6 {
		t.Errorf("refusal rate %.3f, want >= 0.6", rate)
	}
}

// ---------- Outcomes ----------

func TestMarkLightOutcome(t *testing.T) {
	tests := []struct {
		name         string
		reached      bool
		start        float64
		wantCooldown float64
		wantChance   float64
	}{
		{"reached", true, 0.75, 15, 0.3},
		{"gave up", false, 0.75, 10, 0.4125},
		{"reached floor", true, 0.2, 15, 0.15},
		{"missing chance falls back", false, 0, 10, 0.275},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1)
			mem := components.NewMemory()
			mem.Light[lightID] = components.LightMemoryEntry{ReturnChance: tt.start}
			z := &components.Zombie{ActiveStimulusID: lightID}

			f.habit.MarkLightOutcome(z, &mem, tt.reached, 100)
			e := mem.Light[lightID]
			if e.CooldownUntil != 100+tt.wantCooldown {
				t.Errorf("cooldown = %f, want %f", e.CooldownUntil, 100+tt.wantCooldown)
			}
			if math.Abs(e.ReturnChance-tt.wantChance) > 1e-9 {
				t.Errorf("return chance = %f, want %f", e.ReturnChance, tt.wantChance)
			}
			if e.LastChecked != 100 {
				t.Errorf("lastChecked = %f, want 100", e.LastChecked)
			}
		})
	}
}

func TestMarkLightOutcome_NoOps(t *testing.T) {
	f := newFixture(1)
	mem := components.NewMemory()

	f.habit.MarkLightOutcome(&components.Zombie{}, &mem, true, 1)
	f.habit.MarkLightOutcome(&components.Zombie{ActiveStimulusID: "gone"}, &mem, true, 1)
	if len(mem.Light) != 0 {
		t.Errorf("outcome created entries: %v", mem.Light)
	}
}

// ---------- Forgetting ----------

func TestPrune(t *testing.T) {
	f := newFixture(1)
	mem := components.NewMemory()
	mem.Light["old"] = components.LightMemoryEntry{LastChecked: 0}
	mem.Light["edge"] = components.LightMemoryEntry{LastChecked: 10}
	mem.Noise["old"] = components.NoiseMemoryEntry{LastHeard: 0}
	mem.Noise["fresh"] = components.NoiseMemoryEntry{LastHeard: 35}

	f.habit.PruneLight(&mem, 40)
	f.habit.PruneNoise(&mem, 40)

	if _, ok := mem.Light["old"]; ok {
		t.Error("stale light entry survived")
	}
	if _, ok := mem.Light["edge"]; !ok {
		t.Error("entry exactly at the staleness window should survive")
	}
	if _, ok := mem.Noise["old"]; ok {
		t.Error("stale noise entry survived")
	}
	if _, ok := mem.Noise["fresh"]; !ok {
		t.Error("fresh noise entry was pruned")
	}
}

func TestNoiseCooldown(t *testing.T) {
	f := newFixture(1)
	mem := components.NewMemory()
	if f.habit.NoiseCooldownActive(&mem, "steps", 0) {
		t.Error("missing entry should mean never heard")
	}
	f.habit.RecordNoise(&mem, "steps", 5)
	if !f.habit.NoiseCooldownActive(&mem, "steps", 14.9) {
		t.Error("cooldown should be active within 10s")
	}
	if f.habit.NoiseCooldownActive(&mem, "steps", 15) {
		t.Error("cooldown should end after 10s")
	}
}
