package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/telemetry"
)

// ---------- Transition entry rules ----------

func TestApplyTransition_ChaseFromAnyState(t *testing.T) {
	for _, from := range []components.State{components.Idle, components.Wandering, components.Investigating, components.Chasing} {
		f := newFixture(int64(from))
		a := f.agent(1, vec(0, 0))
		p := vec(3, 3)
		ApplyTransition(a.Zombie, Transition{To: from, Target: &p}, f.rng, f.terrain, &f.cfg.Decision)

		player := &stubPlayer{pos: vec(1, 0), health: 100}
		f.dec.Update(a, Surroundings{Player: player}, testDT, testDT)

		if a.Zombie.State != components.Chasing {
			t.Errorf("from %s: state = %s, want chasing", from, a.Zombie.State)
		}
		if a.Zombie.Target != nil || a.Zombie.WanderTarget != nil {
			t.Errorf("from %s: targets not cleared", from)
		}
		if a.Zombie.CurrentStimulus != components.SenseVision || a.Zombie.DebugTarget != TargetPlayer {
			t.Errorf("from %s: stimulus %q target %q", from, a.Zombie.CurrentStimulus, a.Zombie.DebugTarget)
		}
	}
}

func TestApplyTransition_TargetsMutuallyExclusive(t *testing.T) {
	f := newFixture(1)
	z := f.agent(1, vec(0, 0)).Zombie
	p := vec(2, 2)

	ApplyTransition(z, Transition{To: components.Investigating, Target: &p}, f.rng, f.terrain, &f.cfg.Decision)
	if z.Target == nil || z.WanderTarget != nil {
		t.Fatalf("investigating: target %v wander %v", z.Target, z.WanderTarget)
	}
	if z.Target == &p {
		t.Error("target should be copied")
	}
	if z.CurrentStimulus != components.SenseUnknown || z.DebugTarget != TargetPoint {
		t.Errorf("investigating defaults: %q %q", z.CurrentStimulus, z.DebugTarget)
	}
	if z.InvestigateTimer < 2 || z.InvestigateTimer > 4 {
		t.Errorf("default linger %f outside [2, 4]", z.InvestigateTimer)
	}

	ApplyTransition(z, Transition{To: components.Wandering}, f.rng, f.terrain, &f.cfg.Decision)
	if z.Target != nil || z.WanderTarget == nil {
		t.Fatalf("wandering: target %v wander %v", z.Target, z.WanderTarget)
	}
	if z.DecisionTimer < 2.5 || z.DecisionTimer > 4.5 {
		t.Errorf("wander timer %f outside [2.5, 4.5]", z.DecisionTimer)
	}

	ApplyTransition(z, Transition{To: components.Idle, Timer: 0.7}, f.rng, f.terrain, &f.cfg.Decision)
	if z.Target != nil || z.WanderTarget != nil {
		t.Error("idle kept a target")
	}
	if z.DecisionTimer != 0.7 || z.DebugTarget != TargetNone {
		t.Errorf("idle: timer %f target %q", z.DecisionTimer, z.DebugTarget)
	}
	if z.Reason != defaultReason {
		t.Errorf("reason = %q, want previous reason kept", z.Reason)
	}
}

// ---------- State-local behaviour ----------

func TestIdle_ExpiredTimerStartsWandering(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		f := newFixture(seed)
		a := f.agent(1, vec(0, 0))
		a.Zombie.DecisionTimer = 0

		f.dec.Update(a, Surroundings{}, testDT, testDT)

		z := a.Zombie
		if z.State != components.Wandering {
			t.Fatalf("state = %s, want wandering", z.State)
		}
		if z.WanderTarget == nil {
			t.Fatal("wander target is nil")
		}
		half := f.cfg.Derived.ClampHalf
		if math.Abs(z.WanderTarget.X) > half || math.Abs(z.WanderTarget.Z) > half {
			t.Errorf("wander target %v outside bounds %f", *z.WanderTarget, half)
		}
	}
}

func TestWander_RetargetsWhenReached(t *testing.T) {
	f := newFixture(2)
	a := f.agent(1, vec(0, 0))
	here := vec(0.1, 0)
	ApplyTransition(a.Zombie, Transition{To: components.Wandering, Target: &here, Timer: 5}, f.rng, f.terrain, &f.cfg.Decision)

	s := f.dec.Update(a, Surroundings{}, testDT, testDT)
	z := a.Zombie
	if *z.WanderTarget == here {
		t.Error("reached wander target was kept")
	}
	if d := distance(vec(0, 0), *z.WanderTarget); d > f.cfg.Decision.WanderRadius+1e-9 {
		t.Errorf("new wander target %f away, want within %f", d, f.cfg.Decision.WanderRadius)
	}
	if z.DecisionTimer < 3 || z.DecisionTimer > 6 {
		t.Errorf("retarget timer %f outside [3, 6]", z.DecisionTimer)
	}
	if s.Dir != (r3.Vec{}) && s.Speed != z.WanderSpeed {
		t.Errorf("wander speed = %f", s.Speed)
	}
}

func TestVision_DetectsVisiblePlayer(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	player := &stubPlayer{pos: vec(5, 0), health: 100}

	s := f.dec.Update(a, Surroundings{Player: player}, testDT, testDT)

	if a.Zombie.State != components.Chasing {
		t.Fatalf("state = %s, want chasing", a.Zombie.State)
	}
	if s.Speed != a.Zombie.ChaseSpeed || math.Abs(s.Dir.X-1) > 1e-9 {
		t.Errorf("steering = %+v, want full speed toward +X", s)
	}
	if a.Zombie.Reason != "Player detected (5.0m)" {
		t.Errorf("reason = %q", a.Zombie.Reason)
	}
}

func TestVision_BlockedByWall(t *testing.T) {
	f := newFixture(1)
	f.terrain.Obstacles = []AABB{{Min: r3.Vec{X: 2, Y: 0, Z: -1}, Max: r3.Vec{X: 2.5, Y: 2, Z: 1}}}
	a := f.agent(1, vec(0, 0))
	player := &stubPlayer{pos: vec(5, 0), health: 100}

	f.dec.Update(a, Surroundings{Player: player}, testDT, testDT)
	if a.Zombie.State == components.Chasing {
		t.Error("agent saw through a wall")
	}
}

func TestVision_GameOverBlindsAgents(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	player := &stubPlayer{pos: vec(2, 0), health: 0}

	f.dec.Update(a, Surroundings{Player: player, GameOver: true}, testDT, testDT)
	if a.Zombie.State == components.Chasing {
		t.Error("agent chased after the round ended")
	}
}

func TestChase_LosingSightInvestigatesLastKnown(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	ApplyTransition(a.Zombie, Transition{To: components.Chasing}, f.rng, f.terrain, &f.cfg.Decision)

	// Beyond 1.8x detect range.
	player := &stubPlayer{pos: vec(0, 30), health: 100}
	f.dec.Update(a, Surroundings{Player: player}, testDT, testDT)

	z := a.Zombie
	if z.State != components.Investigating {
		t.Fatalf("state = %s, want investigating", z.State)
	}
	if z.Target == nil || *z.Target != player.pos {
		t.Errorf("target = %v, want last known player position", z.Target)
	}
	if z.DebugTarget != TargetLastKnown {
		t.Errorf("debug target = %q", z.DebugTarget)
	}
	changes := f.log.Filter(telemetry.EventStateChanged)
	if last := changes[len(changes)-1]; last.Reason != "Lost sight of player" {
		t.Errorf("transition reason = %q", last.Reason)
	}
	if z.InvestigateTimer < 2-testDT || z.InvestigateTimer > 3.5 {
		t.Errorf("linger %f outside [2, 3.5]", z.InvestigateTimer)
	}
}

func TestChase_HoldsWithinLoseSightRange(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	ApplyTransition(a.Zombie, Transition{To: components.Chasing}, f.rng, f.terrain, &f.cfg.Decision)

	// Out of detect range but inside 1.8x with a clear line.
	player := &stubPlayer{pos: vec(15, 0), health: 100}
	s := f.dec.Update(a, Surroundings{Player: player}, testDT, testDT)
	if a.Zombie.State != components.Chasing {
		t.Fatalf("state = %s, want chasing", a.Zombie.State)
	}
	if s.Speed != a.Zombie.ChaseSpeed {
		t.Errorf("speed = %f, want chase speed", s.Speed)
	}
}

func TestChase_NoPlayerFallsBackToOwnPosition(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(4, 4))
	ApplyTransition(a.Zombie, Transition{To: components.Chasing}, f.rng, f.terrain, &f.cfg.Decision)

	f.dec.Update(a, Surroundings{}, testDT, testDT)

	// The agent already stands on its own position, so the search ends at once.
	changes := f.log.Filter(telemetry.EventStateChanged)
	if len(changes) != 2 {
		t.Fatalf("transitions = %d, want 2", len(changes))
	}
	if c := changes[0]; c.To != components.Investigating || c.Reason != "Player not present" {
		t.Errorf("first transition = %s %q", c.To, c.Reason)
	}
	if c := changes[1]; c.To != components.Idle || c.Reason != "Investigation complete" {
		t.Errorf("second transition = %s %q", c.To, c.Reason)
	}
}

// ---------- Stimulus reactions ----------

func TestLight_InvestigateReachLingerThenIdle(t *testing.T) {
	// Pick a seed whose first draw passes the 0.75 gate.
	var f *fixture
	var a AgentRef
	for seed := int64(0); ; seed++ {
		f = newFixture(seed)
		a = f.agent(1, vec(0, 0))
		f.reg.PlaceDynamicLight(vec(4, 0), DynamicLightOptions{TTL: 100})
		f.tick([]AgentRef{a}, Surroundings{})
		if a.Zombie.State == components.Investigating {
			break
		}
		if seed > 50 {
			t.Fatal("no seed accepted the light")
		}
	}
	z := a.Zombie
	if z.CurrentStimulus != components.SenseLight || z.ActiveStimulusID != "dynamic-0" {
		t.Fatalf("stimulus %q active %q", z.CurrentStimulus, z.ActiveStimulusID)
	}
	before := a.Memory.Light["dynamic-0"].ReturnChance

	lingered := false
	for i := 0; i < 60*20 && z.State == components.Investigating; i++ {
		f.tick([]AgentRef{a}, Surroundings{})
		if z.Lingering {
			lingered = true
			if z.Reason != "Lingering at light source" {
				t.Errorf("linger reason = %q", z.Reason)
			}
		}
	}
	if !lingered {
		t.Fatal("agent never lingered at the light")
	}
	if z.State != components.Idle {
		t.Fatalf("state = %s, want idle after linger", z.State)
	}
	after := a.Memory.Light["dynamic-0"].ReturnChance
	if after >= before {
		t.Errorf("return chance %f not reduced from %f", after, before)
	}
}

func TestLight_FamiliarLightIgnored(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	f.reg.PlaceDynamicLight(vec(4, 0), DynamicLightOptions{TTL: 100})
	// Cooling down with a return chance too low to peek.
	a.Memory.Light["dynamic-0"] = components.LightMemoryEntry{CooldownUntil: 1000, ReturnChance: 0, LastChecked: 0}

	f.dec.Update(a, Surroundings{}, testDT, testDT)
	if a.Zombie.State == components.Investigating {
		t.Fatal("familiar light was investigated")
	}
	if a.Zombie.Reason != "Ignoring familiar light" {
		t.Errorf("reason = %q", a.Zombie.Reason)
	}
	if f.log.Count(telemetry.EventLightIgnored) != 1 {
		t.Errorf("expected a light_ignored event")
	}
}

func TestLight_ExpiredInvestigationMarksGaveUp(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	target := vec(8, 0)
	a.Memory.Light["dynamic-9"] = components.LightMemoryEntry{ReturnChance: 0.5}
	ApplyTransition(a.Zombie, Transition{
		To: components.Investigating, Target: &target, Timer: testDT / 2,
		StimulusID: "dynamic-9", Sense: components.SenseLight,
	}, f.rng, f.terrain, &f.cfg.Decision)

	f.dec.Update(a, Surroundings{}, testDT, 10)

	if a.Zombie.State != components.Idle || a.Zombie.Reason != "Investigation window expired" {
		t.Fatalf("state %s reason %q", a.Zombie.State, a.Zombie.Reason)
	}
	e := a.Memory.Light["dynamic-9"]
	if math.Abs(e.ReturnChance-0.275) > 1e-9 || e.CooldownUntil != 20 {
		t.Errorf("entry = %+v, want gave-up outcome", e)
	}
}

func TestNoise_InvestigationCompletesOnArrival(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	target := vec(0.3, 0)
	ApplyTransition(a.Zombie, Transition{
		To: components.Investigating, Target: &target, Timer: 3, Sense: components.SenseNoise,
	}, f.rng, f.terrain, &f.cfg.Decision)

	f.dec.Update(a, Surroundings{}, testDT, testDT)
	if a.Zombie.State != components.Idle || a.Zombie.Reason != "Investigation complete" {
		t.Errorf("state %s reason %q", a.Zombie.State, a.Zombie.Reason)
	}
}

// ---------- Docile agents ----------

func TestDocile_NeverChanges(t *testing.T) {
	f := newFixture(1)
	a := f.agentWith(1, vec(0, 0), components.Docile)
	player := &stubPlayer{pos: vec(0.5, 0), health: 100}
	f.reg.PlaceDynamicLight(vec(1, 0), DynamicLightOptions{TTL: 100})
	contact := NewContact(f.bus)

	for i := 0; i < 120; i++ {
		if i%30 == 0 {
			f.reg.CreateNoise(vec(0, 0), 18, 14, 6, NoiseOptions{})
		}
		env := Surroundings{Player: player}
		f.tick([]AgentRef{a}, env)
		contact.Apply(a, env, testDT, f.now)

		if a.Zombie.State != components.Idle {
			t.Fatalf("tick %d: docile state = %s", i, a.Zombie.State)
		}
	}
	if !a.Memory.Empty() {
		t.Errorf("docile memory = %+v, want empty", *a.Memory)
	}
	if player.taken != 0 {
		t.Errorf("docile agent dealt %f damage", player.taken)
	}
	if a.Body.Pos != vec(0, 0) {
		t.Errorf("docile agent moved to %v", a.Body.Pos)
	}
}

// ---------- Contact ----------

func TestContact_DamagesWithinAttackRadius(t *testing.T) {
	f := newFixture(1)
	a := f.agent(1, vec(0, 0))
	player := &stubPlayer{pos: vec(1, 0), health: 100}
	contact := NewContact(f.bus)

	got := contact.Apply(a, Surroundings{Player: player}, 0.5, 1)
	if got != 15 {
		t.Errorf("damage = %f, want 30/s * 0.5s", got)
	}
	if a.Zombie.Reason != "Feeding (1.00m)" {
		t.Errorf("reason = %q", a.Zombie.Reason)
	}
	if contact.Apply(a, Surroundings{Player: player, GameOver: true}, 0.5, 1) != 0 {
		t.Error("damage applied after the round ended")
	}
	player.pos = vec(2, 0)
	if contact.Apply(a, Surroundings{Player: player}, 0.5, 1) != 0 {
		t.Error("damage applied out of range")
	}
}
