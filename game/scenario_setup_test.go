package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/telemetry"
)

func TestSetupScenario_Populates(t *testing.T) {
	tests := []struct {
		name       string
		wantAgents int
		wantPlayer bool
	}{
		{ScenarioSandbox, 5, true},
		{ScenarioChase, 1, true},
		{ScenarioNoise, 5, false},
		{ScenarioLight, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWorld(t, nil)
			_, err := SetupScenario(w, ScenarioSpec{Name: tt.name, Zombies: 4, Docile: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAgents, w.ZombieCount())
			assert.Equal(t, tt.wantPlayer, w.Player() != nil)
		})
	}
}

func TestSetupScenario_DocileCount(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	_, err := SetupScenario(w, ScenarioSpec{Name: ScenarioNoise, Zombies: 2, Docile: 3})
	require.NoError(t, err)

	docile := 0
	for _, v := range w.Agents() {
		if v.Zombie.Behavior == components.Docile {
			docile++
		}
	}
	assert.Equal(t, 3, docile)
}

func TestSetupScenario_Unknown(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	_, err := SetupScenario(w, ScenarioSpec{Name: "siege"})
	assert.Error(t, err)
}

func TestScript_NoiseEmitsPeriodically(t *testing.T) {
	w, log := newTestWorld(t, nil)
	script, err := SetupScenario(w, ScenarioSpec{Name: ScenarioNoise, Zombies: 1})
	require.NoError(t, err)

	dt := w.Config().Physics.DT
	for i := 0; i < 60*9; i++ {
		script(w, dt)
		w.Step(dt)
	}
	// Emitted at 0, 4 and 8 seconds.
	assert.Equal(t, 3, log.Count(telemetry.EventNoiseCreated))
}

func TestScript_SandboxPlayerWalks(t *testing.T) {
	w, log := newTestWorld(t, nil)
	script, err := SetupScenario(w, ScenarioSpec{Name: ScenarioSandbox})
	require.NoError(t, err)
	start := w.Player().Pos

	dt := w.Config().Physics.DT
	for i := 0; i < 120; i++ {
		script(w, dt)
		w.Step(dt)
	}
	assert.NotEqual(t, start, w.Player().Pos)
	assert.Positive(t, log.Count(telemetry.EventNoiseCreated), "walking makes footsteps")
}
