package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/telemetry"
)

// logSink writes agent decisions to the logger at debug level.
type logSink struct {
	logger *slog.Logger
}

func newLogSink(logger *slog.Logger) *logSink {
	return &logSink{logger: logger}
}

// Handle implements telemetry.Sink.
func (s *logSink) Handle(e telemetry.Event) {
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	switch e.Type {
	case telemetry.EventStateChanged:
		s.logger.Debug("state changed",
			"time", e.Time,
			"agent", e.AgentID,
			"from", e.From.String(),
			"to", e.To.String(),
			"reason", e.Reason,
			"stimulus", e.StimulusID,
		)
	case telemetry.EventNoiseHeard, telemetry.EventNoiseSuppressed,
		telemetry.EventLightAccepted, telemetry.EventLightIgnored:
		s.logger.Debug(e.Type.String(), "time", e.Time, "agent", e.AgentID, "stimulus", e.StimulusID)
	case telemetry.EventLightExpired, telemetry.EventStimulusExpired:
		s.logger.Debug(e.Type.String(), "time", e.Time, "stimulus", e.StimulusID)
	}
}

// LogWorldState logs a one-line summary of the world.
func (w *World) LogWorldState() {
	var states [4]int
	w.forEachAgent(func(_ *components.Body, z *components.Zombie, _ *components.Memory) {
		if int(z.State) < len(states) {
			states[z.State]++
		}
	})
	attrs := []any{
		"tick", w.tick,
		"time", w.now,
		"zombies", len(w.order),
		"stimuli", len(w.registry.Stimuli()),
		"lights", len(w.registry.LightSources()),
		"game_over", w.gameOver,
	}
	for i, name := range components.StateNames() {
		attrs = append(attrs, name, states[i])
	}
	if w.player != nil {
		attrs = append(attrs, "player_health", w.player.Health)
	}
	w.logger.Info("world", attrs...)
}

// DumpAgents renders every agent's diagnostic fields, one line per agent.
func (w *World) DumpAgents() string {
	fields := components.ZombieFieldDescriptors()
	var b strings.Builder
	for _, row := range w.AgentSnapshots() {
		fmt.Fprintf(&b, "zombie %d:", row.AgentID)
		for _, f := range fields {
			fmt.Fprintf(&b, " %s=%s", f.ID, formatField(f, row))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatField(f components.FieldDescriptor, row telemetry.AgentSnapshot) string {
	var v any
	switch f.ID {
	case "state":
		v = row.State
	case "reason":
		v = row.Reason
	case "current_stimulus":
		v = row.CurrentStimulus
	case "debug_target":
		v = row.DebugTarget
	case "decision_timer":
		v = row.DecisionTimer
	case "investigate_timer":
		v = row.InvestigateTimer
	case "light_memories":
		v = row.LightMemories
	case "noise_memories":
		v = row.NoiseMemories
	default:
		return "?"
	}
	if f.Format == "" {
		return fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf(f.Format, v)
}
