package game

import (
	"github.com/pthm-cable/lurch/components"
	"github.com/pthm-cable/lurch/telemetry"
)

// flushTelemetry closes the stats window when it is due.
func (w *World) flushTelemetry() {
	if !w.collector.ShouldFlush(w.tick) {
		return
	}

	stats := w.collector.Flush(w.tick, w.census())
	perfStats := w.perf.Stats()

	if w.statsCallback != nil {
		w.statsCallback(stats)
	}

	if w.logStats {
		stats.LogStats(w.logger)
		perfStats.LogStats(w.logger)
		for _, share := range w.phases.Breakdown(perfStats) {
			w.logger.Debug("phase_share",
				"category", share.Category,
				"avg_us", share.Avg.Microseconds(),
				"pct", float64(int(share.Pct*10))/10,
			)
		}
	}

	if w.output != nil {
		if err := w.output.WriteTelemetry(stats); err != nil {
			w.logger.Error("failed to write telemetry", "error", err)
		}
		if err := w.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			w.logger.Error("failed to write perf", "error", err)
		}
		if err := w.output.WriteAgents(w.AgentSnapshots()); err != nil {
			w.logger.Error("failed to write agents", "error", err)
		}
	}
}

// census samples occupancy and memory ledgers for the closing window.
func (w *World) census() telemetry.Census {
	c := telemetry.Census{PlayerHealth: -1}
	if w.player != nil {
		c.PlayerHealth = w.player.Health
	}
	w.forEachAgent(func(_ *components.Body, z *components.Zombie, mem *components.Memory) {
		if int(z.State) < len(c.States) {
			c.States[z.State]++
		}
		c.LightLedgers = append(c.LightLedgers, float64(len(mem.Light)))
		c.NoiseLedgers = append(c.NoiseLedgers, float64(len(mem.Noise)))
		for _, entry := range mem.Light {
			c.ReturnChances = append(c.ReturnChances, entry.ReturnChance)
		}
	})
	return c
}

// AgentSnapshots returns one agents.csv row per agent in spawn order.
func (w *World) AgentSnapshots() []telemetry.AgentSnapshot {
	rows := make([]telemetry.AgentSnapshot, 0, len(w.order))
	for _, e := range w.order {
		body, z, mem := w.agentMap.Get(e)
		rows = append(rows, telemetry.AgentSnapshot{
			Tick:             w.tick,
			Time:             w.now,
			AgentID:          uint32(z.ID),
			Behavior:         z.Behavior.String(),
			State:            z.State.String(),
			Reason:           z.Reason,
			CurrentStimulus:  z.CurrentStimulus.String(),
			DebugTarget:      z.DebugTarget,
			DecisionTimer:    z.DecisionTimer,
			InvestigateTimer: z.InvestigateTimer,
			LightMemories:    len(mem.Light),
			NoiseMemories:    len(mem.Noise),
			X:                body.Pos.X,
			Z:                body.Pos.Z,
		})
	}
	return rows
}
