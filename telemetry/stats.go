package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Occupancy at window end
	Agents        int `csv:"agents"`
	Idle          int `csv:"idle"`
	Wandering     int `csv:"wandering"`
	Investigating int `csv:"investigating"`
	Chasing       int `csv:"chasing"`

	// Transitions into each state during the window
	EnteredIdle          int `csv:"entered_idle"`
	EnteredWandering     int `csv:"entered_wandering"`
	EnteredInvestigating int `csv:"entered_investigating"`
	EnteredChasing       int `csv:"entered_chasing"`

	// Stimulus layer
	NoisesCreated  int `csv:"noises_created"`
	LightsCreated  int `csv:"lights_created"`
	LightsExpired  int `csv:"lights_expired"`
	StimuliExpired int `csv:"stimuli_expired"`

	// Reactions
	NoisesHeard      int     `csv:"noises_heard"`
	NoisesSuppressed int     `csv:"noises_suppressed"`
	LightsAccepted   int     `csv:"lights_accepted"`
	LightsIgnored    int     `csv:"lights_ignored"`
	LightAcceptRate  float64 `csv:"light_accept_rate"`

	// Contact
	DamageDealt  float64 `csv:"damage_dealt"`
	PlayerHealth float64 `csv:"player_health"` // -1 when no player

	// Memory ledgers (sampled at window end)
	LightMemoryMean  float64 `csv:"light_memory_mean"`
	LightMemoryP50   float64 `csv:"light_memory_p50"`
	LightMemoryP90   float64 `csv:"light_memory_p90"`
	NoiseMemoryMean  float64 `csv:"noise_memory_mean"`
	NoiseMemoryP50   float64 `csv:"noise_memory_p50"`
	NoiseMemoryP90   float64 `csv:"noise_memory_p90"`
	ReturnChanceMean float64 `csv:"return_chance_mean"`
	ReturnChanceP10  float64 `csv:"return_chance_p10"`
}

// ComputeDistribution returns the mean and the 10th, 50th and 90th
// percentiles of values using the empirical quantile. Returns zeros if
// values is empty.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("idle", s.Idle),
		slog.Int("wandering", s.Wandering),
		slog.Int("investigating", s.Investigating),
		slog.Int("chasing", s.Chasing),
		slog.Int("entered_investigating", s.EnteredInvestigating),
		slog.Int("entered_chasing", s.EnteredChasing),
		slog.Int("noises_created", s.NoisesCreated),
		slog.Int("lights_created", s.LightsCreated),
		slog.Int("noises_heard", s.NoisesHeard),
		slog.Int("noises_suppressed", s.NoisesSuppressed),
		slog.Int("lights_accepted", s.LightsAccepted),
		slog.Int("lights_ignored", s.LightsIgnored),
		slog.Float64("light_accept_rate", s.LightAcceptRate),
		slog.Float64("damage_dealt", s.DamageDealt),
		slog.Float64("player_health", s.PlayerHealth),
		slog.Float64("light_memory_mean", s.LightMemoryMean),
		slog.Float64("noise_memory_mean", s.NoiseMemoryMean),
		slog.Float64("return_chance_mean", s.ReturnChanceMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats(logger *slog.Logger) {
	logger.Info("stats", "window", s)
}
