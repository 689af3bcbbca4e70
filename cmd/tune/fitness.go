package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/game"
	"github.com/pthm-cable/lurch/telemetry"
)

// Revisit scenario: one agent, one permanent light, no player.
const (
	lightDistance = 4.0
	lightStrength = 18.0
	lightRadius   = 12.0
)

// FitnessEvaluator runs headless revisit scenarios and scores how far the
// agent's light visit rate lands from the target.
type FitnessEvaluator struct {
	params     *ParamVector
	duration   float64 // simulated seconds per run
	target     float64 // visits per minute
	seeds      []int64
	baseConfig *config.Config

	mu       sync.Mutex
	lastRate float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, duration, target float64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		duration:   duration,
		target:     target,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastRate returns the mean visit rate of the most recent evaluation.
func (fe *FitnessEvaluator) LastRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRate
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// squared distance between the mean visit rate and the target, plus the
// variance across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	rates := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			rates[idx] = fe.runScenario(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	mean, variance := stat.MeanVariance(rates, nil)
	if math.IsNaN(variance) {
		variance = 0
	}

	fe.mu.Lock()
	fe.lastRate = mean
	fe.mu.Unlock()

	miss := mean - fe.target
	return miss*miss + variance
}

// runScenario returns light visits per simulated minute for one seed.
func (fe *FitnessEvaluator) runScenario(cfg *config.Config, seed int64) float64 {
	w := game.NewWorld(cfg, game.Options{
		Seed:      seed,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		BareLevel: true,
	})

	var visits int
	w.Subscribe(telemetry.SinkFunc(func(e telemetry.Event) {
		if e.Type == telemetry.EventLightAccepted {
			visits++
		}
	}))

	origin := r3.Vec{Y: cfg.World.AgentHeight}
	if _, err := w.SpawnZombie(game.SpawnOptions{Position: &origin}); err != nil {
		return 0
	}
	w.AddStaticLight(r3.Vec{X: lightDistance}, lightStrength, lightRadius)

	dt := cfg.Physics.DT
	for w.Now() < fe.duration {
		w.Step(dt)
	}
	return float64(visits) / (w.Now() / 60)
}
