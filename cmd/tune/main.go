package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/lurch/config"
)

// options are the command-line settings of one tuning run.
type options struct {
	configPath string
	outputDir  string
	duration   float64
	target     float64
	seeds      int
	maxEvals   int
	population int
}

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval                int     `csv:"eval"`
	Fitness             float64 `csv:"fitness"`
	VisitRate           float64 `csv:"visit_rate"`
	DefaultReturnChance float64 `csv:"default_return_chance"`
	PursueDecay         float64 `csv:"pursue_decay"`
	DeclineDecay        float64 `csv:"decline_decay"`
	PeekFactor          float64 `csv:"peek_factor"`
	ReachedCooldown     float64 `csv:"reached_cooldown"`
	ReachedDecay        float64 `csv:"reached_decay"`
	GaveUpDecay         float64 `csv:"gave_up_decay"`
}

// evalLog appends evaluations to a CSV stream, writing the header once.
type evalLog struct {
	w       io.Writer
	started bool
}

func (l *evalLog) append(eval int, fitness, rate float64, v []float64) error {
	rows := []evalRecord{{
		Eval:                eval,
		Fitness:             fitness,
		VisitRate:           rate,
		DefaultReturnChance: v[0],
		PursueDecay:         v[1],
		DeclineDecay:        v[2],
		PeekFactor:          v[3],
		ReachedCooldown:     v[4],
		ReachedDecay:        v[5],
		GaveUpDecay:         v[6],
	}}
	if l.started {
		return gocsv.MarshalWithoutHeaders(rows, l.w)
	}
	l.started = true
	return gocsv.Marshal(rows, l.w)
}

// clock renders a duration as 1h02m03s, or 2m03s below an hour.
func clock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// tuner minimises the revisit fitness over the normalised parameter cube.
type tuner struct {
	opts      options
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       *evalLog

	evals   int
	best    float64
	bestX   []float64
	started time.Time
}

// objective is the CMA-ES cost function. x is in normalised space.
func (t *tuner) objective(x []float64) float64 {
	raw := t.params.Clamp(t.params.Denormalize(x))
	fitness := t.evaluator.Evaluate(raw)
	rate := t.evaluator.LastRate()
	t.evals++

	if fitness < t.best {
		t.best = fitness
		t.bestX = raw
	}
	if err := t.log.append(t.evals, fitness, rate, raw); err != nil {
		log.Printf("tune log: %v", err)
	}

	spent := time.Since(t.started)
	eta := spent / time.Duration(t.evals) * time.Duration(max(t.opts.maxEvals-t.evals, 0))
	fmt.Printf("[%d/%d] %.2f visits/min, fitness %.4f, best %.4f (%s, eta %s)\n",
		t.evals, t.opts.maxEvals, rate, fitness, t.best, clock(spent), clock(eta))

	return fitness
}

func run(opts options) error {
	if opts.outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	base := config.Cfg()

	f, err := os.Create(filepath.Join(opts.outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating tune log: %w", err)
	}
	defer f.Close()

	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = 7 + int64(i)*7919
	}

	params := NewParamVector()
	t := &tuner{
		opts:      opts,
		params:    params,
		evaluator: NewFitnessEvaluator(params, opts.duration, opts.target, seeds, base),
		log:       &evalLog{w: f},
		best:      math.Inf(1),
		started:   time.Now(),
	}

	pop := opts.population
	if pop <= 0 {
		// Standard CMA-ES default, 4 + 3 ln n.
		pop = 4 + int(3*math.Log(float64(params.Dim())))
	}

	fmt.Printf("tuning %d habituation constants: population %d, %d evals, %d seeds x %.0fs, target %.2f visits/min\n",
		params.Dim(), pop, opts.maxEvals, opts.seeds, opts.duration, opts.target)

	start := params.Normalize(params.ExtractFromConfig(base))
	result, err := optimize.Minimize(
		optimize.Problem{Func: t.objective},
		start,
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: pop},
	)
	if err != nil {
		log.Printf("optimizer stopped: %v", err)
	}
	if t.bestX == nil {
		if result == nil {
			return fmt.Errorf("no evaluations completed")
		}
		t.bestX = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\ndone: %d evals in %s, best fitness %.4f\n", t.evals, clock(time.Since(t.started)), t.best)
	for i, spec := range params.Specs {
		fmt.Printf("  %-30s %.4f\n", spec.Path, t.bestX[i])
	}

	tuned := base.Clone()
	params.ApplyToConfig(tuned, t.bestX)
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := tuned.WriteYAML(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML (empty = embedded defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Directory for tune_log.csv and best_config.yaml")
	flag.Float64Var(&opts.duration, "duration", 300, "Simulated seconds per run")
	flag.Float64Var(&opts.target, "target", 2, "Target light visits per minute")
	flag.IntVar(&opts.seeds, "seeds", 4, "Seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 150, "Evaluation budget")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population (0 = 4 + 3 ln n)")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}
