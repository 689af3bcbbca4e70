package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/lurch/config"
	"github.com/pthm-cable/lurch/game"
	"github.com/pthm-cable/lurch/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 3600, "Stop after N ticks (0 = until game over)")
	zombies := flag.Int("zombies", 8, "Number of aggressive zombies")
	docile := flag.Int("docile", 0, "Number of docile test dummies")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	scenario := flag.String("scenario", game.ScenarioSandbox, "Scenario: "+strings.Join(game.Scenarios, "|"))
	verbose := flag.Bool("verbose", false, "Log every agent decision")
	dumpAgents := flag.Bool("dump-agents", false, "Print every agent's diagnostic line on exit")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	run := telemetry.NewRunInfo(rngSeed, *scenario, *zombies, *docile)
	if err := output.WriteRunInfo(run); err != nil {
		slog.Error("failed to write run info", "error", err)
	}

	w := game.NewWorld(cfg, game.Options{
		Seed:     rngSeed,
		Logger:   logger.With("run", run.RunID),
		Output:   output,
		LogStats: *logStats,
	})

	script, err := game.SetupScenario(w, game.ScenarioSpec{Name: *scenario, Zombies: *zombies, Docile: *docile})
	if err != nil {
		slog.Error("failed to set up scenario", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"run", run.RunID,
		"seed", rngSeed,
		"scenario", *scenario,
		"zombies", *zombies,
		"docile", *docile,
		"max_ticks", *maxTicks,
	)

	dt := cfg.Physics.DT
	for {
		if script != nil {
			script(w, dt)
		}
		w.Step(dt)

		if *maxTicks > 0 && int(w.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", w.Tick())
			break
		}
		if *maxTicks == 0 && w.GameOver() {
			break
		}
	}

	w.LogWorldState()
	if *dumpAgents {
		fmt.Fprint(os.Stderr, w.DumpAgents())
	}
}
