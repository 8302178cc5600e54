package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/model"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = run to configured duration)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := model.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}

	m, err := model.New(cfg, opts)
	if err != nil {
		slog.Error("failed to build model", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	slog.Info("starting run",
		"seed", rngSeed,
		"start", cfg.Derived.Start,
		"steps", cfg.Derived.NumSteps,
		"step_len", cfg.Derived.Step,
		"elements", cfg.Spill.NumElements,
		"movers", len(m.Movers()),
	)

	if err := m.Run(*maxSteps); err != nil {
		slog.Error("run aborted", "step", m.StepCount(), "error", err)
		os.Exit(1)
	}

	slog.Info("run finished", "steps", m.StepCount(), "end", m.Now())
}
