// Command flockbench runs the flocking engine headless and compares the
// serial and parallel tick strategies over identical seeded populations.
package main

import (
	"flag"
	"runtime"
	"time"

	"github.com/flocklab/go-flocking-simulation/pkg/flock"
)

func main() {
	var (
		numBoids   = flag.Int("n", 1000, "number of boids")
		ticks      = flag.Int("ticks", 500, "ticks to simulate per strategy")
		workers    = flag.Int("workers", 0, "parallel workers (0 = one per hardware thread)")
		seed       = flag.Uint64("seed", 1, "random seed shared by both runs")
		mode       = flag.String("mode", "both", "strategy to run: serial, parallel or both")
		configFile = flag.String("config", "", "optional JSON config file")
		schemaFile = flag.String("schema", "flock.schema.json", "JSON schema for -config validation")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := NewLogger(*logLevel)

	cfg := flock.DefaultConfig()
	if *configFile != "" {
		loaded, err := flock.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			logger.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	cfg.NumAgents = *numBoids
	cfg.Workers = *workers
	cfg.Seed = *seed

	logger.Infof("flockbench: %d boids, %d ticks, %d hardware threads",
		cfg.NumAgents, *ticks, runtime.GOMAXPROCS(0))

	var serialPerTick, parallelPerTick time.Duration
	if *mode == "serial" || *mode == "both" {
		serialPerTick = run(logger, cfg, *ticks, false)
	}
	if *mode == "parallel" || *mode == "both" {
		parallelPerTick = run(logger, cfg, *ticks, true)
	}

	if *mode == "both" && parallelPerTick > 0 {
		logger.Infof("speedup: %.2fx", float64(serialPerTick)/float64(parallelPerTick))
	}
}

// run simulates ticks steps with one strategy and reports the mean tick time.
func run(logger *Logger, cfg *flock.Config, ticks int, parallel bool) time.Duration {
	name := "serial"
	if parallel {
		name = "parallel"
	}

	f := flock.New(cfg)
	f.SetLogger(logger)
	f.Initialize(cfg.NumAgents)

	start := time.Now()
	for i := 0; i < ticks; i++ {
		if parallel {
			f.TickParallel()
		} else {
			f.TickSerial()
		}
	}
	elapsed := time.Since(start)

	perTick := elapsed / time.Duration(ticks)
	logger.Infof("%-8s %d ticks in %v (%.3fms/tick)  avg speed %.2f  coherence %.1f",
		name, ticks, elapsed.Round(time.Millisecond),
		float64(perTick.Microseconds())/1000.0,
		f.AverageSpeed(), f.Coherence())
	return perTick
}
