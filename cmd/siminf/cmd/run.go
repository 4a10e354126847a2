package cmd

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BorisVSchmid/SimInf/internal/engine"
	"github.com/BorisVSchmid/SimInf/internal/metrics"
	"github.com/BorisVSchmid/SimInf/internal/modelio"
)

var (
	flagConfig      string
	flagOut         string
	flagThreads     int
	flagSeed        uint64
	flagVerbose     int
	flagMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a YAML model config.",
	Run:   runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&flagConfig, "config", "", "path to the YAML model config (required)")
	runCmd.Flags().StringVar(&flagOut, "out", "trajectory.sqlite", "output path (.csv or .sqlite)")
	runCmd.Flags().IntVar(&flagThreads, "threads", 0, "number of partitions (0: use config value)")
	runCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0: use config value)")
	runCmd.Flags().IntVar(&flagVerbose, "verbose", -1, "progress verbosity 0, 1 or 2 (-1: use config value)")
	runCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "address to serve /metrics on, e.g. :9090 (empty: disabled)")

	_ = runCmd.MarkFlagRequired("config")
}

func runRun(_ *cobra.Command, _ []string) {
	cfg, err := modelio.Load(flagConfig)
	if err != nil {
		log.Fatalf("siminf: %v", err)
	}

	if flagThreads > 0 {
		cfg.Run.Nthread = flagThreads
	}
	if flagSeed > 0 {
		cfg.Run.Seed = flagSeed
	}
	if flagVerbose >= 0 {
		cfg.Run.Verbosity = flagVerbose
	}
	if cfg.Run.Nthread <= 0 {
		cfg.Run.Nthread = 1
	}

	model, err := cfg.BuildModel()
	if err != nil {
		log.Fatalf("siminf: %v", err)
	}
	state := cfg.BuildState()

	events, err := cfg.Events.ToEventRecord()
	if err != nil {
		log.Fatalf("siminf: %v", err)
	}

	out := engine.NewDenseOutput(cfg.ToDims(), true, cfg.Dims.Nd > 0)

	driver, err := engine.NewDriver(model, state, out, events, cfg.Tspan, cfg.Run.Nthread, cfg.Run.Seed, cfg.Run.Verbosity)
	if err != nil {
		log.Fatalf("siminf: building driver: %v", err)
	}

	var collector *metrics.Collector
	if flagMetricsAddr != "" {
		collector, err = metrics.NewCollector(nil)
		if err != nil {
			log.Fatalf("siminf: metrics: %v", err)
		}
		collector.SetRunInfo(driver.Meta().RunID, driver.Meta().Seed, driver.Meta().Nthread)

		driver.PhaseObserver = func(phase string, d time.Duration) {
			collector.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
		}

		go serveMetrics(collector)
	}

	driver.AcceptHook(progressHook{verbosity: cfg.Run.Verbosity, collector: collector})

	log.Printf("siminf: run %s starting, seed=%d threads=%d", driver.Meta().RunID, driver.Meta().Seed, driver.Meta().Nthread)

	if err := driver.Run(); err != nil {
		log.Fatalf("siminf: %v", err)
	}

	if collector != nil {
		for i, count := range driver.TransitionCounts() {
			collector.SSATransitions.WithLabelValues(fmt.Sprintf("%d", i)).Add(float64(count))
		}
	}

	if err := writeOutput(flagOut, out, driver.Meta()); err != nil {
		log.Fatalf("siminf: writing output: %v", err)
	}

	log.Printf("siminf: run %s done", driver.Meta().RunID)
}

func writeOutput(path string, out *engine.Output, meta engine.RunMetadata) error {
	if strings.HasSuffix(path, ".csv") {
		return modelio.WriteCSV(path, out)
	}

	sink, err := modelio.OpenSQLiteSink(path)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.WriteRunInfo(meta.RunID, meta.Seed, meta.Nthread); err != nil {
		return err
	}
	return sink.WriteOutput(out)
}

func serveMetrics(c *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	if err := http.ListenAndServe(flagMetricsAddr, mux); err != nil {
		log.Printf("siminf: metrics server: %v", err)
	}
}

// progressHook logs a percent-complete line per simulated day at
// verbosity >= 1 and, when metrics are enabled, counts simulated days.
// Verbosity 2 logs nothing beyond verbosity 1; phase durations are only
// exported to the siminf_phase_duration_seconds histogram, through
// driver.PhaseObserver, when --metrics-addr is set.
type progressHook struct {
	verbosity int
	collector *metrics.Collector
}

func (h progressHook) Func(ctx engine.DayHookCtx) {
	if ctx.Pos != engine.DayHookPosAfterDay {
		return
	}

	if h.collector != nil {
		h.collector.DaysSimulated.Inc()
	}

	if h.verbosity >= 1 {
		pct := 100.0
		if span := ctx.TSpanN - ctx.TSpan0; span > 0 {
			pct = math.Min(100, 100*(ctx.Tt-ctx.TSpan0)/span)
		}
		log.Printf("day %d: %.1f%% complete (tt=%.1f)", ctx.Day, pct, ctx.Tt)
	}
}
