// Command auvnav runs the AUV factor-graph construction pipeline over a
// synthetic dive profile, prints a run summary, and optionally records it
// to the run database for later inspection.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/banshee-data/auvnav/internal/config"
	"github.com/banshee-data/auvnav/internal/monitoring"
	"github.com/banshee-data/auvnav/internal/nav"
	"github.com/banshee-data/auvnav/internal/nav/sim"
	"github.com/banshee-data/auvnav/internal/navdb"
	"github.com/banshee-data/auvnav/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON run config (partial overrides allowed)")
	checkpoints = flag.Int("checkpoints", 0, "Override the checkpoint bound (0 = config value)")
	dbPath      = flag.String("db", "", "Record the run summary to this SQLite database")
	listen      = flag.String("listen", "", "After the run, serve debug routes on this address")
	streaming   = flag.Bool("streaming", false, "Submit to the solver per checkpoint instead of once at the end")
	debug       = flag.Bool("debug", false, "Enable per-event diagnostic logging")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("auvnav %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(0)
	}
	monitoring.SetDebug(*debug)

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg.Apply(loaded)
	}
	if *checkpoints > 0 {
		cfg.MaxCheckpoints = checkpoints
	}
	if *streaming {
		cfg.Streaming = streaming
	}

	bias := nav.BiasEstimate{Accel: *cfg.AccelBias, Gyro: *cfg.GyroBias}

	diveCfg := sim.DefaultDiveConfig()
	diveCfg.Gravity = *cfg.Gravity
	diveCfg.Bias = bias
	diveCfg.Scale = *cfg.TickScale
	if *cfg.MaxCheckpoints > 0 {
		diveCfg.Checkpoints = *cfg.MaxCheckpoints
	}
	streams := sim.Dive(diveCfg)
	log.Printf("simulated dive: %d prior states, %d imu samples, %d depth samples",
		len(streams.States), len(streams.Imu), len(streams.Depth))

	src, err := nav.NewSliceStateSource(streams.States, streams.StateTicks)
	if err != nil {
		log.Fatalf("state source: %v", err)
	}
	pim := nav.NewPreintegrator(*cfg.Gravity, bias, nav.ImuNoise{
		GyroSigma:  *cfg.GyroSigma,
		AccelSigma: *cfg.AccelSigma,
	})
	seq := nav.NewSequencer(streams.Imu, streams.Depth, *cfg.TickScale)

	builderCfg := nav.BuilderConfig{
		MaxCheckpoints:     *cfg.MaxCheckpoints,
		PriorPoseSigma:     *cfg.PriorPoseSigma,
		PriorVelocitySigma: *cfg.PriorVelocitySigma,
		DepthSigma:         *cfg.DepthSigma,
		TickScale:          *cfg.TickScale,
		Streaming:          *cfg.Streaming,
	}
	if *cfg.DepthConvention == "positive_up" {
		builderCfg.DepthConvention = nav.DepthPositiveUp
	}

	solver := &nav.RecordingSolver{}
	builder := nav.NewGraphBuilder(builderCfg, src, seq, pim, solver)

	started := time.Now()
	graph, err := builder.Run()
	if err != nil {
		log.Fatalf("graph construction failed: %v", err)
	}
	elapsed := time.Since(started)

	stats := builder.Stats()
	log.Printf("run complete in %v: %d checkpoints (%d skipped), %d nodes, %d factors, %d solver calls",
		elapsed, stats.Checkpoints, stats.SkippedCheckpoints, stats.Nodes, stats.Factors, stats.SolverCalls)
	for name, count := range graph.FactorCounts() {
		log.Printf("  %-16s %d", name, count)
	}

	if *dbPath != "" {
		db, err := navdb.Open(*dbPath)
		if err != nil {
			log.Fatalf("open run db: %v", err)
		}
		defer db.Close()
		runID, err := db.InsertRun(&navdb.RunSummary{
			StartedAt:          started,
			Duration:           elapsed,
			Checkpoints:        stats.Checkpoints,
			SkippedCheckpoints: stats.SkippedCheckpoints,
			ImuSamples:         stats.ImuSamples,
			DepthSamples:       stats.DepthSamples,
			Nodes:              stats.Nodes,
			Factors:            stats.Factors,
			SolverCalls:        stats.SolverCalls,
			FactorCounts:       graph.FactorCounts(),
		})
		if err != nil {
			log.Fatalf("record run: %v", err)
		}
		log.Printf("recorded run %s to %s", runID, *dbPath)

		if *listen != "" {
			mux := http.NewServeMux()
			if err := db.AttachAdminRoutes(mux, "AUV run DB"); err != nil {
				log.Fatalf("attach admin routes: %v", err)
			}
			log.Printf("serving debug routes on %s", *listen)
			log.Fatal(http.ListenAndServe(*listen, mux))
		}
	}
}
