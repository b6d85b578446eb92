package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/cqnsim/cqnsim/sim"
	"github.com/cqnsim/cqnsim/sim/sweep"
	"github.com/cqnsim/cqnsim/sim/trace"
)

var (
	// CLI flags shared by run and sweep
	networkPath     string  // Path to a network YAML file
	presetName      string  // Built-in network used when no file is given
	seed            int64   // Seed overriding the network's seed
	horizon         float64 // Simulated time to run for
	warmup          float64 // Statistics before this time are discarded
	logLevel        string  // Log verbosity level
	outputFormat    string  // text, json or yaml
	checkInvariants bool    // Verify WIP conservation after every event

	// run-only flags
	traceLevel     string // Event trace level: none or events
	traceMaxEvents int    // Cap on stored trace records
	resultsPath    string // File to save results to, in addition to stdout

	// sweep-only flags
	levels       []int   // WIP levels to sweep
	replications int     // Independent runs per level
	parallelism  int     // Concurrent runs
	threshold    float64 // Relative throughput gain marking diminishing returns
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cqnsim",
	Short: "Discrete-event simulator for closed queuing networks",
}

// runCmd simulates one network and reports its statistics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a closed network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		spec, err := resolveSpec(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, events)", traceLevel)
		}

		startTime := time.Now()
		if err := runSimulation(cmd.OutOrStdout(), spec); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// sweepCmd runs the network across several WIP levels
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep a closed network across WIP levels",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		spec, err := resolveSpec(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg := sweepConfig(cmd, spec)

		startTime := time.Now()
		report, err := sweep.Run(context.Background(), cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("threshold") {
			report.Analysis = sweep.Analyze(report.Levels, threshold)
		}
		if err := report.Write(cmd.OutOrStdout(), outputFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Sweep complete in %s.", time.Since(startTime))
	},
}

// presetsCmd lists the built-in networks
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in networks",
	Run: func(cmd *cobra.Command, args []string) {
		printPresets(cmd.OutOrStdout())
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveSpec loads the network file or preset and applies flag overrides.
// Flags override file values only when set explicitly.
func resolveSpec(cmd *cobra.Command) (*NetworkSpec, error) {
	var (
		spec *NetworkSpec
		err  error
	)
	source := networkPath
	if networkPath != "" {
		spec, err = LoadNetworkSpec(networkPath)
	} else {
		source = "preset " + presetName
		spec, err = Preset(presetName)
	}
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded network from %s", source)

	flags := cmd.Flags()
	if flags.Changed("seed") {
		logrus.Infof("CLI --seed %d overrides network seed", seed)
		s := seed
		spec.Network.Seed = &s
	}
	if flags.Changed("horizon") {
		spec.Run.Horizon = horizon
	}
	if flags.Changed("warmup") {
		spec.Run.Warmup = warmup
	}
	spec.Run.CheckInvariants = checkInvariants

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func runSimulation(w io.Writer, spec *NetworkSpec) error {
	n, err := sim.NewNetwork(spec.Network)
	if err != nil {
		return err
	}
	if ra := n.RoutingAnalysis(); ra.StronglyConnected() {
		logrus.Infof("Routing graph is strongly connected across %d stations", len(spec.Network.Stations))
	} else {
		logrus.Infof("Routing graph has %d strongly connected components: %v", len(ra.Components), ra.Components)
	}
	var et *trace.EventTrace
	if trace.TraceLevel(traceLevel) == trace.TraceLevelEvents {
		et = trace.NewEventTrace(trace.TraceConfig{Level: trace.TraceLevelEvents, MaxEvents: traceMaxEvents})
		n.SetTrace(et)
	}
	if err := n.Run(spec.Run); err != nil {
		return err
	}

	res := n.Results()
	if err := res.Write(w, outputFormat); err != nil {
		return err
	}
	if resultsPath != "" {
		if err := res.SaveResults(resultsPath, outputFormat); err != nil {
			return err
		}
	}
	if et != nil {
		printTraceSummary(w, trace.Summarize(et), et.Dropped)
	}
	return nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary, dropped int) {
	fmt.Fprintln(w, "\n=== Event Trace Summary ===")
	fmt.Fprintf(w, "Events recorded: %d (arrivals %d, departures %d, dropped %d)\n",
		s.TotalEvents, s.Arrivals, s.Departures, dropped)
	fmt.Fprintf(w, "Span: t=%.4f .. t=%.4f\n", s.FirstTime, s.LastTime)
	ids := make([]int, 0, len(s.StationVisits))
	for id := range s.StationVisits {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  Station %d: %d arrivals\n", id, s.StationVisits[id])
	}
}

// sweepConfig builds the sweep from the spec, preferring explicit flags over
// the network file's sweep section.
func sweepConfig(cmd *cobra.Command, spec *NetworkSpec) sweep.Config {
	cfg := sweep.Config{
		Template:     spec.Network,
		Levels:       []int{spec.Network.NumJobs},
		Replications: 1,
		Run:          spec.Run,
		Parallelism:  parallelism,
	}
	if spec.Network.Seed != nil {
		cfg.BaseSeed = *spec.Network.Seed
	} else {
		cfg.BaseSeed = int64(sim.EntropyKey())
	}
	if spec.Sweep != nil {
		if len(spec.Sweep.Levels) > 0 {
			cfg.Levels = spec.Sweep.Levels
		}
		if spec.Sweep.Replications > 0 {
			cfg.Replications = spec.Sweep.Replications
		}
	}
	if cmd.Flags().Changed("levels") {
		cfg.Levels = levels
	}
	if cmd.Flags().Changed("replications") {
		cfg.Replications = replications
	}
	return cfg
}

func printPresets(w io.Writer) {
	for _, name := range PresetNames() {
		p, _ := Preset(name)
		fmt.Fprintf(w, "%-20s %d jobs, %d stations, horizon %.0f, warmup %.0f\n",
			name, p.Network.NumJobs, len(p.Network.Stations), p.Run.Horizon, p.Run.Warmup)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNetworkFlags(c *cobra.Command) {
	c.Flags().StringVar(&networkPath, "network", "", "Path to network YAML file (overrides --preset)")
	c.Flags().StringVar(&presetName, "preset", "manufacturing-line", "Built-in network to run when --network is not given")
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for all random draws (overrides the network file when set)")
	c.Flags().Float64Var(&horizon, "horizon", 1000, "Simulation horizon in time units (overrides the network file when set)")
	c.Flags().Float64Var(&warmup, "warmup", 0, "Warmup period whose statistics are discarded (overrides the network file when set)")
	c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json, yaml)")
	c.Flags().BoolVar(&checkInvariants, "check-invariants", false, "Verify WIP conservation after every event")
}

// init sets up CLI flags and subcommands
func init() {
	addNetworkFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Event trace level (none, events)")
	runCmd.Flags().IntVar(&traceMaxEvents, "trace-max-events", 0, "Maximum trace records kept (0 = unlimited)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Also save results to this file")

	addNetworkFlags(sweepCmd)
	sweepCmd.Flags().IntSliceVar(&levels, "levels", nil, "Comma-separated WIP levels (default: the network's sweep section or its population)")
	sweepCmd.Flags().IntVar(&replications, "replications", 1, "Independent runs per WIP level")
	sweepCmd.Flags().IntVar(&parallelism, "parallelism", 1, "Number of runs executed concurrently")
	sweepCmd.Flags().Float64Var(&threshold, "threshold", sweep.DefaultThreshold, "Relative throughput gain below which returns are diminishing")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(presetsCmd)
}
