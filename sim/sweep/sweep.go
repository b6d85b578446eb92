// Package sweep runs a closed network template across several population
// (WIP) levels and replications, aggregating throughput, cycle time and
// bottleneck behavior per level.
package sweep

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cqnsim/cqnsim/sim"
)

// DefaultThreshold is the relative throughput gain below which adding WIP
// is considered to give diminishing returns.
const DefaultThreshold = 0.05

// Config describes a sweep. Template supplies stations and routing; its
// population and seed are overridden for every run.
type Config struct {
	Template     sim.NetworkConfig
	Levels       []int
	Replications int
	BaseSeed     int64
	Run          sim.RunConfig
	Parallelism  int // concurrent runs; values below 2 run sequentially
}

// Validate checks the sweep parameters and the template network.
func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("at least one WIP level required")
	}
	for i, l := range c.Levels {
		if l <= 0 {
			return fmt.Errorf("levels[%d]: WIP level must be positive, got %d", i, l)
		}
	}
	if c.Replications <= 0 {
		return fmt.Errorf("replications must be positive, got %d", c.Replications)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be non-negative, got %d", c.Parallelism)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	probe := c.networkConfig(c.Levels[0], c.BaseSeed)
	if err := probe.Validate(); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}

// networkConfig derives the configuration of one run from the template.
func (c Config) networkConfig(wip int, seed int64) sim.NetworkConfig {
	nc := c.Template
	nc.NumJobs = wip
	nc.Seed = &seed
	return nc
}

// Estimate is a sample mean with its spread across replications.
type Estimate struct {
	Mean      float64 `json:"mean" yaml:"mean"`
	StdDev    float64 `json:"std_dev" yaml:"std_dev"`
	HalfWidth float64 `json:"half_width" yaml:"half_width"` // 95% confidence half-width
}

// LevelResult aggregates every replication run at one WIP level.
type LevelResult struct {
	WIP                   int      `json:"wip" yaml:"wip"`
	Throughput            Estimate `json:"throughput" yaml:"throughput"`
	CycleTime             Estimate `json:"cycle_time" yaml:"cycle_time"`
	BottleneckUtilization Estimate `json:"bottleneck_utilization" yaml:"bottleneck_utilization"`
	BottleneckQueue       Estimate `json:"bottleneck_queue" yaml:"bottleneck_queue"`
	Bottleneck            string   `json:"bottleneck" yaml:"bottleneck"` // most frequent bottleneck station

	Runs []*sim.Results `json:"-" yaml:"-"`
}

type runKey struct {
	level, replication int
}

// Run executes the sweep and returns the per-level aggregates together with
// the diminishing-returns analysis at DefaultThreshold. Results do not depend
// on Parallelism.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep: %w", err)
	}
	levels := slices.Clone(cfg.Levels)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	runs := make([][]*sim.Results, len(levels))
	for i := range runs {
		runs[i] = make([]*sim.Results, cfg.Replications)
	}

	workers := cfg.Parallelism
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan runKey)
	errs := make(chan error, workers)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for k := range jobs {
				res, err := runOne(cfg, levels[k.level], k.replication)
				if err != nil {
					errs <- err
					cancel()
					return
				}
				// each slot is written by exactly one worker
				runs[k.level][k.replication] = res
			}
		}()
	}

feed:
	for li, wip := range levels {
		logrus.Infof("Sweeping WIP=%d (%d replications)", wip, cfg.Replications)
		for r := 0; r < cfg.Replications; r++ {
			select {
			case <-ctx.Done():
				break feed
			case jobs <- runKey{level: li, replication: r}:
			}
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Levels: make([]LevelResult, len(levels))}
	for i, wip := range levels {
		report.Levels[i] = aggregate(wip, runs[i])
	}
	report.Analysis = Analyze(report.Levels, DefaultThreshold)
	return report, nil
}

func runOne(cfg Config, wip, replication int) (*sim.Results, error) {
	seed := cfg.BaseSeed + int64(replication)
	n, err := sim.NewNetwork(cfg.networkConfig(wip, seed))
	if err != nil {
		return nil, fmt.Errorf("wip %d replication %d: %w", wip, replication, err)
	}
	if err := n.Run(cfg.Run); err != nil {
		return nil, fmt.Errorf("wip %d replication %d: %w", wip, replication, err)
	}
	return n.Results(), nil
}

func aggregate(wip int, runs []*sim.Results) LevelResult {
	tp := make([]float64, len(runs))
	ct := make([]float64, len(runs))
	bu := make([]float64, len(runs))
	bq := make([]float64, len(runs))
	votes := make(map[string]int)
	for i, r := range runs {
		tp[i] = r.SystemThroughput
		ct[i] = r.CycleTimeLittle
		if r.Bottleneck != nil {
			bu[i] = r.Bottleneck.Utilization
			bq[i] = r.Stations[r.Bottleneck.StationID].AvgQueueLength
			votes[r.Bottleneck.Name]++
		}
	}
	return LevelResult{
		WIP:                   wip,
		Throughput:            estimate(tp),
		CycleTime:             estimate(ct),
		BottleneckUtilization: estimate(bu),
		BottleneckQueue:       estimate(bq),
		Bottleneck:            mostFrequent(votes),
		Runs:                  runs,
	}
}

// estimate computes the mean, sample standard deviation and the Student-t
// 95% half-width. A single sample has zero spread.
func estimate(xs []float64) Estimate {
	if len(xs) == 0 {
		return Estimate{}
	}
	if len(xs) == 1 {
		return Estimate{Mean: xs[0]}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(xs) - 1)}.Quantile(0.975)
	return Estimate{
		Mean:      mean,
		StdDev:    std,
		HalfWidth: t * std / math.Sqrt(float64(len(xs))),
	}
}

// mostFrequent returns the key with the highest count; ties resolve alphabetically.
func mostFrequent(votes map[string]int) string {
	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	slices.Sort(names)
	best := ""
	for _, name := range names {
		if best == "" || votes[name] > votes[best] {
			best = name
		}
	}
	return best
}
