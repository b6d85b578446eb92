package cmd

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/cqnsim/cqnsim/sim"
)

// presets are ready-made networks runnable without a network file.
var presets = map[string]func() *NetworkSpec{
	"two-station":        twoStationPreset,
	"manufacturing-line": manufacturingLinePreset,
	"wip-line":           wipLinePreset,
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*NetworkSpec, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %v", name, PresetNames())
	}
	return build(), nil
}

func seedOf(v int64) *int64 {
	return &v
}

// serialRouting routes station i to station i+1 and the last back to the first.
func serialRouting(n int) [][]float64 {
	routing := make([][]float64, n)
	for i := range routing {
		routing[i] = make([]float64, n)
		routing[i][(i+1)%n] = 1
	}
	return routing
}

func twoStationPreset() *NetworkSpec {
	return &NetworkSpec{
		Network: sim.NetworkConfig{
			NumJobs: 5,
			Stations: []sim.StationConfig{
				{Name: "Machining", Servers: 1, MeanServiceTime: 1.0},
				{Name: "Assembly", Servers: 1, MeanServiceTime: 1.5},
			},
			Routing: serialRouting(2),
			Seed:    seedOf(42),
		},
		Run: sim.RunConfig{Horizon: 1000, Warmup: 100},
	}
}

func manufacturingLinePreset() *NetworkSpec {
	return &NetworkSpec{
		Network: sim.NetworkConfig{
			NumJobs: 10,
			Stations: []sim.StationConfig{
				{Name: "Loading", Servers: 2, MeanServiceTime: 0.8},
				{Name: "Processing", Servers: 1, MeanServiceTime: 2.0},
				{Name: "Inspection", Servers: 2, MeanServiceTime: 1.0},
				{Name: "Unloading", Servers: 1, MeanServiceTime: 0.5},
			},
			Routing: serialRouting(4),
			Seed:    seedOf(123),
		},
		Run: sim.RunConfig{Horizon: 2000, Warmup: 200},
	}
}

func wipLinePreset() *NetworkSpec {
	return &NetworkSpec{
		Network: sim.NetworkConfig{
			NumJobs: 10,
			Stations: []sim.StationConfig{
				{Name: "Prep", Servers: 1, MeanServiceTime: 1.0},
				{Name: "Process", Servers: 1, MeanServiceTime: 2.5},
				{Name: "Finish", Servers: 1, MeanServiceTime: 0.8},
			},
			Routing: serialRouting(3),
			Seed:    seedOf(42),
		},
		Run:   sim.RunConfig{Horizon: 2000, Warmup: 200},
		Sweep: &SweepSpec{Levels: []int{2, 5, 10, 15, 20, 25}, Replications: 1},
	}
}
