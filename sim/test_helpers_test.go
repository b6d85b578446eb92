package sim

import (
	"testing"

	"github.com/cqnsim/cqnsim/sim/trace"
)

func seedPtr(seed int64) *int64 {
	return &seed
}

// twoStationCycle returns a network where jobs alternate between two
// single-server stations: routing [[0,1],[1,0]].
func twoStationCycle(jobs int, meanA, meanB float64, seed int64) NetworkConfig {
	return NetworkConfig{
		NumJobs: jobs,
		Stations: []StationConfig{
			{Name: "A", Servers: 1, MeanServiceTime: meanA},
			{Name: "B", Servers: 1, MeanServiceTime: meanB},
		},
		Routing: [][]float64{{0, 1}, {1, 0}},
		Seed:    seedPtr(seed),
	}
}

// serialLine returns a cyclic line 0 → 1 → … → n-1 → 0.
func serialLine(jobs int, stations []StationConfig, seed int64) NetworkConfig {
	n := len(stations)
	routing := make([][]float64, n)
	for i := range routing {
		routing[i] = make([]float64, n)
		routing[i][(i+1)%n] = 1
	}
	return NetworkConfig{NumJobs: jobs, Stations: stations, Routing: routing, Seed: seedPtr(seed)}
}

// manufacturingLine is the four-station line with recirculation.
func manufacturingLine(seed int64) NetworkConfig {
	return serialLine(10, []StationConfig{
		{Name: "Loading", Servers: 2, MeanServiceTime: 0.8},
		{Name: "Processing", Servers: 1, MeanServiceTime: 2.0},
		{Name: "Inspection", Servers: 2, MeanServiceTime: 1.0},
		{Name: "Unloading", Servers: 1, MeanServiceTime: 0.5},
	}, seed)
}

// mustRun builds and runs a network with an attached event trace.
func mustRun(t *testing.T, cfg NetworkConfig, rc RunConfig) (*Network, *trace.EventTrace) {
	t.Helper()
	n, err := NewNetwork(cfg)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	tr := trace.NewEventTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
	n.SetTrace(tr)
	if err := n.Run(rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return n, tr
}
