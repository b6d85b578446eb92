package sim

import (
	"testing"

	"github.com/llm-inferno/queue-analysis/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticReference_Symmetric(t *testing.T) {
	// GIVEN two identical single-server stations with 5 jobs
	n, err := NewNetwork(twoStationCycle(5, 1.0, 1.0, 1))
	require.NoError(t, err)

	// WHEN the exact solution is taken
	ref, ok := n.AnalyticReference()
	require.True(t, ok)

	// THEN all 6 splits of the population are equally likely
	assert.Equal(t, "M/M/1/N", ref.Model)
	assert.InDelta(t, 5.0/6.0, ref.SystemThroughput, 1e-6)
	assert.InDelta(t, 6.0, ref.CycleTimeLittle, 1e-5)
	require.Len(t, ref.Stations, 2)
	for id, s := range ref.Stations {
		assert.Equal(t, id, s.ID)
		assert.InDelta(t, 5.0/6.0, s.Utilization, 1e-6)
		// Σ_{k=2..5} (k-1)/6
		assert.InDelta(t, 10.0/6.0, s.AvgQueueLength, 1e-6)
	}
}

func TestAnalyticReference_MatchesQueueModel(t *testing.T) {
	// GIVEN a cycle where station B (mean 1.5) is slower than A (mean 1.0)
	n, err := NewNetwork(twoStationCycle(5, 1.0, 1.5, 1))
	require.NoError(t, err)
	m := queue.NewMM1KModel(5)
	m.Solve(1/1.0, 1/1.5)
	require.True(t, m.IsValid())

	ref, ok := n.AnalyticReference()
	require.True(t, ok)

	// THEN B is the queue of the M/M/1/5 model and A serves whenever B is not full
	p := m.GetProbabilities()
	assert.InDelta(t, float64(m.GetThroughput()), ref.SystemThroughput, 1e-9)
	assert.InDelta(t, 1-p[0], ref.Stations[1].Utilization, 1e-9)
	assert.InDelta(t, 1-p[5], ref.Stations[0].Utilization, 1e-9)
	assert.InDelta(t, float64(m.GetAvgQueueLength()), ref.Stations[1].AvgQueueLength, 1e-4)
	// flow balance: each station's busy fraction is throughput times its mean service time
	assert.InDelta(t, ref.SystemThroughput*1.5, ref.Stations[1].Utilization, 1e-5)
	assert.InDelta(t, ref.SystemThroughput*1.0, ref.Stations[0].Utilization, 1e-5)
}

func TestAnalyticReference_HeavyDownstream_SolvesMirror(t *testing.T) {
	// GIVEN A ten times faster than B, so the load on B exceeds the population
	n, err := NewNetwork(twoStationCycle(5, 0.1, 1.0, 1))
	require.NoError(t, err)

	// WHEN the exact solution is taken
	ref, ok := n.AnalyticReference()
	require.True(t, ok)

	// THEN B is almost always busy and almost all jobs wait there
	assert.InDelta(t, 1.0, ref.SystemThroughput, 1e-3)
	assert.InDelta(t, 1.0, ref.Stations[1].Utilization, 1e-3)
	assert.InDelta(t, 0.1, ref.Stations[0].Utilization, 1e-3)
	assert.Greater(t, ref.Stations[1].AvgQueueLength, 3.5)
	assert.Less(t, ref.Stations[0].AvgQueueLength, 0.05)
}

func TestAnalyticReference_Unsupported(t *testing.T) {
	multi := twoStationCycle(3, 1.0, 1.0, 1)
	multi.Stations[0].Servers = 2

	tests := []struct {
		name string
		cfg  NetworkConfig
	}{
		{name: "more than two stations", cfg: manufacturingLine(1)},
		{name: "multi-server station", cfg: multi},
		{name: "self loop", cfg: NetworkConfig{
			NumJobs:  3,
			Stations: []StationConfig{{Servers: 1, MeanServiceTime: 1}, {Servers: 1, MeanServiceTime: 1}},
			Routing:  [][]float64{{0.5, 0.5}, {1, 0}},
			Seed:     seedPtr(1),
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := NewNetwork(tc.cfg)
			require.NoError(t, err)

			ref, ok := n.AnalyticReference()
			assert.False(t, ok)
			assert.Nil(t, ref)
			assert.Nil(t, n.Results().Analytic)
		})
	}
}
