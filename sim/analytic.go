package sim

import (
	"github.com/llm-inferno/queue-analysis/pkg/queue"
)

// AnalyticStation is the exact steady-state prediction for one station.
type AnalyticStation struct {
	ID             int     `json:"id" yaml:"id"`
	Utilization    float64 `json:"utilization" yaml:"utilization"`
	AvgQueueLength float64 `json:"avg_queue_length" yaml:"avg_queue_length"`
}

// AnalyticReference is the exact steady-state solution of a network that has
// a closed form, reported next to the simulated statistics.
type AnalyticReference struct {
	Model            string            `json:"model" yaml:"model"`
	SystemThroughput float64           `json:"system_throughput" yaml:"system_throughput"`
	CycleTimeLittle  float64           `json:"cycle_time_little" yaml:"cycle_time_little"`
	Stations         []AnalyticStation `json:"stations" yaml:"stations"`
}

// AnalyticReference solves the network exactly when it is a cycle of two
// single-server stations. With N jobs, the population at one station is a
// birth-death chain on 0..N fed at the other station's service rate, which is
// an M/M/1/K queue with K = N. Returns false for any other network.
func (n *Network) AnalyticReference() (*AnalyticReference, bool) {
	if n.router.Size() != 2 || n.router.Probability(0, 1) != 1 || n.router.Probability(1, 0) != 1 {
		return nil, false
	}
	a, b := n.Stations[0], n.Stations[1]
	if a.Servers != 1 || b.Servers != 1 {
		return nil, false
	}

	// The queue model rejects load factors of K or more; the mirrored chain
	// (station A as the queue) then has load below 1.
	up, down := a, b
	m := queue.NewMM1KModel(n.NumJobs)
	m.Solve(float32(1/up.MeanServiceTime), float32(1/down.MeanServiceTime))
	if !m.IsValid() {
		up, down = b, a
		m = queue.NewMM1KModel(n.NumJobs)
		m.Solve(float32(1/up.MeanServiceTime), float32(1/down.MeanServiceTime))
		if !m.IsValid() {
			return nil, false
		}
	}

	// p[k] = P(k jobs at the downstream station, N-k at the upstream one)
	p := m.GetProbabilities()
	var downQueue, upQueue float64
	for k, pk := range p {
		if k > 1 {
			downQueue += float64(k-1) * pk
		}
		if atUp := n.NumJobs - k; atUp > 1 {
			upQueue += float64(atUp-1) * pk
		}
	}
	tput := float64(m.GetThroughput())

	ref := &AnalyticReference{
		Model:            "M/M/1/N",
		SystemThroughput: tput,
		Stations:         make([]AnalyticStation, 2),
	}
	if tput > 0 {
		ref.CycleTimeLittle = float64(n.NumJobs) / tput
	}
	ref.Stations[down.ID] = AnalyticStation{
		ID:             down.ID,
		Utilization:    1 - p[0],
		AvgQueueLength: downQueue,
	}
	ref.Stations[up.ID] = AnalyticStation{
		ID:             up.ID,
		Utilization:    1 - p[n.NumJobs],
		AvgQueueLength: upQueue,
	}
	return ref, true
}
