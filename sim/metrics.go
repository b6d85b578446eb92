// Collects post-run statistics of a closed network for reporting:
// throughput, cycle time, per-station utilization and queue lengths, and the bottleneck.

package sim

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// StationStats is a read-only snapshot of one station after a run.
type StationStats struct {
	ID              int     `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Servers         int     `json:"servers" yaml:"servers"`
	MeanServiceTime float64 `json:"mean_service_time" yaml:"mean_service_time"`
	Arrivals        int     `json:"arrivals" yaml:"arrivals"`
	Departures      int     `json:"departures" yaml:"departures"`
	Utilization     float64 `json:"utilization" yaml:"utilization"`
	TimeAverageBusy float64 `json:"time_average_busy" yaml:"time_average_busy"`
	AvgQueueLength  float64 `json:"avg_queue_length" yaml:"avg_queue_length"`
	QueueDepth      int     `json:"queue_depth" yaml:"queue_depth"` // jobs waiting at the end of the run
	ServersBusy     int     `json:"servers_busy" yaml:"servers_busy"`
}

// Bottleneck identifies the station with the highest utilization.
type Bottleneck struct {
	StationID   int     `json:"station_id" yaml:"station_id"`
	Name        string  `json:"name" yaml:"name"`
	Utilization float64 `json:"utilization" yaml:"utilization"`
}

// CycleSummary reports reference-station cycle times observed after warmup.
type CycleSummary struct {
	Observed bool    `json:"observed" yaml:"observed"`
	Count    int     `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
}

// Results is the snapshot of a finished run consumed by reporting.
type Results struct {
	Seed             int64          `json:"seed" yaml:"seed"`
	NumJobs          int            `json:"population" yaml:"population"`
	TotalCompletions int            `json:"total_completions" yaml:"total_completions"`
	Clock            float64        `json:"clock" yaml:"clock"`
	StatsStart       float64        `json:"stats_start" yaml:"stats_start"`
	MeasuredTime     float64        `json:"measured_time" yaml:"measured_time"`
	Throughput       float64        `json:"throughput" yaml:"throughput"`               // departures (any station) per time unit
	SystemThroughput float64        `json:"system_throughput" yaml:"system_throughput"` // reference-station departures per time unit
	CycleTimeLittle  float64        `json:"cycle_time_little" yaml:"cycle_time_little"` // population / system throughput
	CycleTime        CycleSummary   `json:"cycle_time" yaml:"cycle_time"`
	Events           int            `json:"events" yaml:"events"`
	Stations         []StationStats `json:"stations" yaml:"stations"`
	Bottleneck       *Bottleneck    `json:"bottleneck,omitempty" yaml:"bottleneck,omitempty"`

	Analytic *AnalyticReference `json:"analytic,omitempty" yaml:"analytic,omitempty"` // exact solution, when one exists
}

// Results snapshots the network's statistics. Intended to be called after Run.
func (n *Network) Results() *Results {
	r := &Results{
		Seed:             int64(n.Key()),
		NumJobs:          n.NumJobs,
		TotalCompletions: n.TotalCompletions,
		Clock:            n.Clock,
		StatsStart:       n.resetTime,
		MeasuredTime:     n.Clock - n.resetTime,
		Events:           n.eventCount,
		Stations:         make([]StationStats, len(n.Stations)),
	}
	if r.MeasuredTime > 0 {
		r.Throughput = float64(r.TotalCompletions) / r.MeasuredTime
		r.SystemThroughput = float64(n.Stations[n.ReferenceStation].TotalDepartures) / r.MeasuredTime
	}
	// Little's Law over one full cycle: every cycle passes the reference station once.
	if r.SystemThroughput > 0 {
		r.CycleTimeLittle = float64(r.NumJobs) / r.SystemThroughput
	}
	if n.Cycles.Count > 0 {
		r.CycleTime = CycleSummary{
			Observed: true,
			Count:    n.Cycles.Count,
			Mean:     n.Cycles.Mean(),
			Min:      n.Cycles.Min,
			Max:      n.Cycles.Max,
		}
	}

	for i, st := range n.Stations {
		r.Stations[i] = StationStats{
			ID:              st.ID,
			Name:            st.Name,
			Servers:         st.Servers,
			MeanServiceTime: st.MeanServiceTime,
			Arrivals:        st.TotalArrivals,
			Departures:      st.TotalDepartures,
			Utilization:     st.Utilization(),
			TimeAverageBusy: st.TimeAverageBusy(),
			AvgQueueLength:  st.AvgQueueLength(),
			QueueDepth:      st.Queue.Len(),
			ServersBusy:     st.ServersBusy,
		}
	}
	r.Bottleneck = FindBottleneck(r.Stations)
	if ref, ok := n.AnalyticReference(); ok {
		r.Analytic = ref
	}
	return r
}

// FindBottleneck returns the station with maximum utilization; ties go to the
// lowest station ID. Returns nil if no station has positive utilization.
func FindBottleneck(stations []StationStats) *Bottleneck {
	if len(stations) == 0 {
		return nil
	}
	utils := make([]float64, len(stations))
	for i, s := range stations {
		utils[i] = s.Utilization
	}
	idx := floats.MaxIdx(utils)
	if utils[idx] <= 0 {
		return nil
	}
	return &Bottleneck{
		StationID:   stations[idx].ID,
		Name:        stations[idx].Name,
		Utilization: utils[idx],
	}
}

// RankedStations returns the stations ordered by decreasing utilization.
func (r *Results) RankedStations() []StationStats {
	ranked := slices.Clone(r.Stations)
	slices.SortStableFunc(ranked, func(a, b StationStats) int {
		return cmp.Compare(b.Utilization, a.Utilization)
	})
	return ranked
}

// Print writes a human-readable report of the run.
func (r *Results) Print(w io.Writer) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CLOSED QUEUING NETWORK SIMULATION RESULTS")
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nNetwork Configuration:")
	fmt.Fprintf(w, "  Total Jobs in System (WIP): %d\n", r.NumJobs)
	fmt.Fprintf(w, "  Number of Stations: %d\n", len(r.Stations))
	fmt.Fprintf(w, "  Total Completions: %d\n", r.TotalCompletions)
	fmt.Fprintf(w, "  Simulation Time: %.2f (measured %.2f after t=%.2f)\n", r.Clock, r.MeasuredTime, r.StatsStart)
	if r.TotalCompletions > 0 {
		fmt.Fprintf(w, "  Throughput: %.4f completions/time unit\n", r.Throughput)
		fmt.Fprintf(w, "  System Throughput: %.4f cycles/time unit\n", r.SystemThroughput)
		fmt.Fprintf(w, "  Avg Cycle Time (Little): %.4f time units\n", r.CycleTimeLittle)
	}
	if r.CycleTime.Observed {
		fmt.Fprintf(w, "  Reference Cycle Time: mean %.4f, min %.4f, max %.4f (%d cycles)\n",
			r.CycleTime.Mean, r.CycleTime.Min, r.CycleTime.Max, r.CycleTime.Count)
	}

	fmt.Fprintln(w, "\nStation Statistics:")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, s := range r.Stations {
		fmt.Fprintf(w, "\n%s:\n", s.Name)
		fmt.Fprintf(w, "  Servers: %d\n", s.Servers)
		fmt.Fprintf(w, "  Mean Service Time: %.2f\n", s.MeanServiceTime)
		fmt.Fprintf(w, "  Arrivals: %d\n", s.Arrivals)
		fmt.Fprintf(w, "  Departures: %d\n", s.Departures)
		fmt.Fprintf(w, "  Utilization: %.2f%%\n", s.Utilization*100)
		fmt.Fprintf(w, "  Avg Queue Length: %.2f\n", s.AvgQueueLength)
		fmt.Fprintf(w, "  Current Queue: %d jobs\n", s.QueueDepth)
	}

	if r.Bottleneck != nil {
		fmt.Fprintf(w, "\n%s\n", rule)
		fmt.Fprintln(w, "BOTTLENECK ANALYSIS:")
		fmt.Fprintf(w, "  Bottleneck Station: %s\n", r.Bottleneck.Name)
		fmt.Fprintf(w, "  Utilization: %.2f%%\n", r.Bottleneck.Utilization*100)
		fmt.Fprintln(w, "  This station limits system throughput")
		fmt.Fprintln(w, "\n  Utilization Ranking:")
		for i, s := range r.RankedStations() {
			fmt.Fprintf(w, "  %d. %s: %.2f%%\n", i+1, s.Name, s.Utilization*100)
		}
		fmt.Fprintln(w, rule)
	}

	if r.Analytic != nil {
		fmt.Fprintf(w, "\nANALYTIC REFERENCE (%s):\n", r.Analytic.Model)
		fmt.Fprintf(w, "  System Throughput: %.4f (simulated %.4f)\n", r.Analytic.SystemThroughput, r.SystemThroughput)
		fmt.Fprintf(w, "  Avg Cycle Time: %.4f (simulated %.4f)\n", r.Analytic.CycleTimeLittle, r.CycleTimeLittle)
		for _, a := range r.Analytic.Stations {
			s := r.Stations[a.ID]
			fmt.Fprintf(w, "  %s: utilization %.2f%% (simulated %.2f%%), avg queue %.2f (simulated %.2f)\n",
				s.Name, a.Utilization*100, s.Utilization*100, a.AvgQueueLength, s.AvgQueueLength)
		}
	}
}

// Write renders the results in the given format: "text", "json" or "yaml".
func (r *Results) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		r.Print(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q; valid: text, json, yaml", format)
	}
}
