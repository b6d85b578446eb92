package trace

// TraceSummary aggregates statistics from an EventTrace.
type TraceSummary struct {
	TotalEvents   int
	Arrivals      int
	Departures    int
	FirstTime     float64
	LastTime      float64
	StationVisits map[int]int // station ID → number of arrivals
	JobVisits     map[int]int // job ID → number of arrivals
}

// Summarize computes aggregate statistics from an EventTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *EventTrace) *TraceSummary {
	summary := &TraceSummary{
		StationVisits: make(map[int]int),
		JobVisits:     make(map[int]int),
	}
	if et == nil || len(et.Events) == 0 {
		return summary
	}

	summary.TotalEvents = len(et.Events)
	summary.FirstTime = et.Events[0].Time
	summary.LastTime = et.Events[len(et.Events)-1].Time
	for _, e := range et.Events {
		switch e.Kind {
		case "Arrival":
			summary.Arrivals++
			summary.StationVisits[e.StationID]++
			summary.JobVisits[e.JobID]++
		case "Departure":
			summary.Departures++
		}
	}
	return summary
}
