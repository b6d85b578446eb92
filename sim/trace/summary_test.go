package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalEvents != 0 || summary.Arrivals != 0 || summary.Departures != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.StationVisits == nil || summary.JobVisits == nil {
		t.Error("expected non-nil maps")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	et := NewEventTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN summarized
	summary := Summarize(et)

	// THEN all counts are zero
	if summary.TotalEvents != 0 {
		t.Errorf("expected 0 events, got %d", summary.TotalEvents)
	}
	if len(summary.StationVisits) != 0 {
		t.Error("expected empty station visits")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with two jobs circulating between two stations
	et := NewEventTrace(TraceConfig{Level: TraceLevelEvents})
	et.Record(EventRecord{Time: 0, Kind: "Arrival", JobID: 0, StationID: 0})
	et.Record(EventRecord{Time: 0, Kind: "Arrival", JobID: 1, StationID: 0})
	et.Record(EventRecord{Time: 0.5, Kind: "Departure", JobID: 0, StationID: 0})
	et.Record(EventRecord{Time: 0.5, Kind: "Arrival", JobID: 0, StationID: 1})
	et.Record(EventRecord{Time: 2.0, Kind: "Departure", JobID: 1, StationID: 0})

	// WHEN summarized
	summary := Summarize(et)

	// THEN counts match
	if summary.TotalEvents != 5 {
		t.Errorf("expected 5 events, got %d", summary.TotalEvents)
	}
	if summary.Arrivals != 3 || summary.Departures != 2 {
		t.Errorf("expected 3 arrivals and 2 departures, got %d and %d", summary.Arrivals, summary.Departures)
	}
	if summary.StationVisits[0] != 2 || summary.StationVisits[1] != 1 {
		t.Errorf("unexpected station visits %v", summary.StationVisits)
	}
	if summary.JobVisits[0] != 2 {
		t.Errorf("expected job 0 to arrive twice, got %d", summary.JobVisits[0])
	}
	if summary.FirstTime != 0 || summary.LastTime != 2.0 {
		t.Errorf("expected time span [0, 2], got [%v, %v]", summary.FirstTime, summary.LastTime)
	}
}
