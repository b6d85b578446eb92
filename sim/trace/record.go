// Package trace provides event-trace recording for closed-network runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventRecord captures a single processed simulation event.
type EventRecord struct {
	Time      float64 `json:"time" yaml:"time"`
	Kind      string  `json:"kind" yaml:"kind"` // "Arrival" or "Departure"
	JobID     int     `json:"job_id" yaml:"job_id"`
	StationID int     `json:"station_id" yaml:"station_id"`
}
