package sim

import "fmt"

// EventKind tags an Event as an arrival at or a departure from a station.
type EventKind int

const (
	// ArrivalEvent marks a job reaching a station (queued or served immediately).
	ArrivalEvent EventKind = iota
	// DepartureEvent marks a job finishing service at a station.
	DepartureEvent
)

func (k EventKind) String() string {
	switch k {
	case ArrivalEvent:
		return "Arrival"
	case DepartureEvent:
		return "Departure"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is an immutable scheduled occurrence in the simulation.
// Events are ordered by Time; equal-time events pop in the order they
// were scheduled (see EventQueue).
type Event struct {
	Time      float64   // Simulation time of the event
	Kind      EventKind // Arrival or Departure
	JobID     int       // Job the event concerns
	StationID int       // Station the event happens at

	seq uint64 // insertion order, assigned by EventQueue.Schedule
}

// Seq returns the insertion sequence number assigned when the event was scheduled.
func (e Event) Seq() uint64 {
	return e.seq
}

func (e Event) String() string {
	return fmt.Sprintf("%s(t=%.6f job=%d station=%d)", e.Kind, e.Time, e.JobID, e.StationID)
}
