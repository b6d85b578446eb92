package sim

// StationVisit records one pass of a job through a station.
type StationVisit struct {
	StationID     int
	ArrivalTime   float64 // time the job joined the station's queue
	StartTime     float64 // time service began
	DepartureTime float64 // scheduled service completion
}

// Job is a unit of work circulating in the closed network.
// Jobs never leave the network, so there is no completion time; cycle time
// is measured between successive arrivals at the reference station instead.
type Job struct {
	ID              int
	ArrivalTime     float64        // time the job entered the system (simulation start)
	Visits          []StationVisit // append-only history
	CompletedCycles int            // reference-station round trips completed

	stationArrival float64 // arrival time at the station currently holding the job
	lastRefArrival float64
	seenRefStation bool
}
