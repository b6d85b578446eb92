package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every processed arrival and departure.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level     TraceLevel
	MaxEvents int // 0 = unlimited; once reached, further events are counted but not stored
}

// EventTrace collects event records during a simulation.
type EventTrace struct {
	Config  TraceConfig
	Events  []EventRecord
	Dropped int // events not stored because MaxEvents was reached
}

// NewEventTrace creates an EventTrace ready for recording.
func NewEventTrace(config TraceConfig) *EventTrace {
	return &EventTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Record appends an event record, honoring the configured level and cap.
func (et *EventTrace) Record(record EventRecord) {
	if et.Config.Level != TraceLevelEvents {
		return
	}
	if et.Config.MaxEvents > 0 && len(et.Events) >= et.Config.MaxEvents {
		et.Dropped++
		return
	}
	et.Events = append(et.Events, record)
}

// Equal reports whether two traces hold the same event sequence.
func (et *EventTrace) Equal(other *EventTrace) bool {
	if et == nil || other == nil {
		return et == other
	}
	if len(et.Events) != len(other.Events) || et.Dropped != other.Dropped {
		return false
	}
	for i := range et.Events {
		if et.Events[i] != other.Events[i] {
			return false
		}
	}
	return true
}
