// sim/network.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cqnsim/cqnsim/sim/trace"
)

// EngineState is the lifecycle phase of a Network.
type EngineState int

const (
	StateInitializing EngineState = iota // constructed, Run not yet called
	StateWarmingUp                       // running, statistics still include the startup transient
	StateSteady                          // running, statistics collected since the warmup reset
	StateFinished                        // horizon reached or event queue exhausted
)

func (s EngineState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateWarmingUp:
		return "warming-up"
	case StateSteady:
		return "steady"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("EngineState(%d)", int(s))
	}
}

// CycleStats summarizes job cycle times, where a cycle is the time between
// two successive arrivals of the same job at the reference station.
type CycleStats struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// Observe adds one completed cycle.
func (c *CycleStats) Observe(d float64) {
	if c.Count == 0 || d < c.Min {
		c.Min = d
	}
	if d > c.Max {
		c.Max = d
	}
	c.Count++
	c.Sum += d
}

// Mean returns the average cycle time, or 0 if no cycle was observed.
func (c CycleStats) Mean() float64 {
	if c.Count == 0 {
		return 0
	}
	return c.Sum / float64(c.Count)
}

// Network is the discrete-event engine of a closed queuing network. It owns
// the stations, the jobs, the event queue and the clock; nothing is shared
// between instances, so independent networks may run side by side.
type Network struct {
	NumJobs  int
	Stations []*Station
	Jobs     []*Job // indexed by job ID
	Events   *EventQueue
	Clock    float64
	// InTransit holds jobs that left a station and have not yet arrived at the next one.
	InTransit map[int]struct{}
	// TotalCompletions counts departures (service completions at any station) since the warmup reset.
	TotalCompletions int
	// Cycles holds reference-station cycle times completed since the warmup reset.
	Cycles CycleStats

	ReferenceStation int // initial station; also the cycle-time reference point

	router     *Router
	rng        *PartitionedRNG
	analysis   RoutingAnalysis
	state      EngineState
	run        RunConfig
	resetTime  float64
	eventCount int
	trace      *trace.EventTrace
}

// NewNetwork validates cfg and builds a network with every job scheduled to
// arrive at the initial station at time 0.
func NewNetwork(cfg NetworkConfig) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network: %w", err)
	}

	var key SimulationKey
	if cfg.Seed != nil {
		key = NewSimulationKey(*cfg.Seed)
	} else {
		key = EntropyKey()
		logrus.Infof("No seed given; drawing from process entropy (seed=%d)", int64(key))
	}
	rng := NewPartitionedRNG(key)

	n := &Network{
		NumJobs:          cfg.NumJobs,
		Stations:         make([]*Station, len(cfg.Stations)),
		Jobs:             make([]*Job, cfg.NumJobs),
		Events:           NewEventQueue(),
		InTransit:        make(map[int]struct{}, cfg.NumJobs),
		ReferenceStation: cfg.InitialStation,
		router:           NewRouter(cfg.Routing, rng),
		rng:              rng,
		analysis:         AnalyzeRouting(cfg.Routing, cfg.InitialStation),
		state:            StateInitializing,
	}
	for i, sc := range cfg.Stations {
		n.Stations[i] = NewStation(i, sc, rng)
	}

	if !n.analysis.StronglyConnected() {
		logrus.Warnf("Routing graph is not strongly connected: components=%v", n.analysis.Components)
	}
	if len(n.analysis.Unreachable) > 0 {
		logrus.Warnf("Stations unreachable from initial station %d: %v", cfg.InitialStation, n.analysis.Unreachable)
	}

	// Every job starts in transit towards the initial station.
	for id := 0; id < cfg.NumJobs; id++ {
		n.Jobs[id] = &Job{ID: id, ArrivalTime: 0}
		n.InTransit[id] = struct{}{}
		n.Events.Schedule(0, ArrivalEvent, id, cfg.InitialStation)
	}
	return n, nil
}

// SetTrace attaches an event trace; every processed event is recorded into it.
func (n *Network) SetTrace(t *trace.EventTrace) {
	n.trace = t
}

// State returns the current lifecycle phase.
func (n *Network) State() EngineState {
	return n.state
}

// Key returns the SimulationKey driving this network's random draws.
func (n *Network) Key() SimulationKey {
	return n.rng.Key()
}

// RoutingAnalysis returns the structure of the routing graph.
func (n *Network) RoutingAnalysis() RoutingAnalysis {
	return n.analysis
}

// EventCount returns the number of events processed so far.
func (n *Network) EventCount() int {
	return n.eventCount
}

// Run simulates until the clock reaches rc.Horizon. Statistics gathered
// before rc.Warmup are discarded. A Network can be run only once.
func (n *Network) Run(rc RunConfig) error {
	if n.state != StateInitializing {
		return fmt.Errorf("network already run (state %s)", n.state)
	}
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}

	n.begin(rc)
	for {
		ev, ok := n.advance()
		if !ok {
			break
		}
		n.dispatch(ev)
	}
	n.finish()
	return nil
}

func (n *Network) begin(rc RunConfig) {
	n.run = rc
	n.state = StateWarmingUp
	logrus.Infof("Starting simulation with %d jobs for %.2f time units (warmup %.2f)",
		n.NumJobs, rc.Horizon, rc.Warmup)
}

// advance pops the next event, moves the clock to it and performs the warmup
// transition. It returns false once the horizon is reached or no event is left.
func (n *Network) advance() (Event, bool) {
	if n.Clock >= n.run.Horizon {
		return Event{}, false
	}
	if n.Events.IsEmpty() {
		// a closed network with positive service times always has a pending event
		logrus.Errorf("[t=%.4f] Event queue exhausted before horizon %.2f", n.Clock, n.run.Horizon)
		return Event{}, false
	}
	ev := n.Events.PopNext()
	if ev.Time < n.Clock {
		panic(fmt.Sprintf("Clock went backwards: %v < %v (%s)", ev.Time, n.Clock, ev))
	}
	n.Clock = ev.Time

	if n.state == StateWarmingUp && n.Clock >= n.run.Warmup {
		n.resetStatistics()
	}
	return ev, true
}

// dispatch runs the handler for ev to completion.
func (n *Network) dispatch(ev Event) {
	logrus.Debugf("[t=%.4f] %s job=%d station=%d", ev.Time, ev.Kind, ev.JobID, ev.StationID)
	if n.trace != nil {
		n.trace.Record(trace.EventRecord{
			Time:      ev.Time,
			Kind:      ev.Kind.String(),
			JobID:     ev.JobID,
			StationID: ev.StationID,
		})
	}

	switch ev.Kind {
	case ArrivalEvent:
		n.handleArrival(ev)
	case DepartureEvent:
		n.handleDeparture(ev)
	default:
		panic(fmt.Sprintf("unknown event kind %d", int(ev.Kind)))
	}
	n.eventCount++

	if n.run.CheckInvariants {
		if err := n.CheckWIP(); err != nil {
			panic(fmt.Sprintf("after %s: %v", ev, err))
		}
	}
}

func (n *Network) handleArrival(ev Event) {
	st := n.Stations[ev.StationID]
	job := n.Jobs[ev.JobID]
	if _, ok := n.InTransit[ev.JobID]; !ok {
		panic(fmt.Sprintf("job %d arrived at station %d without being in transit", ev.JobID, ev.StationID))
	}
	delete(n.InTransit, ev.JobID)

	job.stationArrival = n.Clock
	if ev.StationID == n.ReferenceStation {
		n.observeReferenceArrival(job)
	}

	st.Enqueue(ev.JobID, n.Clock)
	n.startService(st)
}

func (n *Network) handleDeparture(ev Event) {
	st := n.Stations[ev.StationID]

	st.CompleteService(n.Clock)
	n.TotalCompletions++

	// The freed server pulls the next queued job, if any.
	n.startService(st)

	next := n.router.Next(ev.StationID)
	n.InTransit[ev.JobID] = struct{}{}
	// Transit between stations takes no time.
	n.Events.Schedule(n.Clock, ArrivalEvent, ev.JobID, next)
}

// startService puts the head of st's queue on a free server and schedules its departure.
func (n *Network) startService(st *Station) {
	jobID, ok := st.TryStartService(n.Clock)
	if !ok {
		return
	}
	d := st.SampleServiceTime()
	st.TotalServiceTime += d

	job := n.Jobs[jobID]
	job.Visits = append(job.Visits, StationVisit{
		StationID:     st.ID,
		ArrivalTime:   job.stationArrival,
		StartTime:     n.Clock,
		DepartureTime: n.Clock + d,
	})
	n.Events.Schedule(n.Clock+d, DepartureEvent, jobID, st.ID)
}

func (n *Network) observeReferenceArrival(job *Job) {
	if job.seenRefStation {
		job.CompletedCycles++
		if n.state == StateSteady {
			n.Cycles.Observe(n.Clock - job.lastRefArrival)
		}
	}
	job.seenRefStation = true
	job.lastRefArrival = n.Clock
}

// resetStatistics discards warmup statistics. Queue contents, busy servers
// and jobs in transit are left untouched so the trajectory is unaffected.
func (n *Network) resetStatistics() {
	for _, st := range n.Stations {
		st.ResetStats(n.Clock)
	}
	n.TotalCompletions = 0
	n.Cycles = CycleStats{}
	n.resetTime = n.Clock
	n.state = StateSteady
	logrus.Infof("Warmup period completed at t=%.2f", n.Clock)
}

func (n *Network) finish() {
	// Close every station's measurement window at the final clock.
	for _, st := range n.Stations {
		st.updateStats(n.Clock)
	}
	n.state = StateFinished
	logrus.Infof("Simulation completed at t=%.2f after %d events", n.Clock, n.eventCount)
}

// CheckWIP verifies that every job is accounted for exactly once:
// Σ(busy servers + queue length) + |in transit| == population.
func (n *Network) CheckWIP() error {
	total := len(n.InTransit)
	for _, st := range n.Stations {
		if st.ServersBusy < 0 || st.ServersBusy > st.Servers {
			return fmt.Errorf("station %d: %d busy servers out of [0, %d]", st.ID, st.ServersBusy, st.Servers)
		}
		total += st.InStation()
	}
	if total != n.NumJobs {
		return fmt.Errorf("WIP conservation violated at t=%v: %d jobs accounted, population %d", n.Clock, total, n.NumJobs)
	}
	return nil
}
