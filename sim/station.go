package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Station is one service point of the network: a FIFO queue in front of
// Servers identical parallel servers with exponential service times.
//
// All accumulators cover the interval since the last statistics reset
// (StatsResetTime); the physical state (queue contents, busy servers) is
// never touched by a reset.
type Station struct {
	ID              int
	Name            string
	Servers         int     // number of parallel servers (>= 1)
	MeanServiceTime float64 // mean of the exponential service time (> 0)

	Queue       JobQueue // jobs waiting for a server, FIFO
	ServersBusy int      // 0 <= ServersBusy <= Servers

	TotalArrivals       int     // jobs enqueued since reset
	TotalDepartures     int     // services completed since reset
	TotalServiceTime    float64 // sum of realized service durations started since reset
	QueueLengthIntegral float64 // ∫ queue length dt since reset
	BusyServerIntegral  float64 // ∫ busy servers dt since reset
	LastUpdateTime      float64 // time of the last accumulator update
	StatsResetTime      float64 // time of the last statistics reset

	service distuv.Exponential
}

// NewStation creates an idle station drawing service times from rng.
func NewStation(id int, cfg StationConfig, rng *PartitionedRNG) *Station {
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("Station_%d", id)
	}
	return &Station{
		ID:              id,
		Name:            name,
		Servers:         cfg.Servers,
		MeanServiceTime: cfg.MeanServiceTime,
		service:         rng.Exponential(SubsystemService(id), cfg.MeanServiceTime),
	}
}

// updateStats integrates queue length and busy servers over [LastUpdateTime, now].
func (s *Station) updateStats(now float64) {
	dt := now - s.LastUpdateTime
	if dt < 0 {
		panic(fmt.Sprintf("station %d: stats update moved backwards: %v < %v", s.ID, now, s.LastUpdateTime))
	}
	s.QueueLengthIntegral += float64(s.Queue.Len()) * dt
	s.BusyServerIntegral += float64(s.ServersBusy) * dt
	s.LastUpdateTime = now
}

// Enqueue appends a job to the waiting queue.
func (s *Station) Enqueue(jobID int, now float64) {
	s.updateStats(now)
	s.Queue.Enqueue(jobID)
	s.TotalArrivals++
}

// IsAvailable reports whether at least one server is idle.
func (s *Station) IsAvailable() bool {
	return s.ServersBusy < s.Servers
}

// TryStartService moves the head of the queue onto a free server.
// Returns the job that started service, or false if the queue is empty or
// every server is busy.
func (s *Station) TryStartService(now float64) (int, bool) {
	s.updateStats(now)
	if s.Queue.Len() == 0 || !s.IsAvailable() {
		return 0, false
	}
	jobID, _ := s.Queue.Dequeue()
	s.ServersBusy++
	return jobID, true
}

// CompleteService frees one server.
func (s *Station) CompleteService(now float64) {
	s.updateStats(now)
	if s.ServersBusy == 0 {
		panic(fmt.Sprintf("station %d: service completed with no busy server at t=%v", s.ID, now))
	}
	s.ServersBusy--
	s.TotalDepartures++
}

// SampleServiceTime draws one exponential service duration.
// It does not touch TotalServiceTime; the caller accumulates the draw.
func (s *Station) SampleServiceTime() float64 {
	return s.service.Rand()
}

// ResetStats zeroes the accumulators and restarts the measurement window at now.
func (s *Station) ResetStats(now float64) {
	s.TotalArrivals = 0
	s.TotalDepartures = 0
	s.TotalServiceTime = 0
	s.QueueLengthIntegral = 0
	s.BusyServerIntegral = 0
	s.LastUpdateTime = now
	s.StatsResetTime = now
}

// Elapsed is the length of the current measurement window.
func (s *Station) Elapsed() float64 {
	return s.LastUpdateTime - s.StatsResetTime
}

// Utilization is the fraction of aggregate server-time consumed by services
// started in the measurement window. Reports 0 before any service is observed.
func (s *Station) Utilization() float64 {
	elapsed := s.Elapsed()
	if s.TotalServiceTime == 0 || elapsed <= 0 {
		return 0
	}
	return s.TotalServiceTime / (float64(s.Servers) * elapsed)
}

// TimeAverageBusy is the time-weighted mean fraction of servers busy.
// Unlike Utilization it counts only busy time inside the window.
func (s *Station) TimeAverageBusy() float64 {
	elapsed := s.Elapsed()
	if elapsed <= 0 {
		return 0
	}
	return s.BusyServerIntegral / (float64(s.Servers) * elapsed)
}

// AvgQueueLength is the time-average number of waiting jobs (excluding those in service).
func (s *Station) AvgQueueLength() float64 {
	elapsed := s.Elapsed()
	if elapsed <= 0 {
		return 0
	}
	return s.QueueLengthIntegral / elapsed
}

// InStation is the number of jobs waiting or in service.
func (s *Station) InStation() int {
	return s.ServersBusy + s.Queue.Len()
}
